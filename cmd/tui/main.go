package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fynance/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/fynance/internal/backend"
	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/config"
	"github.com/MrJamesThe3rd/fynance/internal/export"
	"github.com/MrJamesThe3rd/fynance/internal/importer"
	"github.com/MrJamesThe3rd/fynance/internal/importer/household"
	"github.com/MrJamesThe3rd/fynance/internal/matching"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type model struct {
	session *view.Session
	size    tea.WindowSizeMsg

	currentView View

	dashboardView    view.DashboardModel
	reportsView      view.ReportsModel
	categoriesView   view.CategoriesModel
	transactionsView view.TransactionsModel
	addView          view.AddModel
	importView       view.ImportModel
	exportView       view.ExportModel
}

type View int

const (
	ViewMenu         View = 0
	ViewDashboard    View = 1
	ViewReports      View = 2
	ViewCategories   View = 3
	ViewTransactions View = 4
	ViewAdd          View = 5
	ViewImport       View = 6
	ViewExport       View = 7
)

func openSession() (*view.Session, func(), error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	loc, err := cfg.ReportLocation()
	if err != nil {
		return nil, nil, err
	}

	stores, err := backend.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.Default()
	matchSvc := matching.NewService(stores.Rules)

	s := &view.Session{
		FamilyID: cfg.TUI.FamilyID,
		Member:   cfg.TUI.Member,
		Budget:   cfg.Report.MonthlyBudget,
		Location: loc,

		Categories:   category.NewService(stores.Categories, stores.Publisher),
		Reconciler:   category.NewReconciler(stores.Categories, stores.Publisher, logger, cfg.Reconcile.Concurrency),
		Transactions: transaction.NewService(stores.Transactions, stores.Publisher),
		Reports: report.NewService(stores.Categories, stores.Transactions,
			report.WithLocation(loc),
			report.WithTopN(cfg.Report.TopN),
			report.WithLogger(logger),
		),
		Matching: matchSvc,
		Importer: importer.NewService(
			map[importer.Format]importer.Parser{importer.FormatHousehold: household.NewParser(loc)},
			stores.Categories,
			matchSvc,
		),
		Export: export.NewService(stores.Transactions, stores.Categories, nil, loc),
	}

	return s, func() { _ = stores.Close() }, nil
}

// reconcileOnStart seeds and deduplicates the family's categories before the
// first screen loads. Failures are logged and the TUI starts anyway.
func reconcileOnStart(s *view.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.Reconciler.Reconcile(ctx, s.FamilyID); err != nil {
		slog.Warn("category reconciliation failed", "family_id", s.FamilyID, "error", err)
	}
}

func initialModel(s *view.Session) model {
	return model{
		session:     s,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// resize replays the last window size to a freshly opened view.
func (m model) resize() tea.Cmd {
	if m.size.Width == 0 {
		return nil
	}

	size := m.size

	return func() tea.Msg { return size }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.session)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewReports
				m.reportsView = view.NewReportsModel(m.session)

				return m, tea.Batch(m.reportsView.Init(), m.resize())
			case "3":
				m.currentView = ViewCategories
				m.categoriesView = view.NewCategoriesModel(m.session)

				return m, tea.Batch(m.categoriesView.Init(), m.resize())
			case "4":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.session)

				return m, tea.Batch(m.transactionsView.Init(), m.resize())
			case "5":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.session)

				return m, m.addView.Init()
			case "6":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.session)

				return m, m.importView.Init()
			case "7":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.session)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewReports:
		var newModel tea.Model
		newModel, cmd = m.reportsView.Update(msg)
		m.reportsView = newModel.(view.ReportsModel)
	case ViewCategories:
		var newModel tea.Model
		newModel, cmd = m.categoriesView.Update(msg)
		m.categoriesView = newModel.(view.CategoriesModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"FYnance\n" +
				lipgloss.NewStyle().Faint(true).Render(m.session.Member+" · "+m.session.FamilyID) + "\n\n" +
				"1. Dashboard\n" +
				"2. Reports\n" +
				"3. Categories\n" +
				"4. Transactions\n" +
				"5. Add Transaction\n" +
				"6. Import CSV\n" +
				"7. Export CSV\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		current = m.dashboardView
	case ViewReports:
		current = m.reportsView
	case ViewCategories:
		current = m.categoriesView
	case ViewTransactions:
		current = m.transactionsView
	case ViewAdd:
		current = m.addView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	return current.View() + "\n" +
		lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(current.Title()+" · "+current.ShortHelp())
}

func main() {
	session, closeStores, err := openSession()
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer closeStores()

	reconcileOnStart(session)

	p := tea.NewProgram(initialModel(session))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		closeStores()
		os.Exit(1)
	}
}
