package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fynance/internal/member"
	"github.com/MrJamesThe3rd/fynance/internal/report"
)

const barWidth = 30

type DashboardModel struct {
	CommonModel
	session *Session

	dashboard *report.Dashboard
	loading   bool
	err       error
}

func NewDashboardModel(s *Session) DashboardModel {
	return DashboardModel{session: s, loading: true}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDashboardMsg:
		m.loading = false
		m.dashboard = msg.dashboard
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.loading {
		return style.Render("Loading dashboard...")
	}

	if m.err != nil {
		return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	d := m.dashboard
	bold := lipgloss.NewStyle().Bold(true)

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", bold.Render("Balance:"), FormatAmount(d.Balance))
	fmt.Fprintf(&b, "This month  In: %s  Out: %s\n\n", FormatAmount(d.MonthIncome), FormatAmount(d.MonthExpense))

	if d.Budget > 0 {
		fmt.Fprintf(&b, "%s %s / %s (%d%%)\n%s\n\n",
			bold.Render("Budget:"), FormatAmount(d.BudgetUsed), FormatAmount(d.Budget),
			d.BudgetPercentage, budgetBar(d.BudgetPercentage))
	}

	b.WriteString(bold.Render("Recent") + "\n")

	if len(d.Recent) == 0 {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("No transactions yet."))
	}

	for _, e := range d.Recent {
		fmt.Fprintf(&b, "%s  %s %-16s %s  %s\n",
			FormatDate(e.Transaction.Date), e.CategoryIcon, e.CategoryName,
			FormatSigned(e.Transaction), member.Initials(e.Transaction.AddedBy))
	}

	return style.Render(b.String())
}

// budgetBar fills up to barWidth cells and turns red once the budget is spent.
func budgetBar(percentage int) string {
	filled := min(barWidth, percentage*barWidth/100)

	color := lipgloss.Color("46")
	switch {
	case percentage >= 100:
		color = lipgloss.Color("196")
	case percentage >= 80:
		color = lipgloss.Color("214")
	}

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Faint(true).Render(strings.Repeat("░", barWidth-filled))
}

type loadDashboardMsg struct {
	dashboard *report.Dashboard
	err       error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := s.Reports.Dashboard(ctx, s.FamilyID, s.Budget)

		return loadDashboardMsg{dashboard: d, err: err}
	}
}
