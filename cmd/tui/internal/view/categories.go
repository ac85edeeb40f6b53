package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fynance/internal/category"
)

type categoriesState int

const (
	categoriesStateBrowse categoriesState = iota
	categoriesStateEdit
)

type CategoriesModel struct {
	CommonModel
	session *Session

	state  categoriesState
	table  table.Model
	cats   []*category.Category
	counts category.Counts
	form   *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formName string
	formIcon string
}

func NewCategoriesModel(s *Session) CategoriesModel {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Name", Width: 28},
		{Title: "Type", Width: 10},
		{Title: "Color", Width: 10},
		{Title: "Created", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	return CategoriesModel{
		session: s,
		table:   t,
		loading: true,
	}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string {
	if m.state == categoriesStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | r: reconcile | R: refresh"
}

func (m CategoriesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCategoriesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.cats = msg.cats
		m.counts = category.Count(msg.cats)
		m.refreshTable()

		return m, nil

	case reconcileMsg:
		m.status = describeReconcile(msg.report, msg.err)
		return m, m.loadCmd()

	case categorySavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		} else {
			m.status = "Saved."
		}

		m.state = categoriesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case categoriesStateBrowse:
		return m.updateBrowse(msg)
	case categoriesStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m CategoriesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "R":
			m.loading = true
			return m, m.loadCmd()
		case "r":
			m.status = "Reconciling..."
			return m, m.reconcileCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CategoriesModel) selected() *category.Category {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.cats) {
		return nil
	}

	return m.cats[idx]
}

func (m CategoriesModel) enterEditMode() (tea.Model, tea.Cmd) {
	c := m.selected()
	if c == nil {
		return m, nil
	}

	m.formName = c.Name
	m.formIcon = c.Icon

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("icon").
				Title("Icon").
				Value(&m.formIcon),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = categoriesStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m CategoriesModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = categoriesStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m CategoriesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading categories...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf(
		"Total: %s | Income: %s | Expense: %s | Duplicates: %s",
		activeStyle(fmt.Sprint(m.counts.Total)),
		activeStyle(fmt.Sprint(m.counts.Income)),
		activeStyle(fmt.Sprint(m.counts.Expense)),
		activeStyle(fmt.Sprint(m.counts.Duplicates)),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == categoriesStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Category\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CategoriesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.cats))
	for _, c := range m.cats {
		rows = append(rows, table.Row{
			c.Icon,
			c.Name,
			string(c.Type),
			c.Color,
			FormatDate(c.CreatedAt),
		})
	}

	m.table.SetRows(rows)
}

func describeReconcile(r category.ReconcileReport, err error) string {
	s := fmt.Sprintf("Created %d default categories, removed %d duplicates in %d groups.",
		r.Created, r.Dedup.DuplicatesRemoved, r.Dedup.GroupsAffected)

	if err != nil {
		s += fmt.Sprintf(" Some changes failed (%d left behind): %v", len(r.Dedup.Failed), err)
	}

	return s
}

// Messages

type loadCategoriesMsg struct {
	cats []*category.Category
	err  error
}

func (m CategoriesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.session.Categories.List(ctx, m.session.FamilyID)

		return loadCategoriesMsg{cats: cats, err: err}
	}
}

type reconcileMsg struct {
	report category.ReconcileReport
	err    error
}

func (m CategoriesModel) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.session.Reconciler.Reconcile(ctx, m.session.FamilyID)

		return reconcileMsg{report: report, err: err}
	}
}

type categorySavedMsg struct {
	err error
}

func (m CategoriesModel) saveCmd() tea.Cmd {
	c := m.selected()
	if c == nil {
		return nil
	}

	// The form binds to a copy of the model, so read the answers back by key.
	name := m.form.GetString("name")
	icon := m.form.GetString("icon")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.session.Categories.Update(ctx, m.session.FamilyID, c.ID, category.UpdateParams{
			Name: &name,
			Icon: &icon,
		})

		return categorySavedMsg{err: err}
	}
}

func (m CategoriesModel) deleteCmd() tea.Cmd {
	c := m.selected()
	if c == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return categorySavedMsg{err: m.session.Categories.Delete(ctx, m.session.FamilyID, c.ID)}
	}
}
