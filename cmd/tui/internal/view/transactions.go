package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/member"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type txState int

const (
	txStateList txState = iota
	txStateEditing
)

// typeFilters is cycled with "t"; nil means all types.
var typeFilters = []*transaction.Type{nil, new(transaction.TypeIncome), new(transaction.TypeExpense)}

// txItem wraps a history entry to implement list.Item.
type txItem struct {
	entry report.Entry
}

func (i txItem) Title() string {
	tx := i.entry.Transaction

	desc := tx.Description
	if desc == "" {
		desc = i.entry.CategoryName
	}

	return fmt.Sprintf("%s  %s  %s %s", FormatDate(tx.Date), FormatSigned(tx), i.entry.CategoryIcon, desc)
}

func (i txItem) Description() string {
	return fmt.Sprintf("%s · %s", i.entry.CategoryName, member.DisplayName(i.entry.Transaction.AddedBy))
}

func (i txItem) FilterValue() string {
	tx := i.entry.Transaction
	return strings.Join([]string{tx.Description, i.entry.CategoryName, tx.AddedBy}, " ")
}

type TransactionsModel struct {
	CommonModel
	session *Session

	state      txState
	list       list.Model
	form       *huh.Form
	history    *report.History
	categories []*category.Category
	selected   *transaction.Transaction

	typeIdx int
	loading bool
	status  string

	// Form field bindings
	formCategory uuid.UUID
	formLearn    bool
}

func NewTransactionsModel(s *Session) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		session: s,
		list:    l,
		loading: true,
	}
}

func (m TransactionsModel) Title() string { return "Transaction History" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateList:
		return "Esc: back | Enter: categorise | t: type filter | x: delete | /: search"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadHistoryMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.history = msg.history
		m.categories = msg.categories
		m.refreshListItems()

		if msg.history.Count == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case saveTxResultMsg:
		m.state = txStateList

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = "Saved."

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateList:
		return m.updateList(msg)
	case txStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break // let the list clear the filter
			}

			return m, Back
		case "enter":
			return m.startEditing()
		case "t":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			m.loading = true

			return m, m.loadCmd()
		case "x":
			if item, ok := m.list.SelectedItem().(txItem); ok {
				return m, m.deleteCmd(item.entry.Transaction)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) startEditing() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return m, nil
	}

	tx := selected.entry.Transaction
	m.selected = tx
	m.formCategory = tx.CategoryID
	m.formLearn = false

	options := []huh.Option[uuid.UUID]{huh.NewOption(report.OtherLabel, uuid.Nil)}

	for _, c := range m.categories {
		if string(c.Type) != string(tx.Type) {
			continue
		}

		options = append(options, huh.NewOption(strings.TrimSpace(c.Icon+" "+c.Name), c.ID))
	}

	fields := []huh.Field{
		huh.NewSelect[uuid.UUID]().
			Key("category").
			Title("Category").
			Options(options...).
			Value(&m.formCategory),
	}

	if tx.Description != "" {
		fields = append(fields, huh.NewConfirm().
			Key("learn").
			Title(fmt.Sprintf("Use this category for future %q imports?", tx.Description)).
			Affirmative("Yes").
			Negative("No").
			Value(&m.formLearn))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = txStateList
			m.form = nil

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

	return m, m.saveTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		header := fmt.Sprintf("[t] Type: %s", activeStyle(typeLabel(typeFilters[m.typeIdx])))
		if m.history != nil {
			header += fmt.Sprintf(" | %d transactions | In: %s | Out: %s",
				m.history.Count, FormatAmount(m.history.TotalIncome), FormatAmount(m.history.TotalExpense))
		}

		statusLine := ""
		if m.status != "" {
			statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(header + "\n" + statusLine + m.list.View())

	case txStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.txInfoView() + "\n" + m.form.View())
	}

	return ""
}

func typeLabel(t *transaction.Type) string {
	if t == nil {
		return "All"
	}

	return strings.ToUpper(string(*t)[:1]) + string(*t)[1:]
}

func (m TransactionsModel) txInfoView() string {
	if m.selected == nil {
		return ""
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"Date: %s  |  Type: %s  |  Amount: %s\nDescription: %s",
			FormatDate(m.selected.Date),
			m.selected.Type,
			FormatAmount(m.selected.Amount),
			m.selected.Description,
		))
}

func (m *TransactionsModel) refreshListItems() {
	var items []list.Item

	for _, day := range m.history.Days {
		for _, e := range day.Entries {
			items = append(items, txItem{entry: e})
		}
	}

	m.list.SetItems(items)
}

// Messages

type loadHistoryMsg struct {
	history    *report.History
	categories []*category.Category
	err        error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	filter := report.HistoryFilter{Type: typeFilters[m.typeIdx]}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		h, err := m.session.Reports.History(ctx, m.session.FamilyID, filter)
		if err != nil {
			return loadHistoryMsg{err: err}
		}

		// The history already carries category names; the list only feeds the picker.
		cats, _ := m.session.Categories.List(ctx, m.session.FamilyID)

		return loadHistoryMsg{history: h, categories: cats}
	}
}

type saveTxResultMsg struct {
	err error
}

func (m TransactionsModel) saveTxCmd() tea.Cmd {
	tx := m.selected
	categoryID, _ := m.form.Get("category").(uuid.UUID)
	learn := m.form.GetBool("learn")
	s := m.session

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := s.Transactions.Update(ctx, s.FamilyID, tx.ID, transaction.UpdateParams{CategoryID: &categoryID}); err != nil {
			return saveTxResultMsg{err: err}
		}

		if learn && categoryID != uuid.Nil {
			if err := s.Matching.Learn(ctx, s.FamilyID, tx.Description, categoryID); err != nil {
				return saveTxResultMsg{err: err}
			}
		}

		return saveTxResultMsg{}
	}
}

func (m TransactionsModel) deleteCmd(tx *transaction.Transaction) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return saveTxResultMsg{err: s.Transactions.Delete(ctx, s.FamilyID, tx.ID)}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(i.Description()))
}
