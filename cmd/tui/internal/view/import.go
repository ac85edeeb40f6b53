package view

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/importer"
	"github.com/MrJamesThe3rd/fynance/internal/member"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStatePick importState = iota
	importStateImporting
	importStateConflicts
	importStateDone
)

// importSummary is what a finished import reports back: how much came in,
// split by type and by who recorded it.
type importSummary struct {
	count    int
	income   int64
	expense  int64
	byMember map[string]int
	skipped  int
}

func summarise(txs []*transaction.Transaction, skipped int) importSummary {
	s := importSummary{byMember: make(map[string]int), skipped: skipped}

	for _, tx := range txs {
		s.count++
		s.byMember[member.DisplayName(tx.AddedBy)]++

		if tx.IsIncome() {
			s.income += tx.Amount
		} else {
			s.expense += tx.Amount
		}
	}

	return s
}

func (s importSummary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Imported %d transactions.\n", s.count)
	fmt.Fprintf(&b, "Pemasukan: %s  Pengeluaran: %s\n", FormatAmount(s.income), FormatAmount(s.expense))

	for _, name := range slices.Sorted(maps.Keys(s.byMember)) {
		fmt.Fprintf(&b, "  %s: %d\n", name, s.byMember[name])
	}

	if s.skipped > 0 {
		fmt.Fprintf(&b, "Skipped %d duplicates.\n", s.skipped)
	}

	return b.String()
}

type ImportModel struct {
	CommonModel
	session *Session

	state      importState
	filePicker filepicker.Model
	file       string

	newParams []transaction.CreateParams
	conflicts []transaction.Conflict
	keep      []bool
	names     map[uuid.UUID]string
	table     table.Model

	summary importSummary
	status  string
	err     error
}

func NewImportModel(s *Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		session:    s,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import Household CSV" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: keep/skip | a: keep all | n: skip all | Enter: confirm | Esc: cancel"
	case importStateDone:
		return "Esc: back"
	}

	return "Esc: back | Enter: select file"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		return m.handleImportResult(msg)

	case confirmResultMsg:
		m.state = importStateDone
		m.err = msg.err
		m.summary = summarise(msg.created, msg.skipped)

		return m, nil
	}

	if m.state != importStatePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.file = path

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateConflicts, importStateDone:
		// Nothing has been written for a pending conflict set.
		next := NewImportModel(m.session)
		next.filePicker.CurrentDirectory = m.filePicker.CurrentDirectory

		return next, next.Init()
	}

	return m, Back
}

func (m ImportModel) handleImportResult(msg importResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = importStateDone
		m.err = msg.err

		return m, nil
	}

	if len(msg.result.Conflicts) == 0 {
		m.state = importStateDone
		m.summary = summarise(msg.result.Imported, 0)

		return m, nil
	}

	m.state = importStateConflicts
	m.newParams = msg.result.New
	m.conflicts = msg.result.Conflicts
	m.keep = make([]bool, len(msg.result.Conflicts))
	m.names = msg.names
	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "", Width: 3},
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 16},
			{Title: "Category", Width: 20},
			{Title: "Description", Width: 24},
			{Title: "New by", Width: 12},
			{Title: "Existing by", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(min(12, len(m.conflicts)+1)),
	)
	m.table.SetRows(m.conflictRows())

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if i := m.table.Cursor(); i >= 0 && i < len(m.keep) {
			m.keep[i] = !m.keep[i]
		}
	case "a", "n":
		for i := range m.keep {
			m.keep[i] = msg.String() == "a"
		}
	case "enter":
		m.state = importStateImporting
		return m, m.confirmCmd()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	m.table.SetRows(m.conflictRows())

	return m, nil
}

func (m ImportModel) conflictRows() []table.Row {
	rows := make([]table.Row, len(m.conflicts))

	for i, c := range m.conflicts {
		mark := "[ ]"
		if m.keep[i] {
			mark = "[x]"
		}

		in := c.Incoming

		amount := FormatAmount(in.Amount)
		if in.Type == transaction.TypeExpense {
			amount = FormatAmount(-in.Amount)
		}

		name, ok := m.names[in.CategoryID]
		if !ok {
			name = report.OtherLabel
		}

		rows[i] = table.Row{
			mark,
			FormatDate(in.Date),
			amount,
			name,
			in.Description,
			member.DisplayName(in.AddedBy),
			member.DisplayName(c.Existing.AddedBy),
		}
	}

	return rows
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case importStatePick:
		return style.Render("Select a household CSV export:\n\n" + m.filePicker.View())

	case importStateImporting:
		return style.Render(fmt.Sprintf("Importing %s...", m.file))

	case importStateConflicts:
		header := fmt.Sprintf(
			"%d new rows are ready. %d rows match transactions already recorded.\nMark the ones that are genuinely new:\n\n",
			len(m.newParams), len(m.conflicts))

		return style.Render(header + m.table.View())

	case importStateDone:
		if m.err != nil {
			return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to try another file)")
		}

		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.summary.String()) +
				"\n(Esc to import another file)",
		)
	}

	return ""
}

// Messages

type importResultMsg struct {
	result *transaction.ImportResult
	names  map[uuid.UUID]string
	err    error
}

type confirmResultMsg struct {
	created []*transaction.Transaction
	skipped int
	err     error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		params, err := s.Importer.Import(ctx, s.FamilyID, importer.FormatHousehold, f, s.Member)
		if err != nil {
			return importResultMsg{err: err}
		}

		result, err := s.Transactions.ImportBatch(ctx, s.FamilyID, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		// Names are only for display; conflicts still show as Other without them.
		cats, _ := s.Categories.List(ctx, s.FamilyID)

		names := make(map[uuid.UUID]string, len(cats))
		for id, c := range category.Lookup(cats) {
			names[id] = strings.TrimSpace(c.Icon + " " + c.Name)
		}

		return importResultMsg{result: result, names: names}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	s := m.session
	params := append([]transaction.CreateParams(nil), m.newParams...)
	skipped := 0

	for i, c := range m.conflicts {
		if !m.keep[i] {
			skipped++
			continue
		}

		params = append(params, c.Incoming)
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := s.Transactions.CreateBatch(ctx, s.FamilyID, params)

		return confirmResultMsg{created: txs, skipped: skipped, err: err}
	}
}
