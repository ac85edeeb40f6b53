package view

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fynance/internal/report"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

type ExportModel struct {
	CommonModel
	session *Session

	state exportState
	err   error

	form    *huh.Form
	period  report.Period
	path    string
	file    string
	spinner spinner.Model
	summary string
}

func NewExportModel(s *Session) ExportModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		session: s,
		state:   exportStateForm,
		period:  report.PeriodMonth,
		path:    "./exports",
		spinner: sp,
	}
	m.form = m.buildForm()

	return m
}

func (m ExportModel) Title() string { return "Export Transactions" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	period, _ := m.form.Get("period").(report.Period)
	m.period = cmp.Or(period, report.PeriodMonth)
	m.path = cmp.Or(m.form.GetString("path"), "./exports")

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.period, m.path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.file = result.file
		m.summary = result.body

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m *ExportModel) buildForm() *huh.Form {
	options := make([]huh.Option[report.Period], len(report.Periods))
	for i, p := range report.Periods {
		options[i] = huh.NewOption("This "+string(p), p)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[report.Period]().
				Key("period").
				Title("Period").
				Options(options...).
				Value(&m.period),
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Exporting transactions...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Written to "+m.file,
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	file string
	body string
	err  error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(period report.Period, dir string) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating export directory: %w", err)}
		}

		name := filepath.Join(dir, fmt.Sprintf("fynance-%s-%s.csv", period, time.Now().Format(time.DateOnly)))

		f, err := os.Create(name)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("creating export file: %w", err)}
		}
		defer f.Close()

		items, err := s.Export.Export(ctx, s.FamilyID, period, f)
		if err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{file: name, body: s.Export.Summary(items)}
	}
}
