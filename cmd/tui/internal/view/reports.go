package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fynance/internal/report"
)

type ReportsModel struct {
	CommonModel
	session *Session

	period  report.Period
	report  *report.Report
	table   table.Model
	loading bool
	err     error
}

func NewReportsModel(s *Session) ReportsModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Category", Width: 24},
			{Title: "%", Width: 5},
			{Title: "Amount", Width: 18},
		}),
		table.WithHeight(6),
	)

	return ReportsModel{
		session: s,
		period:  report.PeriodMonth,
		table:   t,
		loading: true,
	}
}

func (m ReportsModel) Title() string { return "Reports" }

func (m ReportsModel) ShortHelp() string { return "Esc: back | p/Tab: next period" }

func (m ReportsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadReportMsg:
		m.loading = false
		m.report = msg.report
		m.err = msg.err

		if msg.report != nil {
			m.table.SetRows(categoryRows(msg.report.Categories))
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "p", "tab":
			m.period = m.period.Next()
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReportsModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	tabs := make([]string, len(report.Periods))
	for i, p := range report.Periods {
		tabs[i] = string(p)
		if p == m.period {
			tabs[i] = activeStyle("[" + string(p) + "]")
		}
	}

	header := strings.Join(tabs, "  ")

	if m.loading {
		return style.Render(header + "\n\nLoading report...")
	}

	if m.err != nil {
		return style.Render(header + "\n\n" + errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	r := m.report

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s to %s\n", header, FormatDate(r.Start), FormatDate(r.End))
	fmt.Fprintf(&b, "In: %s  Out: %s\n\n", FormatAmount(r.TotalIncome), FormatAmount(r.TotalExpense))

	if r.NoData {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("No expenses in this period."))
		return style.Render(b.String())
	}

	b.WriteString(bucketChart(r.Buckets))
	b.WriteString("\nTop categories\n")
	b.WriteString(m.table.View())

	return style.Render(b.String())
}

// bucketChart draws one horizontal bar per bucket, scaled to the largest.
func bucketChart(buckets []report.Bucket) string {
	var peak int64
	for _, bk := range buckets {
		peak = max(peak, bk.Amount)
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	var b strings.Builder

	for _, bk := range buckets {
		n := 0
		if peak > 0 {
			n = int(bk.Amount * barWidth / peak)
		}

		fmt.Fprintf(&b, "%-7s %s %s\n", bk.Label, bar.Render(strings.Repeat("█", n)+strings.Repeat(" ", barWidth-n)), FormatAmount(bk.Amount))
	}

	return b.String()
}

func categoryRows(categories []report.CategorySummary) []table.Row {
	rows := make([]table.Row, len(categories))
	for i, c := range categories {
		rows[i] = table.Row{
			strings.TrimSpace(c.Icon + " " + c.CategoryName),
			fmt.Sprintf("%d", c.Percentage),
			FormatAmount(c.Amount),
		}
	}

	return rows
}

type loadReportMsg struct {
	report *report.Report
	err    error
}

func (m ReportsModel) loadCmd() tea.Cmd {
	s := m.session
	period := m.period

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := s.Reports.Generate(ctx, s.FamilyID, period)

		return loadReportMsg{report: r, err: err}
	}
}
