package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/currency"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type addState int

const (
	addStateLoading addState = iota
	addStateForm
	addStateSaving
	addStateResult
)

// addFields outlives model copies so the form bindings stay valid.
type addFields struct {
	amount      string
	txType      transaction.Type
	categoryID  uuid.UUID
	description string
	date        string
}

type AddModel struct {
	CommonModel
	session *Session

	state      addState
	form       *huh.Form
	fields     *addFields
	categories []*category.Category

	status string
	err    error
}

func NewAddModel(s *Session) AddModel {
	return AddModel{
		session: s,
		fields: &addFields{
			txType: transaction.TypeExpense,
			date:   time.Now().In(s.location()).Format(time.DateOnly),
		},
	}
}

func (m AddModel) Title() string { return "Add Transaction" }

func (m AddModel) ShortHelp() string {
	if m.state == addStateResult {
		return "Esc: back | n: add another"
	}

	return "Esc: back | Enter/Tab: navigate form"
}

func (m AddModel) Init() tea.Cmd {
	return m.loadCategoriesCmd()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addCategoriesMsg:
		// Without categories the transaction is still recorded as Other.
		m.categories = msg.categories
		m.form = m.buildForm()
		m.state = addStateForm

		return m, m.form.Init()

	case addResultMsg:
		m.state = addStateResult
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Added %s %s on %s.",
				msg.tx.Type, FormatAmount(msg.tx.Amount), FormatDate(msg.tx.Date))
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == addStateResult && msg.String() == "n" {
			next := NewAddModel(m.session)
			next.categories = m.categories
			next.form = next.buildForm()
			next.state = addStateForm

			return next, next.form.Init()
		}
	}

	if m.state != addStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = addStateSaving

	return m, m.saveCmd()
}

func (m AddModel) buildForm() *huh.Form {
	f := m.fields
	categories := m.categories

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount (Rp)").
				Placeholder("50.000").
				Validate(func(s string) error {
					n, err := currency.ParseIDR(s)
					if err != nil {
						return err
					}

					if n <= 0 {
						return errors.New("amount must be positive")
					}

					return nil
				}).
				Value(&f.amount),
			huh.NewSelect[transaction.Type]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Expense", transaction.TypeExpense),
					huh.NewOption("Income", transaction.TypeIncome),
				).
				Value(&f.txType),
			huh.NewSelect[uuid.UUID]().
				Key("category").
				Title("Category").
				OptionsFunc(func() []huh.Option[uuid.UUID] {
					return categoryOptions(categories, f.txType)
				}, &f.txType).
				Value(&f.categoryID),
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&f.description),
			huh.NewInput().
				Key("date").
				Title("Date (YYYY-MM-DD)").
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, s)
					return err
				}).
				Value(&f.date),
		),
	).WithWidth(50).WithShowHelp(false)
}

func categoryOptions(categories []*category.Category, t transaction.Type) []huh.Option[uuid.UUID] {
	options := []huh.Option[uuid.UUID]{huh.NewOption(report.OtherLabel, uuid.Nil)}

	for _, c := range categories {
		if string(c.Type) != string(t) {
			continue
		}

		options = append(options, huh.NewOption(strings.TrimSpace(c.Icon+" "+c.Name), c.ID))
	}

	return options
}

func (m AddModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case addStateLoading:
		return style.Render("Loading categories...")
	case addStateForm:
		return style.Render(m.form.View())
	case addStateSaving:
		return style.Render("Saving...")
	case addStateResult:
		if m.err != nil {
			return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
		}

		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
				"\n\n(n to add another, Esc to go back)",
		)
	}

	return ""
}

type addCategoriesMsg struct {
	categories []*category.Category
}

type addResultMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m AddModel) loadCategoriesCmd() tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, _ := s.Categories.List(ctx, s.FamilyID)

		return addCategoriesMsg{categories: cats}
	}
}

func (m AddModel) saveCmd() tea.Cmd {
	s := m.session
	f := *m.fields

	return func() tea.Msg {
		amount, err := currency.ParseIDR(f.amount)
		if err != nil {
			return addResultMsg{err: err}
		}

		date, err := time.ParseInLocation(time.DateOnly, f.date, s.location())
		if err != nil {
			return addResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := s.Transactions.Create(ctx, transaction.CreateParams{
			FamilyID:    s.FamilyID,
			CategoryID:  f.categoryID,
			Amount:      amount,
			Type:        f.txType,
			Description: f.description,
			Date:        date,
			AddedBy:     s.Member,
		})

		return addResultMsg{tx: tx, err: err}
	}
}
