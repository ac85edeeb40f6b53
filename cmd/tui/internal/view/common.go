package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/export"
	"github.com/MrJamesThe3rd/fynance/internal/importer"
	"github.com/MrJamesThe3rd/fynance/internal/matching"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type CommonModel struct {
	Width  int
	Height int
}

// Session is the family the TUI acts for and the services it talks to.
type Session struct {
	FamilyID string
	Member   string
	Budget   int64
	Location *time.Location

	Categories   *category.Service
	Reconciler   *category.Reconciler
	Transactions *transaction.Service
	Reports      *report.Service
	Matching     *matching.Service
	Importer     *importer.Service
	Export       *export.Service
}

func (s *Session) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}

	return s.Location
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
