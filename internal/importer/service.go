package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrInvalidFile   = errors.New("invalid import file")
)

type CategoryLister interface {
	ListCategories(ctx context.Context, familyID string) ([]*category.Category, error)
}

type Matcher interface {
	Suggest(ctx context.Context, familyID, description string) (uuid.UUID, error)
}

type Service struct {
	parsers    map[Format]Parser
	categories CategoryLister
	matcher    Matcher
}

func NewService(parsers map[Format]Parser, categories CategoryLister, matcher Matcher) *Service {
	return &Service{
		parsers:    parsers,
		categories: categories,
		matcher:    matcher,
	}
}

// Import parses r and resolves every row's category for familyID. A category
// column is matched by name and type; otherwise a learned rule on the
// description is tried. Rows that resolve to nothing keep uuid.Nil.
func (s *Service) Import(ctx context.Context, familyID string, format Format, r io.Reader, addedBy string) ([]transaction.CreateParams, error) {
	parser, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	byKey := make(map[category.Key]uuid.UUID)

	cats, err := s.categories.ListCategories(ctx, familyID)
	if err != nil {
		slog.Warn("failed to list categories for import", "family_id", familyID, "error", err)
	}

	for _, c := range cats {
		if _, seen := byKey[c.Key()]; !seen {
			byKey[c.Key()] = c.ID
		}
	}

	params := make([]transaction.CreateParams, 0, len(rows))

	for _, row := range rows {
		p := row.Params
		p.FamilyID = familyID

		if p.AddedBy == "" {
			p.AddedBy = addedBy
		}

		if row.CategoryName != "" {
			p.CategoryID = byKey[category.KeyOf(row.CategoryName, category.Type(p.Type))]
		}

		if p.CategoryID == uuid.Nil && s.matcher != nil {
			id, err := s.matcher.Suggest(ctx, familyID, p.Description)
			if err != nil {
				return nil, fmt.Errorf("matching %q: %w", p.Description, err)
			}

			p.CategoryID = id
		}

		params = append(params, p)
	}

	return params, nil
}
