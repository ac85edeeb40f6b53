package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/notify"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	ListCategories(ctx context.Context, familyID string) ([]*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	// DeleteCategory only removes a category owned by familyID and succeeds
	// when there is none.
	DeleteCategory(ctx context.Context, familyID string, id uuid.UUID) error
}

type Service struct {
	repo      Repository
	publisher notify.Publisher
}

func NewService(repo Repository, publisher notify.Publisher) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}

	return &Service{repo: repo, publisher: publisher}
}

type CreateParams struct {
	FamilyID string
	Name     string
	Type     Type
	Color    string
	Icon     string
}

type UpdateParams struct {
	Name  *string
	Color *string
	Icon  *string
}

func (s *Service) List(ctx context.Context, familyID string) ([]*Category, error) {
	return s.repo.ListCategories(ctx, familyID)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	c := &Category{
		FamilyID: params.FamilyID,
		Name:     params.Name,
		Type:     params.Type,
		Color:    params.Color,
		Icon:     params.Icon,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, c.FamilyID)

	return c, nil
}

// Update changes the display fields of a category owned by familyID.
func (s *Service) Update(ctx context.Context, familyID string, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.find(ctx, familyID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = *params.Name
	}

	if params.Color != nil {
		c.Color = *params.Color
	}

	if params.Icon != nil {
		c.Icon = *params.Icon
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, familyID)

	return c, nil
}

// Delete never touches transactions that reference the category. Deleting a
// missing category, or one of another family, succeeds without writing.
func (s *Service) Delete(ctx context.Context, familyID string, id uuid.UUID) error {
	_, err := s.find(ctx, familyID, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if err := s.repo.DeleteCategory(ctx, familyID, id); err != nil {
		return err
	}

	s.invalidate(ctx, familyID)

	return nil
}

func (s *Service) find(ctx context.Context, familyID string, id uuid.UUID) (*Category, error) {
	categories, err := s.repo.ListCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}

	return nil, ErrNotFound
}

func (s *Service) invalidate(ctx context.Context, familyID string) {
	err := s.publisher.Publish(ctx, notify.NewInvalidation(familyID, notify.ScopeCategories))
	if err != nil {
		slog.Warn("failed to publish invalidation", "family_id", familyID, "error", err)
	}
}
