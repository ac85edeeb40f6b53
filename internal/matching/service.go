package matching

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrEmptyPattern = errors.New("pattern cannot be empty")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns uuid.Nil when no rule matches.
	FindMatch(ctx context.Context, familyID, description string) (uuid.UUID, error)
	CreateRule(ctx context.Context, familyID, pattern string, categoryID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category of the longest rule whose pattern is contained
// in description, or uuid.Nil.
func (s *Service) Suggest(ctx context.Context, familyID, description string) (uuid.UUID, error) {
	if strings.TrimSpace(description) == "" {
		return uuid.Nil, nil
	}

	return s.repo.FindMatch(ctx, familyID, description)
}

// Learn remembers that descriptions containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, familyID, pattern string, categoryID uuid.UUID) error {
	pattern = Normalize(pattern)
	if pattern == "" {
		return ErrEmptyPattern
	}

	return s.repo.CreateRule(ctx, familyID, pattern, categoryID)
}

func Normalize(pattern string) string {
	return strings.ToLower(strings.TrimSpace(pattern))
}
