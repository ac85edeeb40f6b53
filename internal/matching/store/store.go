package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, familyID, description string) (uuid.UUID, error) {
	query := `
		SELECT category_id
		FROM category_rules
		WHERE family_id = $1 AND $2 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var categoryID uuid.UUID

	err := s.db.QueryRowContext(ctx, query, familyID, description).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}

		return uuid.Nil, fmt.Errorf("finding match: %w", err)
	}

	return categoryID, nil
}

func (s *Store) CreateRule(ctx context.Context, familyID, pattern string, categoryID uuid.UUID) error {
	query := `
		INSERT INTO category_rules (family_id, pattern, category_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (family_id, pattern) DO UPDATE SET category_id = EXCLUDED.category_id, created_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, familyID, pattern, categoryID)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}
