package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCategories(ctx context.Context, familyID string) ([]*category.Category, error) {
	query := `
		SELECT id, family_id, name, type, color, icon, created_at
		FROM categories
		WHERE family_id = $1
		ORDER BY name ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category

	for rows.Next() {
		var c category.Category

		var typeStr string

		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &typeStr, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		c.Type = category.Type(typeStr)
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (family_id, name, type, color, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, clock_timestamp())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.FamilyID, c.Name, c.Type, c.Color, c.Icon).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, color = $2, icon = $3
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.Color, c.Icon, c.ID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	if n == 0 {
		return category.ErrNotFound
	}

	return nil
}

// DeleteCategory leaves referencing transactions untouched; there is no foreign key.
func (s *Store) DeleteCategory(ctx context.Context, familyID string, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND family_id = $2`, id, familyID)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	return nil
}
