package category

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrMalformed = errors.New("malformed category")
)

// Type mirrors transaction.Type; a category only ever groups one kind of transaction.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

type Category struct {
	ID        uuid.UUID
	FamilyID  string
	Name      string
	Type      Type
	Color     string
	Icon      string
	CreatedAt time.Time
}

// Key identifies categories that are considered the same entry.
type Key struct {
	Name string
	Type Type
}

func (k Key) String() string {
	return k.Name + "-" + string(k.Type)
}

var lower = cases.Lower(language.Und)

func KeyOf(name string, t Type) Key {
	return Key{Name: lower.String(strings.TrimSpace(name)), Type: t}
}

func (c *Category) Key() Key {
	return KeyOf(c.Name, c.Type)
}

// Validate reports ErrMalformed for a blank name or an unknown type.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.Join(ErrMalformed, errors.New("name is empty"))
	}

	if !c.Type.Valid() {
		return errors.Join(ErrMalformed, errors.New("unknown type "+string(c.Type)))
	}

	return nil
}

// Lookup indexes categories by ID.
func Lookup(categories []*Category) map[uuid.UUID]*Category {
	m := make(map[uuid.UUID]*Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}

	return m
}
