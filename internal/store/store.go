// Package store defines the persistence boundary for members and expenses.
// Backends live in subpackages; services depend only on these interfaces.
package store

import (
	"context"
	"errors"

	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// MemberStore holds member credentials and their embedded payment records.
type MemberStore interface {
	// Create inserts a new member. Returns ErrDuplicate if the id is taken.
	Create(ctx context.Context, m *models.Member) error

	// FindByID returns ErrNotFound if no member has the id.
	FindByID(ctx context.Context, id string) (*models.Member, error)

	// FindAll returns every member without the password hash.
	FindAll(ctx context.Context) ([]models.Member, error)

	UpdatePassword(ctx context.Context, id, hash string) error

	// Delete returns ErrNotFound if no member has the id.
	Delete(ctx context.Context, id string) error

	// UpsertPayment replaces the member's record for rec's period in a single
	// write. It reports false when the member does not exist.
	UpsertPayment(ctx context.Context, id string, rec models.PaymentRecord) (bool, error)
}

// ExpenseStore holds per-period expense records, unique by period.
type ExpenseStore interface {
	// Create assigns the ID. Returns ErrDuplicate if the period already has one.
	Create(ctx context.Context, e *models.Expense) error

	// FindByPeriod returns ErrNotFound if the period has no expense.
	FindByPeriod(ctx context.Context, p models.Period) (*models.Expense, error)

	// List orders by year then month, newest first.
	List(ctx context.Context) ([]models.Expense, error)

	// Delete returns ErrNotFound for unknown or malformed ids.
	Delete(ctx context.Context, id string) error
}
