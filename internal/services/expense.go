package services

import (
	"context"
	"errors"

	"github.com/markjakearzadon/clubdues-gobackend/internal/events"
	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
)

// ExpenseService is the expense ledger: one record per period.
type ExpenseService struct {
	deps Deps
}

func NewExpenseService(d Deps) *ExpenseService {
	d = d.withDefaults()
	d.Logger = d.Logger.With("component", "expenses")
	return &ExpenseService{deps: d}
}

// ExpenseInput holds the cost components; nil components count as zero.
type ExpenseInput struct {
	Month           int
	Year            int
	ElectricityBill *float64
	InternetBill    *float64
	Miscellaneous   *float64
}

func valueOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func (s *ExpenseService) Add(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	period := models.Period{Month: in.Month, Year: in.Year}
	if err := period.Validate(); err != nil {
		return nil, newError(ErrValidation, "Invalid period: "+err.Error())
	}

	e := &models.Expense{
		Month:           in.Month,
		Year:            in.Year,
		ElectricityBill: valueOrZero(in.ElectricityBill),
		InternetBill:    valueOrZero(in.InternetBill),
		Miscellaneous:   valueOrZero(in.Miscellaneous),
		CreatedAt:       s.deps.Now().UTC(),
	}
	if e.ElectricityBill < 0 || e.InternetBill < 0 || e.Miscellaneous < 0 {
		return nil, newError(ErrValidation, "Expense amounts must not be negative")
	}
	e.Recompute()

	errExists := newError(ErrConflict, "Expense for this month already exists")
	if _, err := s.deps.Expenses.FindByPeriod(ctx, period); err == nil {
		return nil, errExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// the unique index catches a concurrent insert the check above missed
	if err := s.deps.Expenses.Create(ctx, e); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errExists
		}
		return nil, err
	}

	s.deps.Logger.InfoContext(ctx, "Expense added", "period", period.Key(), "total", e.TotalExpense)
	s.deps.publish(ctx, events.ExpenseCreated, e)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.deps.Expenses.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrNotFound, "Expense not found")
		}
		return err
	}

	s.deps.Logger.InfoContext(ctx, "Expense deleted", "expense_id", id)
	s.deps.publish(ctx, events.ExpenseDeleted, map[string]string{"id": id})
	return nil
}

// List returns all expenses, newest period first.
func (s *ExpenseService) List(ctx context.Context) ([]models.Expense, error) {
	return s.deps.Expenses.List(ctx)
}

// TotalFor returns the period's total expense, or zero when none is recorded.
func (s *ExpenseService) TotalFor(ctx context.Context, period models.Period) (float64, error) {
	e, err := s.deps.Expenses.FindByPeriod(ctx, period)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return e.TotalExpense, nil
}
