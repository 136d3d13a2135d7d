package services

import (
	"context"

	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
)

// chartPeriods is the length of the dashboard time series.
const chartPeriods = 6

// DashboardService projects both ledgers into the admin summary. It never writes.
type DashboardService struct {
	deps     Deps
	expenses *ExpenseService
}

func NewDashboardService(d Deps) *DashboardService {
	d = d.withDefaults()
	d.Logger = d.Logger.With("component", "dashboard")
	return &DashboardService{deps: d, expenses: NewExpenseService(d)}
}

// Summary covers the current period and the six periods ending at it.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	current := models.PeriodOf(s.deps.Now())

	members, err := s.deps.Members.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	chart := make([]models.ChartPoint, 0, chartPeriods)
	for _, p := range models.TrailingPeriods(current, chartPeriods) {
		collection, _ := collectionFor(members, p)
		expense, err := s.expenses.TotalFor(ctx, p)
		if err != nil {
			return nil, err
		}
		chart = append(chart, models.ChartPoint{
			Month:      p.Month,
			Year:       p.Year,
			Collection: collection,
			Expense:    expense,
		})
	}

	last := chart[len(chart)-1]
	return &models.DashboardSummary{
		TotalMembers:      len(members),
		MonthlyCollection: last.Collection,
		MonthlyExpenses:   last.Expense,
		NetBalance:        models.Sum(last.Collection, -last.Expense),
		ChartData:         chart,
	}, nil
}
