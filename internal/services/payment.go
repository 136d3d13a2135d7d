package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/markjakearzadon/clubdues-gobackend/internal/events"
	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
)

// batchConcurrency bounds the concurrent member writes of one batch.
const batchConcurrency = 8

// PaymentService is the dues ledger: per-member, per-period payment records.
type PaymentService struct {
	deps Deps
}

func NewPaymentService(d Deps) *PaymentService {
	d = d.withDefaults()
	d.Logger = d.Logger.With("component", "payments")
	return &PaymentService{deps: d}
}

// PaymentEntry is one member's line in a batch. A nil or zero Amount means
// the default dues.
type PaymentEntry struct {
	MemberID string
	Status   models.PaymentStatus
	Amount   *float64
}

// BatchResult lists which members were written and which ids matched no member.
type BatchResult struct {
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}

// RecordPeriod replaces each listed member's record for period. Entries are
// written independently and concurrently: unknown member ids are skipped, and
// one failed write neither stops nor undoes the others. If any write failed
// an error is returned once all writes have finished.
func (s *PaymentService) RecordPeriod(ctx context.Context, period models.Period, entries []PaymentEntry) (*BatchResult, error) {
	if err := period.Validate(); err != nil {
		return nil, newError(ErrValidation, "Invalid request data: "+err.Error())
	}

	now := s.deps.Now()
	records := make(map[string]models.PaymentRecord, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.MemberID)
		if id == "" {
			return nil, newError(ErrValidation, "Invalid request data: memberId is required")
		}
		if err := e.Status.Validate(); err != nil {
			return nil, newError(ErrValidation, "Invalid request data: "+err.Error())
		}
		amount := models.DefaultDues
		if e.Amount != nil && *e.Amount != 0 {
			amount = *e.Amount
		}
		if amount < 0 {
			return nil, newError(ErrValidation, "Invalid request data: amount must not be negative")
		}
		if _, seen := records[id]; !seen {
			order = append(order, id)
		}
		// a later entry for the same member wins
		records[id] = models.NewPaymentRecord(period, e.Status, amount, now)
	}

	var (
		mu     sync.Mutex
		failed int
		result = &BatchResult{Updated: []string{}, Skipped: []string{}}
		g      errgroup.Group
	)
	g.SetLimit(batchConcurrency)

	for _, id := range order {
		rec := records[id]
		g.Go(func() error {
			ok, err := s.deps.Members.UpsertPayment(ctx, id, rec)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failed++
				s.deps.Logger.ErrorContext(ctx, "Failed to record payment",
					"member_id", id, "period", period.Key(), "error", err)
				return err
			case ok:
				result.Updated = append(result.Updated, id)
			default:
				result.Skipped = append(result.Skipped, id)
			}
			return nil
		})
	}
	err := g.Wait()

	sort.Strings(result.Updated)
	sort.Strings(result.Skipped)
	s.deps.Metrics.PaymentEntries("updated", len(result.Updated))
	s.deps.Metrics.PaymentEntries("skipped", len(result.Skipped))
	s.deps.Metrics.PaymentEntries("failed", failed)

	if len(result.Skipped) > 0 {
		s.deps.Logger.WarnContext(ctx, "Skipped payments for unknown members",
			"period", period.Key(), "member_ids", result.Skipped)
	}
	if len(result.Updated) > 0 {
		s.deps.publish(ctx, events.PaymentsRecorded, map[string]any{
			"month":   period.Month,
			"year":    period.Year,
			"members": result.Updated,
		})
	}
	if err != nil {
		return result, fmt.Errorf("record payments for %s (%d failed): %w", period, failed, err)
	}

	s.deps.Logger.InfoContext(ctx, "Payments recorded",
		"period", period.Key(), "updated", len(result.Updated), "skipped", len(result.Skipped))
	return result, nil
}

// StatsForPeriod counts paid and unpaid members for period. A member without
// a record for the period is unpaid.
func (s *PaymentService) StatsForPeriod(ctx context.Context, period models.Period) (*models.PaymentStats, error) {
	if err := period.Validate(); err != nil {
		return nil, newError(ErrValidation, "Invalid period: "+err.Error())
	}

	members, err := s.deps.Members.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	total, paid := collectionFor(members, period)
	return &models.PaymentStats{
		Month:           period.Month,
		Year:            period.Year,
		TotalMembers:    len(members),
		PaidMembers:     paid,
		UnpaidMembers:   len(members) - paid,
		TotalCollection: total,
	}, nil
}

// collectionFor sums the paid amounts for period and counts paying members.
func collectionFor(members []models.Member, period models.Period) (float64, int) {
	total := decimal.Zero
	paid := 0
	for i := range members {
		amount, ok := members[i].PaidFor(period)
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(amount))
		paid++
	}
	return total.InexactFloat64(), paid
}
