// Package memory is an in-process store backend for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
)

// Store keeps members and expenses in maps. Every read returns a copy so
// callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	members  map[string]models.Member
	expenses map[primitive.ObjectID]models.Expense
}

func New() *Store {
	return &Store{
		members:  make(map[string]models.Member),
		expenses: make(map[primitive.ObjectID]models.Expense),
	}
}

// Members and Expenses expose the two halves under the store interfaces.
func (s *Store) Members() store.MemberStore   { return memberStore{s} }
func (s *Store) Expenses() store.ExpenseStore { return expenseStore{s} }

func cloneMember(m models.Member) models.Member {
	payments := make(map[string]models.PaymentRecord, len(m.Payments))
	for k, v := range m.Payments {
		payments[k] = v
	}
	m.Payments = payments
	return m
}

type memberStore struct{ s *Store }

func (ms memberStore) Create(_ context.Context, m *models.Member) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	if _, ok := ms.s.members[m.MemberID]; ok {
		return store.ErrDuplicate
	}
	if m.Payments == nil {
		m.Payments = make(map[string]models.PaymentRecord)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	ms.s.members[m.MemberID] = cloneMember(*m)
	return nil
}

func (ms memberStore) FindByID(_ context.Context, id string) (*models.Member, error) {
	ms.s.mu.RLock()
	defer ms.s.mu.RUnlock()

	m, ok := ms.s.members[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneMember(m)
	return &out, nil
}

func (ms memberStore) FindAll(_ context.Context) ([]models.Member, error) {
	ms.s.mu.RLock()
	defer ms.s.mu.RUnlock()

	out := make([]models.Member, 0, len(ms.s.members))
	for _, m := range ms.s.members {
		m = cloneMember(m)
		m.PasswordHash = ""
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out, nil
}

func (ms memberStore) UpdatePassword(_ context.Context, id, hash string) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	m, ok := ms.s.members[id]
	if !ok {
		return store.ErrNotFound
	}
	m.PasswordHash = hash
	ms.s.members[id] = m
	return nil
}

func (ms memberStore) Delete(_ context.Context, id string) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	if _, ok := ms.s.members[id]; !ok {
		return store.ErrNotFound
	}
	delete(ms.s.members, id)
	return nil
}

func (ms memberStore) UpsertPayment(_ context.Context, id string, rec models.PaymentRecord) (bool, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	m, ok := ms.s.members[id]
	if !ok {
		return false, nil
	}
	m = cloneMember(m)
	m.SetPayment(rec)
	ms.s.members[id] = m
	return true, nil
}

type expenseStore struct{ s *Store }

func (es expenseStore) Create(_ context.Context, e *models.Expense) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()

	for _, existing := range es.s.expenses {
		if existing.Period() == e.Period() {
			return store.ErrDuplicate
		}
	}
	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	es.s.expenses[e.ID] = *e
	return nil
}

func (es expenseStore) FindByPeriod(_ context.Context, p models.Period) (*models.Expense, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	for _, e := range es.s.expenses {
		if e.Period() == p {
			out := e
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (es expenseStore) List(_ context.Context) ([]models.Expense, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	out := make([]models.Expense, 0, len(es.s.expenses))
	for _, e := range es.s.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[j].Period().Before(out[i].Period())
	})
	return out, nil
}

func (es expenseStore) Delete(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}

	es.s.mu.Lock()
	defer es.s.mu.Unlock()

	if _, ok := es.s.expenses[objID]; !ok {
		return store.ErrNotFound
	}
	delete(es.s.expenses, objID)
	return nil
}
