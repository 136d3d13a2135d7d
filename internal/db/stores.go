package db

import (
	"context"
	"fmt"
	"time"

	"github.com/markjakearzadon/clubdues-gobackend/internal/config"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store/memory"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store/mongostore"
)

const disconnectTimeout = 5 * time.Second

// Stores is the persistence selected by configuration.
type Stores struct {
	Members  store.MemberStore
	Expenses store.ExpenseStore

	close func() error
}

// Close releases the backend connection, if any.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores connects the configured backend and prepares its indexes.
func OpenStores(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		mem := memory.New()
		return &Stores{Members: mem.Members(), Expenses: mem.Expenses()}, nil

	case config.BackendMongo:
		client, err := Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.Database)

		expenses := mongostore.NewExpenseStore(database)
		if err := expenses.EnsureIndexes(ctx); err != nil {
			_ = Disconnect(client, disconnectTimeout)
			return nil, err
		}
		return &Stores{
			Members:  mongostore.NewMemberStore(database),
			Expenses: expenses,
			close:    func() error { return Disconnect(client, disconnectTimeout) },
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
