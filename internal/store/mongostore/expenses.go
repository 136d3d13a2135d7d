package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
)

type ExpenseStore struct {
	collection *mongo.Collection
}

func NewExpenseStore(db *mongo.Database) *ExpenseStore {
	return &ExpenseStore{collection: db.Collection(expensesCollection)}
}

// EnsureIndexes creates the unique (month, year) index backing the one
// expense per period rule.
func (s *ExpenseStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "month", Value: 1}, {Key: "year", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("month_year_unique"),
	})
	if err != nil {
		return fmt.Errorf("create expense indexes: %w", err)
	}
	return nil
}

func (s *ExpenseStore) Create(ctx context.Context, e *models.Expense) error {
	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if _, err := s.collection.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert expense %s: %w", e.Period(), err)
	}
	return nil
}

func (s *ExpenseStore) FindByPeriod(ctx context.Context, p models.Period) (*models.Expense, error) {
	var e models.Expense
	err := s.collection.FindOne(ctx, bson.M{"month": p.Month, "year": p.Year}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find expense %s: %w", p, err)
	}
	return &e, nil
}

func (s *ExpenseStore) List(ctx context.Context) ([]models.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	cur, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer cur.Close(ctx)

	expenses := []models.Expense{}
	if err := cur.All(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
