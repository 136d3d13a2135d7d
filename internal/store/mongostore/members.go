// Package mongostore implements the store interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
)

const (
	membersCollection  = "members"
	expensesCollection = "expenses"
)

type MemberStore struct {
	collection *mongo.Collection
}

func NewMemberStore(db *mongo.Database) *MemberStore {
	return &MemberStore{collection: db.Collection(membersCollection)}
}

func (s *MemberStore) Create(ctx context.Context, m *models.Member) error {
	if m.Payments == nil {
		// $set on payments.<key> needs an embedded document, not null
		m.Payments = make(map[string]models.PaymentRecord)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	if _, err := s.collection.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert member %s: %w", m.MemberID, err)
	}
	return nil
}

func (s *MemberStore) FindByID(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find member %s: %w", id, err)
	}
	return &m, nil
}

func (s *MemberStore) FindAll(ctx context.Context) ([]models.Member, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cur, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	defer cur.Close(ctx)

	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return members, nil
}

func (s *MemberStore) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash}},
	)
	if err != nil {
		return fmt.Errorf("update password for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MemberStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete member %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MemberStore) UpsertPayment(ctx context.Context, id string, rec models.PaymentRecord) (bool, error) {
	field := "payments." + rec.Period().Key()
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: rec}},
	)
	if err != nil {
		return false, fmt.Errorf("upsert payment %s for %s: %w", rec.Period(), id, err)
	}
	return res.MatchedCount > 0, nil
}
