package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openshelf/library-system/internal/core/domain"
)

const collectionLedger = "circulation_events"

// LedgerRepository appends circulation events to an audit collection. The
// relational store stays the source of truth; this is a write-only trail.
type LedgerRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{col: db.Collection(collectionLedger), now: time.Now}
}

// Insert persists one borrow or return event.
func (r *LedgerRepository) Insert(ctx context.Context, event *domain.LedgerEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, ledgerDocument(event, r.now())); err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes on the ledger collection.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "record_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "book_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func ledgerDocument(event *domain.LedgerEvent, recordedAt time.Time) bson.M {
	return bson.M{
		"action":      string(event.Action),
		"record_id":   event.RecordID,
		"user_id":     event.UserID,
		"book_id":     event.BookID,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": recordedAt.UTC(),
	}
}
