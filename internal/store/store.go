// Package store defines the collection-scoped persistence contract implemented by the
// MongoDB store (internal/database) and the in-memory store (internal/store/memstore).
package store

import (
	"context"
	"time"

	"apiary-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is satisfied by pointers to every stored record type.
type Document[T any] interface {
	*T
	DocumentID() primitive.ObjectID
	SetDocumentID(primitive.ObjectID)
	CreationTime() time.Time
}

// Collection is CRUD over one record kind.
//
// Get returns (nil, nil) when the id does not exist. Replace and Delete fail with an
// apperr NotFound in that case. List is ordered by creation time, newest first.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Insert(ctx context.Context, doc *T) error
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// HarvestCollection adds the filtered harvest-by-hive query.
type HarvestCollection interface {
	Collection[models.Harvest]
	ListByHive(ctx context.Context, hiveID primitive.ObjectID) ([]models.Harvest, error)
}

// ActivityLog is an append-only record of mutations.
type ActivityLog interface {
	Append(ctx context.Context, entry *models.ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// Store groups the collections of one backing document database.
type Store interface {
	Supplies() Collection[models.SupplyItem]
	Hives() Collection[models.Hive]
	Harvests() HarvestCollection
	Activity() ActivityLog
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
