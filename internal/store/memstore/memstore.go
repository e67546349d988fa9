// Package memstore is an in-memory store.Store used by tests and by the
// "memory" store driver for local development.
package memstore

import (
	"context"
	"sort"
	"sync"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/models"
	"apiary-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type collection[T any, P store.Document[T]] struct {
	mu   sync.RWMutex
	kind string
	docs map[primitive.ObjectID]T
}

func newCollection[T any, P store.Document[T]](kind string) *collection[T, P] {
	return &collection[T, P]{kind: kind, docs: make(map[primitive.ObjectID]T)}
}

func (c *collection[T, P]) List(ctx context.Context) ([]T, error) {
	return c.filter(ctx, func(*T) bool { return true })
}

func (c *collection[T, P]) filter(ctx context.Context, keep func(*T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable(c.kind, err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.docs))
	for _, doc := range c.docs {
		doc := doc
		if keep(&doc) {
			out = append(out, doc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := P(&out[i]), P(&out[j])
		if !a.CreationTime().Equal(b.CreationTime()) {
			return a.CreationTime().After(b.CreationTime())
		}
		return a.DocumentID().Hex() > b.DocumentID().Hex()
	})
	return out, nil
}

func (c *collection[T, P]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable(c.kind, err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (c *collection[T, P]) Insert(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return apperr.Unavailable(c.kind, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := P(doc)
	if p.DocumentID().IsZero() {
		p.SetDocumentID(primitive.NewObjectID())
	}
	c.docs[p.DocumentID()] = *doc
	return nil
}

func (c *collection[T, P]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	if err := ctx.Err(); err != nil {
		return apperr.Unavailable(c.kind, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return apperr.NotFound(c.kind, id.Hex())
	}
	P(doc).SetDocumentID(id)
	c.docs[id] = *doc
	return nil
}

func (c *collection[T, P]) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return apperr.Unavailable(c.kind, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return apperr.NotFound(c.kind, id.Hex())
	}
	delete(c.docs, id)
	return nil
}

type harvests struct {
	*collection[models.Harvest, *models.Harvest]
}

func (h harvests) ListByHive(ctx context.Context, hiveID primitive.ObjectID) ([]models.Harvest, error) {
	return h.filter(ctx, func(doc *models.Harvest) bool {
		return doc.HiveRef != nil && *doc.HiveRef == hiveID
	})
}

type activity struct {
	*collection[models.ActivityEntry, *models.ActivityEntry]
}

func (a activity) Append(ctx context.Context, entry *models.ActivityEntry) error {
	return a.Insert(ctx, entry)
}

func (a activity) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	all, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Store is a process-local store.Store. The zero value is not usable; call New.
type Store struct {
	supplies *collection[models.SupplyItem, *models.SupplyItem]
	hives    *collection[models.Hive, *models.Hive]
	harvests harvests
	activity activity
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		supplies: newCollection[models.SupplyItem, *models.SupplyItem](models.KindSupply),
		hives:    newCollection[models.Hive, *models.Hive](models.KindHive),
		harvests: harvests{newCollection[models.Harvest, *models.Harvest](models.KindHarvest)},
		activity: activity{newCollection[models.ActivityEntry, *models.ActivityEntry]("activity")},
	}
}

func (s *Store) Supplies() store.Collection[models.SupplyItem] { return s.supplies }
func (s *Store) Hives() store.Collection[models.Hive]          { return s.hives }
func (s *Store) Harvests() store.HarvestCollection              { return s.harvests }
func (s *Store) Activity() store.ActivityLog                    { return s.activity }
func (s *Store) Ping(ctx context.Context) error                 { return ctx.Err() }
func (s *Store) Close(context.Context) error                    { return nil }
