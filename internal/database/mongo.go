// internal/database/mongo.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apiary-api-server/config"
	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/models"
	"apiary-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore is the store.Store backed by a MongoDB database.
type MongoStore struct {
	client   *mongo.Client
	DB       *mongo.Database
	supplies *collection[models.SupplyItem, *models.SupplyItem]
	hives    *collection[models.Hive, *models.Hive]
	harvests harvestCollection
	activity activityLog
}

var _ store.Store = (*MongoStore)(nil)

// Connect dials MongoDB, verifies the connection and makes sure indexes exist.
func Connect(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := NewMongoStore(client, client.Database(cfg.DBName))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStore wraps an already connected database.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:   client,
		DB:       db,
		supplies: &collection[models.SupplyItem, *models.SupplyItem]{coll: db.Collection(models.SuppliesCollection), kind: models.KindSupply},
		hives:    &collection[models.Hive, *models.Hive]{coll: db.Collection(models.HivesCollection), kind: models.KindHive},
		harvests: harvestCollection{&collection[models.Harvest, *models.Harvest]{coll: db.Collection(models.HarvestsCollection), kind: models.KindHarvest}},
		activity: activityLog{&collection[models.ActivityEntry, *models.ActivityEntry]{coll: db.Collection(models.ActivityCollection), kind: "activity", sortKey: "timestamp"}},
	}
}

// EnsureIndexes creates the secondary indexes the queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		models.SuppliesCollection: {{Keys: bson.D{{Key: "creadoEn", Value: -1}}}},
		models.HivesCollection: {
			{Keys: bson.D{{Key: "creadoEn", Value: -1}}},
			{Keys: bson.D{{Key: "codigo", Value: 1}}},
		},
		models.HarvestsCollection: {
			{Keys: bson.D{{Key: "creadoEn", Value: -1}}},
			{Keys: bson.D{{Key: "colmenaRef", Value: 1}, {Key: "fecha", Value: -1}}},
		},
		models.ActivityCollection: {{Keys: bson.D{{Key: "timestamp", Value: -1}}}},
	}
	for name, idx := range indexes {
		if _, err := s.DB.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStore) Supplies() store.Collection[models.SupplyItem] { return s.supplies }
func (s *MongoStore) Hives() store.Collection[models.Hive]          { return s.hives }
func (s *MongoStore) Harvests() store.HarvestCollection              { return s.harvests }
func (s *MongoStore) Activity() store.ActivityLog                    { return s.activity }

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return apperr.Unavailable("database", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// collection implements store.Collection over one mongo collection.
type collection[T any, P store.Document[T]] struct {
	coll    *mongo.Collection
	kind    string
	sortKey string
}

func (c *collection[T, P]) sortField() string {
	if c.sortKey != "" {
		return c.sortKey
	}
	return "creadoEn"
}

func (c *collection[T, P]) find(ctx context.Context, filter bson.M, limit int64) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: c.sortField(), Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, c.classify(err, "")
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, c.classify(err, "")
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

func (c *collection[T, P]) List(ctx context.Context) ([]T, error) {
	return c.find(ctx, bson.M{}, 0)
}

func (c *collection[T, P]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, c.classify(err, id.Hex())
	}
	return &doc, nil
}

func (c *collection[T, P]) Insert(ctx context.Context, doc *T) error {
	p := P(doc)
	if p.DocumentID().IsZero() {
		p.SetDocumentID(primitive.NewObjectID())
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return c.classify(err, p.DocumentID().Hex())
	}
	return nil
}

func (c *collection[T, P]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	P(doc).SetDocumentID(id)
	result, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return c.classify(err, id.Hex())
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound(c.kind, id.Hex())
	}
	return nil
}

func (c *collection[T, P]) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return c.classify(err, id.Hex())
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound(c.kind, id.Hex())
	}
	return nil
}

func (c *collection[T, P]) classify(err error, id string) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		e := apperr.Unavailable(c.kind, err)
		e.ID = id
		return e
	}
	e := apperr.Internal(c.kind, err)
	e.ID = id
	return e
}

type harvestCollection struct {
	*collection[models.Harvest, *models.Harvest]
}

func (h harvestCollection) ListByHive(ctx context.Context, hiveID primitive.ObjectID) ([]models.Harvest, error) {
	return h.find(ctx, bson.M{"colmenaRef": hiveID}, 0)
}

type activityLog struct {
	*collection[models.ActivityEntry, *models.ActivityEntry]
}

func (a activityLog) Append(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return a.Insert(ctx, entry)
}

func (a activityLog) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	return a.find(ctx, bson.M{}, int64(limit))
}
