// internal/database/seeder.go
package database

import (
	"context"
	"fmt"
	"time"

	"apiary-api-server/internal/models"
	"apiary-api-server/internal/store"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedDemo inserts a small demo apiary when the hive collection is empty.
// It returns false when seeding was skipped.
func SeedDemo(ctx context.Context, s store.Store, now time.Time, log zerolog.Logger) (bool, error) {
	existing, err := s.Hives().List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		log.Info().Int("hives", len(existing)).Msg("demo data already present, seeding skipped")
		return false, nil
	}

	log.Info().Msg("seeding demo apiary")
	day := func(monthsAgo, days int) time.Time {
		y, m, d := now.AddDate(0, -monthsAgo, -days).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	hives := []*models.Hive{
		{ApiaryLabel: "Apiario Norte", Code: "COL-001", BoxCount: 2, QueenAgeMonths: 20, Active: true, InstalledOn: day(14, 0), QueenOrigin: "propia", HiveStyle: models.DefaultHiveStyle},
		{ApiaryLabel: "Apiario Norte", Code: "COL-002", BoxCount: 3, QueenAgeMonths: 6, Active: true, InstalledOn: day(9, 0), QueenOrigin: "comprada", HiveStyle: models.DefaultHiveStyle},
		{ApiaryLabel: "Apiario Sur", Code: "COL-003", BoxCount: 1, QueenAgeMonths: 10, Active: false, InstalledOn: day(24, 0), QueenOrigin: "enjambre", HiveStyle: "Dadant"},
	}
	for i, h := range hives {
		h.CreatedAt = now.Add(time.Duration(i) * time.Second)
		if err := s.Hives().Insert(ctx, h); err != nil {
			return false, fmt.Errorf("seeding hive %s: %w", h.Code, err)
		}
	}

	supplies := []*models.SupplyItem{
		{Name: "Cera estampada", Quantity: 40, Unit: "láminas", Category: "material"},
		{Name: "Combustible ahumador", Quantity: 2, Unit: "kg", Category: "consumible"},
		{Name: "Frascos 500g", Quantity: -3, Unit: "unidades", Category: "envase"},
	}
	for i, it := range supplies {
		it.CreatedAt = now.Add(time.Duration(i) * time.Second)
		if err := s.Supplies().Insert(ctx, it); err != nil {
			return false, fmt.Errorf("seeding supply %s: %w", it.Name, err)
		}
	}

	harvests := []*models.Harvest{
		{HiveRef: &hives[0].ID, DateHarvested: day(0, 3), HoneyKg: 12.5, HumidityPct: 17.2, CombsExtracted: 8, Method: models.DefaultHarvestMethod, FloralSource: "eucalipto", Operator: "Carlos", HoneyType: models.DefaultHoneyType},
		{HiveRef: &hives[1].ID, DateHarvested: day(1, 0), HoneyKg: 3, HumidityPct: 19.1, CombsExtracted: 6, Method: models.DefaultHarvestMethod, HoneyType: models.DefaultHoneyType},
	}
	for i, h := range harvests {
		h.CreatedAt = now.Add(time.Duration(i) * time.Second)
		if err := s.Harvests().Insert(ctx, h); err != nil {
			return false, fmt.Errorf("seeding harvest: %w", err)
		}
	}

	log.Info().Int("hives", len(hives)).Int("supplies", len(supplies)).Int("harvests", len(harvests)).Msg("demo apiary seeded")
	return true, nil
}

// BackfillOwner sets userId on every record that does not have one yet and
// reports how many documents were updated per collection.
func BackfillOwner(ctx context.Context, db *mongo.Database, userID string, log zerolog.Logger) (map[string]int64, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	updated := make(map[string]int64)
	filter := bson.M{"$or": bson.A{
		bson.M{"userId": bson.M{"$exists": false}},
		bson.M{"userId": ""},
	}}
	for _, name := range []string{models.SuppliesCollection, models.HivesCollection, models.HarvestsCollection} {
		result, err := db.Collection(name).UpdateMany(ctx, filter, bson.M{"$set": bson.M{"userId": userID}})
		if err != nil {
			return updated, fmt.Errorf("backfilling %s: %w", name, err)
		}
		updated[name] = result.ModifiedCount
		log.Info().Str("collection", name).Int64("updated", result.ModifiedCount).Msg("owner backfill")
	}
	return updated, nil
}
