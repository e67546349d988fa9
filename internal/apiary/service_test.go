package apiary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/auth"
	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/imaging"
	"apiary-api-server/internal/models"
	"apiary-api-server/internal/store"
	"apiary-api-server/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recorder struct {
	mu     sync.Mutex
	events []store.Event
}

func (r *recorder) Publish(ev store.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type fakePhotos struct {
	objects map[string][]byte
	failDel bool
}

func (f *fakePhotos) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakePhotos) Delete(_ context.Context, key string) error {
	if f.failDel {
		return errors.New("denied")
	}
	delete(f.objects, key)
	return nil
}

func (f *fakePhotos) KeyFromURL(url string) string {
	if !strings.HasPrefix(url, "https://cdn.test/") {
		return ""
	}
	return strings.TrimPrefix(url, "https://cdn.test/")
}

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }
func integer(i int) *int     { return &i }
func boolean(b bool) *bool   { return &b }

func newService(t *testing.T, opts ...Option) (*Service, *recorder) {
	t.Helper()
	clock := &tickingClock{t: time.Date(2026, time.May, 15, 9, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	opts = append([]Option{WithClock(clock.now), WithNotifier(rec)}, opts...)
	return New(memstore.New(), opts...), rec
}

func TestSupplyRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateSupply(ctx, SupplyInput{
		Name:     str("Smoker fuel"),
		Quantity: num(-2),
		Unit:     str("kg"),
		Category: str("consumible"),
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.GetSupply(ctx, created.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *created, *got)
	assert.Equal(t, "Smoker fuel", got.Name)
	assert.Equal(t, -2.0, got.Quantity)
}

func TestDeleteTwice(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	item, err := svc.CreateSupply(ctx, SupplyInput{Name: str("Wax"), Quantity: num(3)})
	require.NoError(t, err)
	id := item.ID.Hex()

	require.NoError(t, svc.DeleteSupply(ctx, id))
	err = svc.DeleteSupply(ctx, id)
	assert.True(t, apperr.IsNotFound(err), "second delete: %v", err)

	got, err := svc.GetSupply(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.Len(t, rec.events, 2)
	assert.Equal(t, store.EventCreated, rec.events[0].Type)
	assert.Equal(t, store.EventDeleted, rec.events[1].Type)
	assert.Equal(t, id, rec.events[1].ID)
}

func TestMalformedID(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.GetHive(context.Background(), "not-an-id")
	assert.True(t, apperr.IsInvalid(err))
	assert.True(t, apperr.IsInvalid(svc.DeleteHarvest(context.Background(), "zzz")))
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.UpdateHive(context.Background(), "65f000000000000000000001", HiveInput{BoxCount: integer(2)}, nil)
	assert.True(t, apperr.IsNotFound(err))
}

func TestPartialUpdateAndActivity(t *testing.T) {
	svc, _ := newService(t)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "ana"})

	item, err := svc.CreateSupply(ctx, SupplyInput{Name: str("Frascos"), Quantity: num(12), Unit: str("u"), Description: str("500 g")})
	require.NoError(t, err)

	updated, err := svc.UpdateSupply(ctx, item.ID.Hex(), SupplyInput{Quantity: num(7)}, []string{"descripcion"})
	require.NoError(t, err)
	assert.Equal(t, "Frascos", updated.Name)
	assert.Equal(t, "u", updated.Unit)
	assert.Equal(t, 7.0, updated.Quantity)
	assert.Empty(t, updated.Description)
	assert.Equal(t, item.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "ana", updated.UserID)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	log, err := svc.ActivityLog(ctx, 0)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, models.ActionUpdate, log[0].Action)
	require.NotNil(t, log[0].QuantityBefore)
	require.NotNil(t, log[0].QuantityAfter)
	assert.Equal(t, 12.0, *log[0].QuantityBefore)
	assert.Equal(t, 7.0, *log[0].QuantityAfter)
	assert.Equal(t, "ana", log[0].User)
	assert.Equal(t, models.ActionAdd, log[1].Action)

	latest, err := svc.ActivityLog(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestUnsetRules(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	item, err := svc.CreateSupply(ctx, SupplyInput{Name: str("Cera")})
	require.NoError(t, err)

	_, err = svc.UpdateSupply(ctx, item.ID.Hex(), SupplyInput{}, []string{"nombre"})
	require.True(t, apperr.IsInvalid(err))
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "nombre", ae.Field)

	_, err = svc.UpdateSupply(ctx, item.ID.Hex(), SupplyInput{Unit: str("kg")}, []string{"unidad"})
	assert.True(t, apperr.IsInvalid(err))

	_, err = svc.UpdateSupply(ctx, item.ID.Hex(), SupplyInput{Name: str("  ")}, nil)
	assert.True(t, apperr.IsInvalid(err))
}

func TestHiveCodeGeneration(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.CreateHive(ctx, HiveInput{})
	require.NoError(t, err)
	assert.Equal(t, "COL-001", first.Code)
	assert.True(t, first.Active)
	assert.Equal(t, models.DefaultHiveStyle, first.HiveStyle)

	_, err = svc.CreateHive(ctx, HiveInput{Code: str("COL-007")})
	require.NoError(t, err)
	_, err = svc.CreateHive(ctx, HiveInput{Code: str("Reina vieja")})
	require.NoError(t, err)

	next, err := svc.CreateHive(ctx, HiveInput{Code: str("")})
	require.NoError(t, err)
	assert.Equal(t, "COL-008", next.Code)

	spaces, err := svc.CreateHive(ctx, HiveInput{Code: str("   ")})
	require.NoError(t, err)
	assert.Equal(t, "COL-009", spaces.Code)

	padded, err := svc.CreateHive(ctx, HiveInput{Code: str("  Norte  ")})
	require.NoError(t, err)
	assert.Equal(t, "Norte", padded.Code)

	_, err = svc.UpdateHive(ctx, padded.ID.Hex(), HiveInput{Code: str("  ")}, nil)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindInvalidInput, ae.Kind)
	assert.Equal(t, "codigo", ae.Field)
}

func TestHiveValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := map[string]struct {
		in    HiveInput
		field string
	}{
		"negative boxes":     {HiveInput{BoxCount: integer(-1)}, "cantidadAlzas"},
		"negative queen age": {HiveInput{QueenAgeMonths: integer(-3)}, "edadReinaMeses"},
		"bad date":           {HiveInput{InstalledOn: str("15/05/2026")}, "fechaInstalacion"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateHive(ctx, tc.in)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.KindInvalidInput, ae.Kind)
			assert.Equal(t, tc.field, ae.Field)
		})
	}

	h, err := svc.CreateHive(ctx, HiveInput{InstalledOn: str("2025-03-01"), Notes: str("fuerte")})
	require.NoError(t, err)
	updated, err := svc.UpdateHive(ctx, h.ID.Hex(), HiveInput{Active: boolean(false)}, []string{"fechaInstalacion", "notas"})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.True(t, updated.InstalledOn.IsZero())
	assert.Empty(t, updated.Notes)
}

func TestHarvestCreateAndFilter(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	hive, err := svc.CreateHive(ctx, HiveInput{})
	require.NoError(t, err)
	other, err := svc.CreateHive(ctx, HiveInput{})
	require.NoError(t, err)

	h, err := svc.CreateHarvest(ctx, HarvestInput{
		HiveRef:        str(models.HiveRefPrefix + hive.ID.Hex()),
		DateHarvested:  str("2026-05-02"),
		HoneyKg:        num(14.5),
		HumidityPct:    num(17.8),
		CombsExtracted: integer(9),
	})
	require.NoError(t, err)
	assert.Equal(t, hive.ID.Hex(), h.HiveID())
	assert.Equal(t, models.DefaultHarvestMethod, h.Method)
	assert.Equal(t, models.DefaultHoneyType, h.HoneyType)
	assert.Equal(t, "2026-05-02", models.FormatDate(h.DateHarvested))

	_, err = svc.CreateHarvest(ctx, HarvestInput{HiveRef: str(other.ID.Hex()), DateHarvested: str("2026-05-03")})
	require.NoError(t, err)

	mine, err := svc.HarvestsByHive(ctx, models.HiveRefPrefix+hive.ID.Hex())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, h.ID, mine[0].ID)

	_, err = svc.HarvestsByHive(ctx, "")
	assert.True(t, apperr.IsInvalid(err))

	cleared, err := svc.UpdateHarvest(ctx, h.ID.Hex(), HarvestInput{}, []string{"colmenaId"})
	require.NoError(t, err)
	assert.Nil(t, cleared.HiveRef)
}

func TestHarvestValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := map[string]struct {
		in    HarvestInput
		field string
	}{
		"missing date":  {HarvestInput{HoneyKg: num(2)}, "fecha"},
		"bad date":      {HarvestInput{DateHarvested: str("mayo")}, "fecha"},
		"negative kg":   {HarvestInput{DateHarvested: str("2026-05-01"), HoneyKg: num(-1)}, "cantidadKg"},
		"humidity high": {HarvestInput{DateHarvested: str("2026-05-01"), HumidityPct: num(100.5)}, "humedad"},
		"humidity low":  {HarvestInput{DateHarvested: str("2026-05-01"), HumidityPct: num(-0.1)}, "humedad"},
		"neg combs":     {HarvestInput{DateHarvested: str("2026-05-01"), CombsExtracted: integer(-2)}, "panalesExtraidos"},
		"bad hive ref":  {HarvestInput{DateHarvested: str("2026-05-01"), HiveRef: str("colmenas/xyz")}, "colmenaId"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateHarvest(ctx, tc.in)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.KindInvalidInput, ae.Kind)
			assert.Equal(t, tc.field, ae.Field)
		})
	}
}

func TestDashboardScenarios(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	hive, err := svc.CreateHive(ctx, HiveInput{
		Code: str("COL-001"), Active: boolean(true), QueenAgeMonths: integer(20), BoxCount: integer(2),
		InstalledOn: str("2026-04-01"),
	})
	require.NoError(t, err)
	fuel, err := svc.CreateSupply(ctx, SupplyInput{Name: str("Smoker fuel"), Quantity: num(-2)})
	require.NoError(t, err)
	wet, err := svc.CreateHarvest(ctx, HarvestInput{
		HiveRef: str(hive.ID.Hex()), DateHarvested: str("2026-05-10"),
		HoneyKg: num(0.5), CombsExtracted: integer(1), HumidityPct: num(20),
		FloralSource: str("eucalipto"), Operator: str("Ana"),
	})
	require.NoError(t, err)

	summary, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ActiveHiveCount)
	assert.InDelta(t, 0.5, summary.MonthlyHoneyKg, 1e-9)

	count := func(rule, target string) int {
		n := 0
		for _, a := range summary.Alerts {
			if a.Rule == rule && a.TargetID == target {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 1, count(dashboard.RuleQueenReplacement, hive.ID.Hex()))
	assert.Zero(t, count(dashboard.RuleBoxSpace, hive.ID.Hex()))
	assert.Equal(t, 1, count(dashboard.RuleLowStock, fuel.ID.Hex()))
	assert.Equal(t, 1, count(dashboard.RuleFermentation, wet.ID.Hex()))
	assert.Equal(t, 1, count(dashboard.RuleLowYield, wet.ID.Hex()))

	require.NotEmpty(t, summary.Alerts)
	assert.Equal(t, dashboard.SeverityCritical, summary.Alerts[0].Severity)
	for _, a := range summary.Alerts {
		if a.Rule == dashboard.RuleLowStock {
			assert.Equal(t, dashboard.SeverityCritical, a.Severity)
			assert.Contains(t, a.Description, "-2")
		}
	}
}

func TestRequireAuth(t *testing.T) {
	svc, _ := newService(t, RequireAuth(true))

	_, err := svc.CreateHive(context.Background(), HiveInput{})
	assert.True(t, apperr.IsUnauthorized(err))

	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "u-1"})
	h, err := svc.CreateHive(ctx, HiveInput{})
	require.NoError(t, err)
	assert.Equal(t, "u-1", h.UserID)

	hives, err := svc.ListHives(context.Background())
	require.NoError(t, err)
	assert.Len(t, hives, 1)
}

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for x := 0; x < 32; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{250, 200, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHivePhotos(t *testing.T) {
	photos := &fakePhotos{objects: map[string][]byte{}}
	svc, _ := newService(t, WithPhotoStore(photos, imagingDefaults()))
	ctx := context.Background()

	hive, err := svc.CreateHive(ctx, HiveInput{})
	require.NoError(t, err)

	first, err := svc.SetHivePhoto(ctx, hive.ID.Hex(), bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	firstKey := photos.KeyFromURL(first.PhotoURL)
	assert.True(t, strings.HasPrefix(firstKey, fmt.Sprintf("colmenas/%s_", hive.ID.Hex())))
	assert.True(t, strings.HasSuffix(firstKey, ".jpg"))
	assert.Contains(t, photos.objects, firstKey)

	second, err := svc.SetHivePhoto(ctx, hive.ID.Hex(), bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.NotEqual(t, first.PhotoURL, second.PhotoURL)
	assert.NotContains(t, photos.objects, firstKey)
	assert.Len(t, photos.objects, 1)

	_, err = svc.SetHivePhoto(ctx, hive.ID.Hex(), strings.NewReader("definitely not an image"))
	assert.True(t, apperr.IsInvalid(err))

	cleared, err := svc.DeleteHivePhoto(ctx, hive.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, cleared.PhotoURL)
	assert.Empty(t, photos.objects)

	stored, err := svc.GetHive(ctx, hive.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.PhotoURL)
}

func TestPhotosUnavailableWithoutStore(t *testing.T) {
	svc, _ := newService(t)
	hive, err := svc.CreateHive(context.Background(), HiveInput{})
	require.NoError(t, err)

	assert.False(t, svc.PhotosEnabled())
	_, err = svc.SetHivePhoto(context.Background(), hive.ID.Hex(), bytes.NewReader(pngBytes(t)))
	assert.True(t, apperr.IsUnavailable(err))
	_, err = svc.DeleteHivePhoto(context.Background(), hive.ID.Hex())
	assert.True(t, apperr.IsUnavailable(err))
}

func TestDeleteHiveKeepsHarvests(t *testing.T) {
	photos := &fakePhotos{objects: map[string][]byte{}}
	svc, _ := newService(t, WithPhotoStore(photos, imagingDefaults()))
	ctx := context.Background()

	hive, err := svc.CreateHive(ctx, HiveInput{})
	require.NoError(t, err)
	_, err = svc.SetHivePhoto(ctx, hive.ID.Hex(), bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	_, err = svc.CreateHarvest(ctx, HarvestInput{HiveRef: str(hive.ID.Hex()), DateHarvested: str("2026-05-01")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHive(ctx, hive.ID.Hex()))
	assert.Empty(t, photos.objects)

	harvests, err := svc.ListHarvests(ctx)
	require.NoError(t, err)
	require.Len(t, harvests, 1)
	assert.Equal(t, hive.ID.Hex(), harvests[0].HiveID())
}

func imagingDefaults() imaging.Options { return imaging.Options{} }
