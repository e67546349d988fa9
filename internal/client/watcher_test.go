package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"apiary-api-server/config"
	"apiary-api-server/internal/apiary"
	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/api/routes"
	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/graph"
	"apiary-api-server/internal/models"
	"apiary-api-server/internal/socket"
	"apiary-api-server/internal/store/memstore"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC)

type liveServer struct {
	client *Client
	hub    *socket.Hub
}

func startServer(t *testing.T, wrap ...func(http.Handler) http.Handler) liveServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var ticks atomic.Int64
	hub := socket.NewHub(zerolog.Nop())
	svc := apiary.New(memstore.New(),
		apiary.WithNotifier(hub),
		apiary.WithClock(func() time.Time { return fixedNow.Add(time.Duration(ticks.Add(1)) * time.Millisecond) }))
	schema, err := graph.NewSchema(svc, 5)
	require.NoError(t, err)
	cfg := config.Config{Server: config.ServerConfig{CORSOrigins: []string{"*"}}}

	var handler http.Handler = routes.SetupRouter(cfg, svc, schema, hub, zerolog.Nop())
	for _, w := range wrap {
		handler = w(handler)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return liveServer{client: New(srv.URL + "/graphql"), hub: hub}
}

func ptr[T any](v T) *T { return &v }

func seedScenario(t *testing.T, c *Client) (*Hive, *Supply, *Harvest) {
	t.Helper()
	ctx := context.Background()

	hive, err := c.CreateHive(ctx, apiary.HiveInput{QueenAgeMonths: ptr(20), BoxCount: ptr(1)})
	require.NoError(t, err)
	supply, err := c.CreateSupply(ctx, apiary.SupplyInput{Name: ptr("Jarabe"), Quantity: ptr(2.0), Unit: ptr("l")})
	require.NoError(t, err)
	harvest, err := c.CreateHarvest(ctx, apiary.HarvestInput{
		HiveRef:        ptr(models.HiveRefPrefix + hive.ID),
		DateHarvested:  ptr("2026-05-02"),
		HoneyKg:        ptr(30.0),
		HumidityPct:    ptr(20.0),
		CombsExtracted: ptr(10),
		FloralSource:   ptr("eucalipto"),
		Operator:       ptr("Ana"),
	})
	require.NoError(t, err)
	return hive, supply, harvest
}

func rules(alerts []dashboard.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Rule
	}
	return out
}

func TestClientRoundTripAgainstServer(t *testing.T) {
	ls := startServer(t)
	ctx := context.Background()
	hive, supply, harvest := seedScenario(t, ls.client)

	assert.Equal(t, "COL-001", hive.Code)
	assert.True(t, hive.Active)
	assert.Equal(t, models.HiveRefPrefix+hive.ID, *harvest.HiveRef)
	assert.Equal(t, models.DefaultHarvestMethod, *harvest.Method)

	updated, err := ls.client.UpdateSupply(ctx, supply.ID, apiary.SupplyInput{Quantity: ptr(-1.5)}, "unidad")
	require.NoError(t, err)
	assert.Equal(t, -1.5, updated.Quantity)
	assert.Nil(t, updated.Unit)
	assert.Equal(t, "Jarabe", updated.Name)

	byHive, err := ls.client.HarvestsByHive(ctx, hive.ID)
	require.NoError(t, err)
	require.Len(t, byHive, 1)
	assert.Equal(t, harvest.ID, byHive[0].ID)

	require.NoError(t, ls.client.DeleteHarvest(ctx, harvest.ID))
	err = ls.client.DeleteHarvest(ctx, harvest.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	entries, err := ls.client.ActivityLog(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.ActionDelete, entries[0].Action)
}

func TestClientSurfacesValidationErrors(t *testing.T) {
	ls := startServer(t)

	_, err := ls.client.CreateHarvest(context.Background(), apiary.HarvestInput{
		DateHarvested: ptr("2026-05-02"),
		HumidityPct:   ptr(140.0),
	})

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "humedad", se.First.Field)
}

func TestWatcherMatchesServerDashboard(t *testing.T) {
	ls := startServer(t)
	seedScenario(t, ls.client)

	var got dashboard.Summary
	w := NewWatcher(ls.client, WatcherConfig{
		Options:  dashboard.DefaultOptions(),
		Now:      func() time.Time { return fixedNow },
		OnUpdate: func(s dashboard.Summary) { got = s },
	})
	_, ok := w.Summary()
	assert.False(t, ok)

	require.NoError(t, w.Refresh(context.Background()))

	assert.Equal(t, 1, got.ActiveHiveCount)
	assert.Equal(t, 30.0, got.MonthlyHoneyKg)
	assert.Equal(t, []string{dashboard.RuleFermentation, dashboard.RuleQueenReplacement, dashboard.RuleLowStock}, rules(got.Alerts))

	server, err := ls.client.Dashboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, got.ActiveHiveCount, server.ActiveHiveCount)
	assert.Equal(t, got.MonthlyHoneyKg, server.MonthlyHoneyKg)
	assert.Equal(t, len(got.Alerts), server.TotalAlerts)
	require.Len(t, server.Alerts, len(got.Alerts))
	for i, a := range server.Alerts {
		assert.Equal(t, got.Alerts[i].ID, a.ID)
	}
}

func TestWatcherRejectsUnknownCollection(t *testing.T) {
	w := NewWatcher(New("http://127.0.0.1:1/graphql"), WatcherConfig{})

	assert.Error(t, w.Refresh(context.Background(), "hives"))
}

func TestWatcherPartialRefreshKeepsOtherCollections(t *testing.T) {
	ls := startServer(t)
	ctx := context.Background()
	seedScenario(t, ls.client)

	w := NewWatcher(ls.client, WatcherConfig{Now: func() time.Time { return fixedNow }, Options: dashboard.DefaultOptions()})
	require.NoError(t, w.Refresh(ctx))

	_, err := ls.client.CreateSupply(ctx, apiary.SupplyInput{Name: ptr("Marcos"), Quantity: ptr(-3.0)})
	require.NoError(t, err)
	require.NoError(t, w.Refresh(ctx, models.SuppliesCollection))

	summary, ok := w.Summary()
	require.True(t, ok)
	assert.Equal(t, 1, summary.ActiveHiveCount)
	assert.Equal(t, dashboard.SeverityCritical, summary.Alerts[0].Severity)
	assert.Len(t, summary.Alerts, 4)
}

// listGate holds the first list query of each collection until released.
type listGate struct {
	armed   atomic.Bool
	mu      sync.Mutex
	seen    map[string]bool
	arrived chan string
	release chan struct{}
	once    sync.Once
}

func newListGate() *listGate {
	return &listGate{seen: make(map[string]bool), arrived: make(chan string, len(allCollections)), release: make(chan struct{})}
}

func (g *listGate) open() { g.once.Do(func() { close(g.release) }) }

func (g *listGate) first(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[name] {
		return false
	}
	g.seen[name] = true
	return true
}

func (g *listGate) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.armed.Load() {
			body, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
			for _, name := range allCollections {
				if !bytes.Contains(body, []byte("query { "+name+" {")) || !g.first(name) {
					continue
				}
				g.arrived <- name
				select {
				case <-g.release:
				case <-r.Context().Done():
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func TestWatcherSupersededCollectionKeepsOthersLoading(t *testing.T) {
	gate := newListGate()
	ls := startServer(t, gate.wrap)
	t.Cleanup(gate.open)
	seedScenario(t, ls.client)
	gate.armed.Store(true)

	updates := make(chan dashboard.Summary, 4)
	w := NewWatcher(ls.client, WatcherConfig{
		Now:      func() time.Time { return fixedNow },
		Options:  dashboard.DefaultOptions(),
		OnUpdate: func(s dashboard.Summary) { updates <- s },
	})
	ctx := context.Background()

	full := make(chan error, 1)
	go func() { full <- w.Refresh(ctx) }()
	for range allCollections {
		select {
		case <-gate.arrived:
		case <-time.After(5 * time.Second):
			t.Fatal("full refresh did not reach the server")
		}
	}

	// Overtakes the held hive fetch; supplies and harvests are still in flight.
	require.NoError(t, w.Refresh(ctx, models.HivesCollection))
	_, ok := w.Summary()
	assert.False(t, ok)
	gate.open()

	select {
	case err := <-full:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("full refresh did not finish")
	}

	summary, ok := w.Summary()
	require.True(t, ok)
	assert.Equal(t, 1, summary.ActiveHiveCount)
	assert.Len(t, summary.Alerts, 3)
	require.Len(t, updates, 1)
}

func TestWatcherFollowRefreshesOnChange(t *testing.T) {
	ls := startServer(t)
	seedScenario(t, ls.client)

	updates := make(chan dashboard.Summary, 16)
	w := NewWatcher(ls.client, WatcherConfig{
		Interval: time.Hour,
		Follow:   true,
		Now:      func() time.Time { return fixedNow },
		Options:  dashboard.DefaultOptions(),
		OnUpdate: func(s dashboard.Summary) { updates <- s },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case s := <-updates:
		assert.Len(t, s.Alerts, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial dashboard")
	}
	require.Eventually(t, func() bool { return ls.hub.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err := ls.client.CreateHive(context.Background(), apiary.HiveInput{Active: ptr(false)})
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case s := <-updates:
			seen = len(s.Alerts) == 4 && s.Alerts[0].Rule == dashboard.RuleInactiveHive
		case <-deadline:
			t.Fatal("change event did not trigger a refresh")
		}
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
