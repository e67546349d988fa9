package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/models"
	"apiary-api-server/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the dashboard refresh period.
const DefaultInterval = 10 * time.Second

var allCollections = []string{models.HivesCollection, models.SuppliesCollection, models.HarvestsCollection}

// WatcherConfig configures a Watcher. Zero values fall back to sensible defaults.
type WatcherConfig struct {
	Interval time.Duration
	Options  dashboard.Options
	// Follow also listens on the server's websocket and refreshes the changed
	// collection as soon as an event arrives.
	Follow   bool
	OnUpdate func(dashboard.Summary)
	OnError  func(error)
	Now      func() time.Time
	Logger   *zerolog.Logger
}

// Watcher keeps a cached snapshot fresh and recomputes the dashboard after every
// successful refresh. Each collection refreshes independently; a refresh that is
// overtaken by a newer one for the same collection is cancelled and discarded.
type Watcher struct {
	client *Client
	cfg    WatcherConfig
	log    zerolog.Logger
	sup    Supersede

	mu     sync.Mutex
	snap   dashboard.Snapshot
	loaded map[string]bool

	wg sync.WaitGroup
}

func NewWatcher(c *Client, cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.OnUpdate == nil {
		cfg.OnUpdate = func(dashboard.Summary) {}
	}
	if cfg.OnError == nil {
		cfg.OnError = func(error) {}
	}
	log := c.log
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Watcher{client: c, cfg: cfg, log: log, loaded: make(map[string]bool)}
}

// Refresh re-fetches the named collections (all of them when none are given) and, once
// every collection has been loaded at least once, publishes a new summary.
// It returns ErrSuperseded when a newer refresh overtook one of its collections; the
// other collections are still fetched and stored.
func (w *Watcher) Refresh(ctx context.Context, collections ...string) error {
	if len(collections) == 0 {
		collections = allCollections
	}
	for _, name := range collections {
		if collectionFor(kindOf(name)) == "" {
			return fmt.Errorf("unknown collection %q", name)
		}
	}
	// Each collection supersedes only itself; a newer refresh of one key must not
	// abort the fetches of the others.
	var (
		g          errgroup.Group
		superseded atomic.Bool
	)
	run := func(fetch func() error) {
		g.Go(func() error {
			err := fetch()
			if errors.Is(err, ErrSuperseded) {
				superseded.Store(true)
				return nil
			}
			return err
		})
	}
	for _, name := range collections {
		switch name {
		case models.HivesCollection:
			run(func() error {
				return Run(&w.sup, ctx, name, w.client.hiveModels, func(v []models.Hive) { w.store(name, func(s *dashboard.Snapshot) { s.Hives = v }) })
			})
		case models.SuppliesCollection:
			run(func() error {
				return Run(&w.sup, ctx, name, w.client.supplyModels, func(v []models.SupplyItem) { w.store(name, func(s *dashboard.Snapshot) { s.Supplies = v }) })
			})
		case models.HarvestsCollection:
			run(func() error {
				return Run(&w.sup, ctx, name, w.client.harvestModels, func(v []models.Harvest) { w.store(name, func(s *dashboard.Snapshot) { s.Harvests = v }) })
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	summary, ok := w.Summary()
	if ok {
		w.cfg.OnUpdate(summary)
	}
	if superseded.Load() {
		return ErrSuperseded
	}
	return nil
}

func (w *Watcher) store(name string, set func(*dashboard.Snapshot)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	set(&w.snap)
	w.loaded[name] = true
}

// Summary computes the dashboard from the cached snapshot. ok is false until every
// collection has been fetched once.
func (w *Watcher) Summary() (dashboard.Summary, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, name := range allCollections {
		if !w.loaded[name] {
			return dashboard.Summary{}, false
		}
	}
	return dashboard.Compute(w.snap, w.cfg.Now(), w.cfg.Options), true
}

// Run refreshes immediately, then on every tick and, in follow mode, on every change
// event, until ctx is done. Ticks do not wait for the previous refresh: a slow one is
// superseded by the next.
func (w *Watcher) Run(ctx context.Context) error {
	events := make(chan string, 8)
	if w.cfg.Follow {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.follow(ctx, events)
		}()
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.spawn(ctx)
	for {
		select {
		case <-ctx.Done():
			w.sup.Cancel()
			w.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			w.spawn(ctx)
		case name := <-events:
			w.spawn(ctx, name)
		}
	}
}

func (w *Watcher) spawn(ctx context.Context, collections ...string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		err := w.Refresh(ctx, collections...)
		switch {
		case err == nil, errors.Is(err, ErrSuperseded):
		case ctx.Err() != nil:
		default:
			w.log.Warn().Err(err).Strs("collections", collections).Msg("dashboard refresh failed")
			w.cfg.OnError(err)
		}
	}()
}

// follow forwards change events as collection names, reconnecting after an interval
// when the socket drops.
func (w *Watcher) follow(ctx context.Context, events chan<- string) {
	for {
		err := w.listen(ctx, events)
		if ctx.Err() != nil {
			return
		}
		w.log.Warn().Err(err).Msg("change feed disconnected")
		w.cfg.OnError(fmt.Errorf("change feed: %w", err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.Interval):
		}
	}
}

func (w *Watcher) listen(ctx context.Context, events chan<- string) error {
	token, err := w.client.tokens.Token(ctx)
	if err != nil {
		return err
	}
	wsURL, err := SocketURL(w.client.endpoint, token)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	w.log.Debug().Str("url", wsURL).Msg("change feed connected")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev store.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			w.log.Debug().Err(err).Msg("ignoring malformed change event")
			continue
		}
		name := collectionFor(ev.Kind)
		if name == "" {
			continue
		}
		select {
		case events <- name:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func collectionFor(kind string) string {
	switch kind {
	case models.KindHive:
		return models.HivesCollection
	case models.KindSupply:
		return models.SuppliesCollection
	case models.KindHarvest:
		return models.HarvestsCollection
	default:
		return ""
	}
}

func kindOf(collection string) string {
	switch collection {
	case models.HivesCollection:
		return models.KindHive
	case models.SuppliesCollection:
		return models.KindSupply
	case models.HarvestsCollection:
		return models.KindHarvest
	default:
		return ""
	}
}

// SocketURL derives the change-feed URL from the GraphQL endpoint:
// http://host/graphql becomes ws://host/api/v1/ws.
func SocketURL(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("endpoint %q must be http or https", endpoint)
	}
	prefix := strings.TrimSuffix(u.Path, "/")
	prefix = strings.TrimSuffix(prefix, "/graphql")
	prefix = strings.TrimSuffix(prefix, "/api/v1")
	u.Path = prefix + "/api/v1/ws"
	u.RawQuery = ""
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String(), nil
}
