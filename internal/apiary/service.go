// Package apiary is the API layer behind the GraphQL schema and the photo
// endpoints: it validates input, applies partial updates, translates hive
// references and records every mutation in the activity log.
package apiary

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/auth"
	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/imaging"
	"apiary-api-server/internal/models"
	"apiary-api-server/internal/store"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 500
	anonymousUser        = "anonymous"
)

// Service implements every query and mutation the API exposes.
type Service struct {
	store       store.Store
	notifier    store.Notifier
	photos      PhotoStore
	photoOpts   imaging.Options
	dashOpts    dashboard.Options
	requireAuth bool
	now         func() time.Time
	log         zerolog.Logger

	// codeMu serialises hive code generation with the insert that uses it.
	codeMu sync.Mutex
}

type Option func(*Service)

func WithNotifier(n store.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithPhotoStore enables the photo endpoints.
func WithPhotoStore(p PhotoStore, opts imaging.Options) Option {
	return func(s *Service) {
		s.photos = p
		s.photoOpts = opts
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithDashboardOptions(o dashboard.Options) Option {
	return func(s *Service) { s.dashOpts = o }
}

// RequireAuth makes every mutation fail with Unauthorized unless the context carries an identity.
func RequireAuth(enforce bool) Option {
	return func(s *Service) { s.requireAuth = enforce }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		notifier: store.NopNotifier,
		dashOpts: dashboard.DefaultOptions(),
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return apperr.Unavailable("store", err)
	}
	return nil
}

// timestamp is millisecond precision so records read back from MongoDB compare equal.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) authorize(ctx context.Context) error {
	if s.requireAuth && auth.UserID(ctx) == "" {
		return apperr.Unauthorized("a valid bearer token is required for mutations")
	}
	return nil
}

// mutated appends the activity entry and publishes the change event. Neither
// failure is returned: the mutation itself already succeeded.
func (s *Service) mutated(ctx context.Context, action, kind, id string, before, after *float64) {
	user := auth.UserID(ctx)
	if user == "" {
		user = anonymousUser
	}
	at := s.timestamp()
	entry := &models.ActivityEntry{
		Action:         action,
		TargetType:     kind,
		TargetID:       id,
		QuantityBefore: before,
		QuantityAfter:  after,
		User:           user,
		Timestamp:      at,
	}
	if err := s.store.Activity().Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Str("id", id).Str("action", action).Msg("activity log write failed")
	}

	event := store.EventUpdated
	switch action {
	case models.ActionAdd:
		event = store.EventCreated
	case models.ActionDelete:
		event = store.EventDeleted
	}
	s.notifier.Publish(store.Event{Type: event, Kind: kind, ID: id, At: at})
	s.log.Info().Str("kind", kind).Str("id", id).Str("action", action).Str("user", user).Msg("record changed")
}

func parseID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid(kind, "id", fmt.Sprintf("invalid %s id %q", kind, id))
	}
	return oid, nil
}

func getByID[T any](ctx context.Context, c store.Collection[T], kind, id string) (*T, error) {
	oid, err := parseID(kind, id)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, oid)
}

// mustGet is getByID with a missing record reported as NotFound.
func mustGet[T any](ctx context.Context, c store.Collection[T], kind, id string) (primitive.ObjectID, *T, error) {
	oid, err := parseID(kind, id)
	if err != nil {
		return oid, nil, err
	}
	doc, err := c.Get(ctx, oid)
	if err != nil {
		return oid, nil, err
	}
	if doc == nil {
		return oid, nil, apperr.NotFound(kind, oid.Hex())
	}
	return oid, doc, nil
}

func deleteByID[T any](ctx context.Context, c store.Collection[T], kind, id string) (primitive.ObjectID, error) {
	oid, err := parseID(kind, id)
	if err != nil {
		return oid, err
	}
	return oid, c.Delete(ctx, oid)
}
