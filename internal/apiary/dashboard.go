package apiary

import (
	"context"

	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/models"

	"golang.org/x/sync/errgroup"
)

// Snapshot loads hives, supplies and harvests concurrently.
func (s *Service) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	var snap dashboard.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Hives, err = s.store.Hives().List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Supplies, err = s.store.Supplies().List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Harvests, err = s.store.Harvests().List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboard.Snapshot{}, err
	}
	return snap, nil
}

// Dashboard computes headline metrics and alerts from a fresh snapshot.
func (s *Service) Dashboard(ctx context.Context) (dashboard.Summary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return dashboard.Summary{}, err
	}
	return dashboard.Compute(snap, s.now(), s.dashOpts), nil
}

// ActivityLog returns the most recent entries, newest first. limit <= 0 means the default.
func (s *Service) ActivityLog(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	return s.store.Activity().Recent(ctx, limit)
}
