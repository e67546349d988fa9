package apiary

import (
	"bytes"
	"context"
	"errors"
	"io"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/imaging"
	"apiary-api-server/internal/models"
	"apiary-api-server/internal/s3"
)

// PhotoStore is the object store holding hive photos.
type PhotoStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

var errNoPhotoStore = errors.New("photo storage is not configured")

// PhotosEnabled reports whether an object store was configured.
func (s *Service) PhotosEnabled() bool { return s.photos != nil }

// SetHivePhoto normalises the image, deletes the previous object (best effort),
// uploads the new one and points the hive's fotoUrl at it.
func (s *Service) SetHivePhoto(ctx context.Context, id string, r io.Reader) (*models.Hive, error) {
	if s.photos == nil {
		return nil, apperr.Unavailable("foto", errNoPhotoStore)
	}
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	oid, h, err := mustGet(ctx, s.store.Hives(), models.KindHive, id)
	if err != nil {
		return nil, err
	}

	photo, err := imaging.Normalize(r, s.photoOpts)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) || errors.Is(err, imaging.ErrUnsupportedFormat) {
			return nil, apperr.Invalid(models.KindHive, "foto", err.Error())
		}
		return nil, apperr.Internal(models.KindHive, err)
	}

	if h.PhotoURL != "" {
		s.dropPhoto(ctx, h.PhotoURL)
	}

	now := s.timestamp()
	key := s3.PhotoKey(models.HivesCollection, oid.Hex(), now, "jpg")
	url, err := s.photos.Upload(ctx, key, bytes.NewReader(photo.Data), photo.ContentType)
	if err != nil {
		return nil, apperr.Unavailable("foto", err)
	}

	h.PhotoURL = url
	h.UpdatedAt = now
	if err := s.store.Hives().Replace(ctx, oid, h); err != nil {
		return nil, err
	}
	s.log.Debug().Str("key", key).Int("width", photo.Width).Int("height", photo.Height).Msg("hive photo stored")
	s.mutated(ctx, models.ActionUpdate, models.KindHive, oid.Hex(), nil, nil)
	return h, nil
}

// DeleteHivePhoto removes the stored object and clears fotoUrl. A hive without a
// photo is returned unchanged.
func (s *Service) DeleteHivePhoto(ctx context.Context, id string) (*models.Hive, error) {
	if s.photos == nil {
		return nil, apperr.Unavailable("foto", errNoPhotoStore)
	}
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	oid, h, err := mustGet(ctx, s.store.Hives(), models.KindHive, id)
	if err != nil {
		return nil, err
	}
	if h.PhotoURL == "" {
		return h, nil
	}
	if key := s.photos.KeyFromURL(h.PhotoURL); key != "" {
		if err := s.photos.Delete(ctx, key); err != nil {
			return nil, apperr.Unavailable("foto", err)
		}
	}
	h.PhotoURL = ""
	h.UpdatedAt = s.timestamp()
	if err := s.store.Hives().Replace(ctx, oid, h); err != nil {
		return nil, err
	}
	s.mutated(ctx, models.ActionUpdate, models.KindHive, oid.Hex(), nil, nil)
	return h, nil
}

// dropPhoto deletes the object behind url, logging rather than returning failures.
func (s *Service) dropPhoto(ctx context.Context, url string) {
	if s.photos == nil {
		return
	}
	key := s.photos.KeyFromURL(url)
	if key == "" {
		return
	}
	if err := s.photos.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("deleting old hive photo failed")
	}
}
