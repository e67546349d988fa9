package apiary

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"apiary-api-server/internal/auth"
	"apiary-api-server/internal/models"
)

var hiveCodePattern = regexp.MustCompile(`^COL-(\d+)$`)

func (s *Service) ListHives(ctx context.Context) ([]models.Hive, error) {
	return s.store.Hives().List(ctx)
}

// GetHive returns nil without error when the id does not exist.
func (s *Service) GetHive(ctx context.Context, id string) (*models.Hive, error) {
	return getByID(ctx, s.store.Hives(), models.KindHive, id)
}

// CreateHive stores a new hive. A missing or blank codigo gets the next COL-NNN label
// and surrounding whitespace is dropped from a given one;
// a missing estado defaults to active and a missing tipo to Langstroth.
func (s *Service) CreateHive(ctx context.Context, in HiveInput) (*models.Hive, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	h := &models.Hive{Active: true, HiveStyle: models.DefaultHiveStyle}
	if err := in.apply(h); err != nil {
		return nil, err
	}

	s.codeMu.Lock()
	defer s.codeMu.Unlock()

	h.Code = strings.TrimSpace(h.Code)
	if h.Code == "" {
		code, err := s.nextHiveCode(ctx)
		if err != nil {
			return nil, err
		}
		h.Code = code
	}
	if err := validateHive(h); err != nil {
		return nil, err
	}
	h.UserID = auth.UserID(ctx)
	h.CreatedAt = s.timestamp()

	if err := s.store.Hives().Insert(ctx, h); err != nil {
		return nil, err
	}
	s.mutated(ctx, models.ActionAdd, models.KindHive, h.ID.Hex(), nil, nil)
	return h, nil
}

func (s *Service) nextHiveCode(ctx context.Context) (string, error) {
	hives, err := s.store.Hives().List(ctx)
	if err != nil {
		return "", err
	}
	highest := 0
	for i := range hives {
		m := hiveCodePattern.FindStringSubmatch(hives[i].Code)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("COL-%03d", highest+1), nil
}

func (s *Service) UpdateHive(ctx context.Context, id string, in HiveInput, unset []string) (*models.Hive, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	oid, h, err := mustGet(ctx, s.store.Hives(), models.KindHive, id)
	if err != nil {
		return nil, err
	}
	if err := applyUnset(models.KindHive, h, unset, in.provided(), hiveClearable); err != nil {
		return nil, err
	}
	if err := in.apply(h); err != nil {
		return nil, err
	}
	if err := validateHive(h); err != nil {
		return nil, err
	}
	h.UpdatedAt = s.timestamp()

	if err := s.store.Hives().Replace(ctx, oid, h); err != nil {
		return nil, err
	}
	s.mutated(ctx, models.ActionUpdate, models.KindHive, oid.Hex(), nil, nil)
	return h, nil
}

// DeleteHive removes the hive. Harvests referencing it are kept and from then on
// point at an unknown hive. A stored photo is removed best effort.
func (s *Service) DeleteHive(ctx context.Context, id string) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}
	oid, err := parseID(models.KindHive, id)
	if err != nil {
		return err
	}
	existing, err := s.store.Hives().Get(ctx, oid)
	if err != nil {
		s.log.Warn().Err(err).Str("id", oid.Hex()).Msg("loading hive before delete, its photo will not be removed")
	}
	if err := s.store.Hives().Delete(ctx, oid); err != nil {
		return err
	}
	if existing != nil && existing.PhotoURL != "" {
		s.dropPhoto(ctx, existing.PhotoURL)
	}
	s.mutated(ctx, models.ActionDelete, models.KindHive, oid.Hex(), nil, nil)
	return nil
}
