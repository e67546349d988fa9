package apiary

import (
	"context"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/auth"
	"apiary-api-server/internal/models"
)

func (s *Service) ListHarvests(ctx context.Context) ([]models.Harvest, error) {
	return s.store.Harvests().List(ctx)
}

// GetHarvest returns nil without error when the id does not exist.
func (s *Service) GetHarvest(ctx context.Context, id string) (*models.Harvest, error) {
	return getByID[models.Harvest](ctx, s.store.Harvests(), models.KindHarvest, id)
}

// HarvestsByHive accepts a "colmenas/<id>" path or a bare id.
func (s *Service) HarvestsByHive(ctx context.Context, hiveRef string) ([]models.Harvest, error) {
	ref, err := models.DecodeHiveRef(hiveRef)
	if err != nil {
		return nil, apperr.Invalid(models.KindHarvest, "colmenaId", err.Error())
	}
	if ref == nil {
		return nil, apperr.Invalid(models.KindHarvest, "colmenaId", "colmenaId is required")
	}
	return s.store.Harvests().ListByHive(ctx, *ref)
}

// CreateHarvest stores a new harvest. The hive reference is not checked against
// existing hives. Missing metodo and tipoMiel get their defaults.
func (s *Service) CreateHarvest(ctx context.Context, in HarvestInput) (*models.Harvest, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	h := &models.Harvest{Method: models.DefaultHarvestMethod, HoneyType: models.DefaultHoneyType}
	if err := in.apply(h); err != nil {
		return nil, err
	}
	if err := validateHarvest(h); err != nil {
		return nil, err
	}
	h.UserID = auth.UserID(ctx)
	h.CreatedAt = s.timestamp()

	if err := s.store.Harvests().Insert(ctx, h); err != nil {
		return nil, err
	}
	s.mutated(ctx, models.ActionAdd, models.KindHarvest, h.ID.Hex(), nil, nil)
	return h, nil
}

func (s *Service) UpdateHarvest(ctx context.Context, id string, in HarvestInput, unset []string) (*models.Harvest, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	oid, h, err := mustGet[models.Harvest](ctx, s.store.Harvests(), models.KindHarvest, id)
	if err != nil {
		return nil, err
	}
	if err := applyUnset(models.KindHarvest, h, unset, in.provided(), harvestClearable); err != nil {
		return nil, err
	}
	if err := in.apply(h); err != nil {
		return nil, err
	}
	if err := validateHarvest(h); err != nil {
		return nil, err
	}
	h.UpdatedAt = s.timestamp()

	if err := s.store.Harvests().Replace(ctx, oid, h); err != nil {
		return nil, err
	}
	s.mutated(ctx, models.ActionUpdate, models.KindHarvest, oid.Hex(), nil, nil)
	return h, nil
}

func (s *Service) DeleteHarvest(ctx context.Context, id string) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}
	oid, err := deleteByID[models.Harvest](ctx, s.store.Harvests(), models.KindHarvest, id)
	if err != nil {
		return err
	}
	s.mutated(ctx, models.ActionDelete, models.KindHarvest, oid.Hex(), nil, nil)
	return nil
}
