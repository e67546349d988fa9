package apiary

import (
	"context"

	"apiary-api-server/internal/auth"
	"apiary-api-server/internal/models"
)

func (s *Service) ListSupplies(ctx context.Context) ([]models.SupplyItem, error) {
	return s.store.Supplies().List(ctx)
}

// GetSupply returns nil without error when the id does not exist.
func (s *Service) GetSupply(ctx context.Context, id string) (*models.SupplyItem, error) {
	return getByID(ctx, s.store.Supplies(), models.KindSupply, id)
}

func (s *Service) CreateSupply(ctx context.Context, in SupplyInput) (*models.SupplyItem, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	item := &models.SupplyItem{}
	in.apply(item)
	if err := validateSupply(item); err != nil {
		return nil, err
	}
	item.UserID = auth.UserID(ctx)
	item.CreatedAt = s.timestamp()

	if err := s.store.Supplies().Insert(ctx, item); err != nil {
		return nil, err
	}
	after := item.Quantity
	s.mutated(ctx, models.ActionAdd, models.KindSupply, item.ID.Hex(), nil, &after)
	return item, nil
}

// UpdateSupply applies the provided fields and clears the ones named in unset.
func (s *Service) UpdateSupply(ctx context.Context, id string, in SupplyInput, unset []string) (*models.SupplyItem, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	oid, item, err := mustGet(ctx, s.store.Supplies(), models.KindSupply, id)
	if err != nil {
		return nil, err
	}
	before := item.Quantity

	if err := applyUnset(models.KindSupply, item, unset, in.provided(), supplyClearable); err != nil {
		return nil, err
	}
	in.apply(item)
	if err := validateSupply(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.timestamp()

	if err := s.store.Supplies().Replace(ctx, oid, item); err != nil {
		return nil, err
	}
	after := item.Quantity
	s.mutated(ctx, models.ActionUpdate, models.KindSupply, oid.Hex(), &before, &after)
	return item, nil
}

func (s *Service) DeleteSupply(ctx context.Context, id string) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}
	oid, err := parseID(models.KindSupply, id)
	if err != nil {
		return err
	}
	var before *float64
	if item, err := s.store.Supplies().Get(ctx, oid); err == nil && item != nil {
		before = &item.Quantity
	}
	if err := s.store.Supplies().Delete(ctx, oid); err != nil {
		return err
	}
	s.mutated(ctx, models.ActionDelete, models.KindSupply, oid.Hex(), before, nil)
	return nil
}

