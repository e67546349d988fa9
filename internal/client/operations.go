package client

import (
	"context"
	"fmt"

	"apiary-api-server/internal/apiary"
	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	supplyFields  = `id nombre descripcion cantidad unidad tipo userId creadoEn actualizadoEn`
	hiveFields    = `id apiarioID cantidadAlzas codigo edadReinaMeses estado fechaInstalacion notas origenReina tipo fotoUrl userId creadoEn actualizadoEn`
	harvestFields = `id colmenaId fecha cantidadKg humedad panalesExtraidos metodo floracion operador notas tipoMiel userId creadoEn actualizadoEn`
)

func (c *Client) ListSupplies(ctx context.Context) ([]Supply, error) {
	var out struct {
		Insumos []Supply `json:"insumos"`
	}
	err := c.Execute(ctx, `query { insumos { `+supplyFields+` } }`, nil, &out)
	return out.Insumos, err
}

// GetSupply returns nil when the id does not exist.
func (c *Client) GetSupply(ctx context.Context, id string) (*Supply, error) {
	var out struct {
		Insumo *Supply `json:"insumo"`
	}
	err := c.Execute(ctx, `query($id: ID!) { insumo(id: $id) { `+supplyFields+` } }`, map[string]interface{}{"id": id}, &out)
	return out.Insumo, err
}

func (c *Client) CreateSupply(ctx context.Context, in apiary.SupplyInput) (*Supply, error) {
	var out struct {
		Created *Supply `json:"createInsumo"`
	}
	err := c.Execute(ctx, `mutation($input: InsumoInput!) { createInsumo(input: $input) { `+supplyFields+` } }`,
		map[string]interface{}{"input": in}, &out)
	return out.Created, err
}

func (c *Client) UpdateSupply(ctx context.Context, id string, in apiary.SupplyInput, unset ...string) (*Supply, error) {
	var out struct {
		Updated *Supply `json:"updateInsumo"`
	}
	err := c.Execute(ctx, `mutation($id: ID!, $input: InsumoInput, $unset: [String!]) { updateInsumo(id: $id, input: $input, unset: $unset) { `+supplyFields+` } }`,
		updateVars(id, in, unset), &out)
	return out.Updated, err
}

func (c *Client) DeleteSupply(ctx context.Context, id string) error {
	return c.delete(ctx, "deleteInsumo", id)
}

func (c *Client) ListHives(ctx context.Context) ([]Hive, error) {
	var out struct {
		Colmenas []Hive `json:"colmenas"`
	}
	err := c.Execute(ctx, `query { colmenas { `+hiveFields+` } }`, nil, &out)
	return out.Colmenas, err
}

func (c *Client) GetHive(ctx context.Context, id string) (*Hive, error) {
	var out struct {
		Colmena *Hive `json:"colmena"`
	}
	err := c.Execute(ctx, `query($id: ID!) { colmena(id: $id) { `+hiveFields+` } }`, map[string]interface{}{"id": id}, &out)
	return out.Colmena, err
}

func (c *Client) CreateHive(ctx context.Context, in apiary.HiveInput) (*Hive, error) {
	var out struct {
		Created *Hive `json:"createColmena"`
	}
	err := c.Execute(ctx, `mutation($input: ColmenaInput!) { createColmena(input: $input) { `+hiveFields+` } }`,
		map[string]interface{}{"input": in}, &out)
	return out.Created, err
}

func (c *Client) UpdateHive(ctx context.Context, id string, in apiary.HiveInput, unset ...string) (*Hive, error) {
	var out struct {
		Updated *Hive `json:"updateColmena"`
	}
	err := c.Execute(ctx, `mutation($id: ID!, $input: ColmenaInput, $unset: [String!]) { updateColmena(id: $id, input: $input, unset: $unset) { `+hiveFields+` } }`,
		updateVars(id, in, unset), &out)
	return out.Updated, err
}

func (c *Client) DeleteHive(ctx context.Context, id string) error {
	return c.delete(ctx, "deleteColmena", id)
}

func (c *Client) ListHarvests(ctx context.Context) ([]Harvest, error) {
	var out struct {
		Cosechas []Harvest `json:"cosechas"`
	}
	err := c.Execute(ctx, `query { cosechas { `+harvestFields+` } }`, nil, &out)
	return out.Cosechas, err
}

func (c *Client) GetHarvest(ctx context.Context, id string) (*Harvest, error) {
	var out struct {
		Cosecha *Harvest `json:"cosecha"`
	}
	err := c.Execute(ctx, `query($id: ID!) { cosecha(id: $id) { `+harvestFields+` } }`, map[string]interface{}{"id": id}, &out)
	return out.Cosecha, err
}

// HarvestsByHive accepts either "colmenas/<id>" or a bare id.
func (c *Client) HarvestsByHive(ctx context.Context, hiveRef string) ([]Harvest, error) {
	var out struct {
		Cosechas []Harvest `json:"harvestsByHive"`
	}
	err := c.Execute(ctx, `query($ref: String!) { harvestsByHive(colmenaId: $ref) { `+harvestFields+` } }`,
		map[string]interface{}{"ref": hiveRef}, &out)
	return out.Cosechas, err
}

func (c *Client) CreateHarvest(ctx context.Context, in apiary.HarvestInput) (*Harvest, error) {
	var out struct {
		Created *Harvest `json:"createCosecha"`
	}
	err := c.Execute(ctx, `mutation($input: CosechaInput!) { createCosecha(input: $input) { `+harvestFields+` } }`,
		map[string]interface{}{"input": in}, &out)
	return out.Created, err
}

func (c *Client) UpdateHarvest(ctx context.Context, id string, in apiary.HarvestInput, unset ...string) (*Harvest, error) {
	var out struct {
		Updated *Harvest `json:"updateCosecha"`
	}
	err := c.Execute(ctx, `mutation($id: ID!, $input: CosechaInput, $unset: [String!]) { updateCosecha(id: $id, input: $input, unset: $unset) { `+harvestFields+` } }`,
		updateVars(id, in, unset), &out)
	return out.Updated, err
}

func (c *Client) DeleteHarvest(ctx context.Context, id string) error {
	return c.delete(ctx, "deleteCosecha", id)
}

func (c *Client) ActivityLog(ctx context.Context, limit int) ([]Activity, error) {
	var out struct {
		Entries []Activity `json:"activityLog"`
	}
	err := c.Execute(ctx, `query($limit: Int) { activityLog(limit: $limit) { id action targetType targetId cantidadAntes cantidadDespues user timestamp } }`,
		map[string]interface{}{"limit": limit}, &out)
	return out.Entries, err
}

// Dashboard asks the server for its summary. limit <= 0 uses the server default.
func (c *Client) Dashboard(ctx context.Context, limit int) (*Dashboard, error) {
	vars := map[string]interface{}{}
	if limit > 0 {
		vars["limit"] = limit
	}
	var out struct {
		Dashboard *Dashboard `json:"dashboard"`
	}
	err := c.Execute(ctx, `query($limit: Int) { dashboard(limit: $limit) { activeHiveCount monthlyHoneyKg totalAlerts remainingAlerts computedAt alerts { id rule title description severity targetPage targetId hiveId } } }`,
		vars, &out)
	return out.Dashboard, err
}

// Snapshot fetches all three collections concurrently and converts them to models.
func (c *Client) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	var snap dashboard.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Hives, err = c.hiveModels(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Supplies, err = c.supplyModels(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Harvests, err = c.harvestModels(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboard.Snapshot{}, err
	}
	return snap, nil
}

func (c *Client) hiveModels(ctx context.Context) ([]models.Hive, error) {
	hives, err := c.ListHives(ctx)
	if err != nil {
		return nil, err
	}
	return convert(hives, Hive.Model)
}

func (c *Client) supplyModels(ctx context.Context) ([]models.SupplyItem, error) {
	items, err := c.ListSupplies(ctx)
	if err != nil {
		return nil, err
	}
	return convert(items, Supply.Model)
}

func (c *Client) harvestModels(ctx context.Context) ([]models.Harvest, error) {
	harvests, err := c.ListHarvests(ctx)
	if err != nil {
		return nil, err
	}
	return convert(harvests, Harvest.Model)
}

func convert[W, M any](in []W, model func(W) (M, error)) ([]M, error) {
	out := make([]M, 0, len(in))
	for _, w := range in {
		m, err := model(w)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) delete(ctx context.Context, mutation, id string) error {
	var out map[string]bool
	query := fmt.Sprintf(`mutation($id: ID!) { %s(id: $id) }`, mutation)
	return c.Execute(ctx, query, map[string]interface{}{"id": id}, &out)
}

func updateVars(id string, in interface{}, unset []string) map[string]interface{} {
	vars := map[string]interface{}{"id": id, "input": in}
	if len(unset) > 0 {
		vars["unset"] = unset
	}
	return vars
}
