package graph

import (
	"fmt"
	"time"

	"apiary-api-server/internal/apiary"
	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/models"

	"github.com/go-viper/mapstructure/v2"
	"github.com/graphql-go/graphql"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func (r *resolver) insumos(p graphql.ResolveParams) (interface{}, error) {
	items, err := r.svc.ListSupplies(p.Context)
	if err != nil {
		return nil, fail(err)
	}
	out := make([]map[string]interface{}, len(items))
	for i := range items {
		out[i] = supplyView(&items[i])
	}
	return out, nil
}

func (r *resolver) insumo(p graphql.ResolveParams) (interface{}, error) {
	item, err := r.svc.GetSupply(p.Context, stringArg(p, "id"))
	if err != nil {
		return nil, fail(err)
	}
	if item == nil {
		return nil, nil
	}
	return supplyView(item), nil
}

func (r *resolver) createInsumo(p graphql.ResolveParams) (interface{}, error) {
	var in apiary.SupplyInput
	if err := decodeInput(p, models.KindSupply, &in); err != nil {
		return nil, err
	}
	item, err := r.svc.CreateSupply(p.Context, in)
	if err != nil {
		return nil, fail(err)
	}
	return supplyView(item), nil
}

func (r *resolver) updateInsumo(p graphql.ResolveParams) (interface{}, error) {
	var in apiary.SupplyInput
	if err := decodeInput(p, models.KindSupply, &in); err != nil {
		return nil, err
	}
	item, err := r.svc.UpdateSupply(p.Context, stringArg(p, "id"), in, unsetArg(p))
	if err != nil {
		return nil, fail(err)
	}
	return supplyView(item), nil
}

func (r *resolver) deleteInsumo(p graphql.ResolveParams) (interface{}, error) {
	if err := r.svc.DeleteSupply(p.Context, stringArg(p, "id")); err != nil {
		return nil, fail(err)
	}
	return true, nil
}

func (r *resolver) colmenas(p graphql.ResolveParams) (interface{}, error) {
	hives, err := r.svc.ListHives(p.Context)
	if err != nil {
		return nil, fail(err)
	}
	out := make([]map[string]interface{}, len(hives))
	for i := range hives {
		out[i] = hiveView(&hives[i])
	}
	return out, nil
}

func (r *resolver) colmena(p graphql.ResolveParams) (interface{}, error) {
	h, err := r.svc.GetHive(p.Context, stringArg(p, "id"))
	if err != nil {
		return nil, fail(err)
	}
	if h == nil {
		return nil, nil
	}
	return hiveView(h), nil
}

func (r *resolver) createColmena(p graphql.ResolveParams) (interface{}, error) {
	var in apiary.HiveInput
	if err := decodeInput(p, models.KindHive, &in); err != nil {
		return nil, err
	}
	h, err := r.svc.CreateHive(p.Context, in)
	if err != nil {
		return nil, fail(err)
	}
	return hiveView(h), nil
}

func (r *resolver) updateColmena(p graphql.ResolveParams) (interface{}, error) {
	var in apiary.HiveInput
	if err := decodeInput(p, models.KindHive, &in); err != nil {
		return nil, err
	}
	h, err := r.svc.UpdateHive(p.Context, stringArg(p, "id"), in, unsetArg(p))
	if err != nil {
		return nil, fail(err)
	}
	return hiveView(h), nil
}

func (r *resolver) deleteColmena(p graphql.ResolveParams) (interface{}, error) {
	if err := r.svc.DeleteHive(p.Context, stringArg(p, "id")); err != nil {
		return nil, fail(err)
	}
	return true, nil
}

func (r *resolver) cosechas(p graphql.ResolveParams) (interface{}, error) {
	harvests, err := r.svc.ListHarvests(p.Context)
	if err != nil {
		return nil, fail(err)
	}
	return harvestViews(harvests), nil
}

func (r *resolver) cosecha(p graphql.ResolveParams) (interface{}, error) {
	h, err := r.svc.GetHarvest(p.Context, stringArg(p, "id"))
	if err != nil {
		return nil, fail(err)
	}
	if h == nil {
		return nil, nil
	}
	return harvestView(h), nil
}

func (r *resolver) harvestsByHive(p graphql.ResolveParams) (interface{}, error) {
	harvests, err := r.svc.HarvestsByHive(p.Context, stringArg(p, "colmenaId"))
	if err != nil {
		return nil, fail(err)
	}
	return harvestViews(harvests), nil
}

// cosechaColmena resolves Cosecha.colmena; a dangling reference yields null.
func (r *resolver) cosechaColmena(p graphql.ResolveParams) (interface{}, error) {
	src, _ := p.Source.(map[string]interface{})
	ref, _ := src["colmenaId"].(string)
	oid, err := models.DecodeHiveRef(ref)
	if err != nil || oid == nil {
		return nil, nil
	}
	h, err := r.svc.GetHive(p.Context, oid.Hex())
	if err != nil {
		return nil, fail(err)
	}
	if h == nil {
		return nil, nil
	}
	return hiveView(h), nil
}

func (r *resolver) createCosecha(p graphql.ResolveParams) (interface{}, error) {
	var in apiary.HarvestInput
	if err := decodeInput(p, models.KindHarvest, &in); err != nil {
		return nil, err
	}
	h, err := r.svc.CreateHarvest(p.Context, in)
	if err != nil {
		return nil, fail(err)
	}
	return harvestView(h), nil
}

func (r *resolver) updateCosecha(p graphql.ResolveParams) (interface{}, error) {
	var in apiary.HarvestInput
	if err := decodeInput(p, models.KindHarvest, &in); err != nil {
		return nil, err
	}
	h, err := r.svc.UpdateHarvest(p.Context, stringArg(p, "id"), in, unsetArg(p))
	if err != nil {
		return nil, fail(err)
	}
	return harvestView(h), nil
}

func (r *resolver) deleteCosecha(p graphql.ResolveParams) (interface{}, error) {
	if err := r.svc.DeleteHarvest(p.Context, stringArg(p, "id")); err != nil {
		return nil, fail(err)
	}
	return true, nil
}

func (r *resolver) activityLog(p graphql.ResolveParams) (interface{}, error) {
	limit, _ := p.Args["limit"].(int)
	entries, err := r.svc.ActivityLog(p.Context, limit)
	if err != nil {
		return nil, fail(err)
	}
	out := make([]map[string]interface{}, len(entries))
	for i := range entries {
		e := &entries[i]
		out[i] = map[string]interface{}{
			"id":              e.ID.Hex(),
			"action":          e.Action,
			"targetType":      e.TargetType,
			"targetId":        e.TargetID,
			"cantidadAntes":   floatOrNil(e.QuantityBefore),
			"cantidadDespues": floatOrNil(e.QuantityAfter),
			"user":            e.User,
			"timestamp":       e.Timestamp.UTC().Format(timestampLayout),
		}
	}
	return out, nil
}

func (r *resolver) dashboard(p graphql.ResolveParams) (interface{}, error) {
	limit := r.alertLimit
	if l, ok := p.Args["limit"].(int); ok {
		limit = l
	}
	summary, err := r.svc.Dashboard(p.Context)
	if err != nil {
		return nil, fail(err)
	}
	top, remaining := summary.Top(limit)
	alerts := make([]map[string]interface{}, len(top))
	for i, a := range top {
		alerts[i] = alertView(a)
	}
	return map[string]interface{}{
		"activeHiveCount": summary.ActiveHiveCount,
		"monthlyHoneyKg":  summary.MonthlyHoneyKg,
		"alerts":          alerts,
		"totalAlerts":     len(summary.Alerts),
		"remainingAlerts": remaining,
		"computedAt":      summary.ComputedAt.UTC().Format(timestampLayout),
	}, nil
}

// decodeInput copies the "input" argument onto out's pointer fields. Fields the
// caller did not send stay nil.
func decodeInput(p graphql.ResolveParams, kind string, out interface{}) error {
	raw, _ := p.Args["input"].(map[string]interface{})
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return apperr.Internal(kind, err)
	}
	if err := dec.Decode(raw); err != nil {
		return apperr.Invalid(kind, "input", fmt.Sprintf("invalid %s input: %v", kind, err))
	}
	return nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func unsetArg(p graphql.ResolveParams) []string {
	raw, _ := p.Args["unset"].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func supplyView(s *models.SupplyItem) map[string]interface{} {
	return map[string]interface{}{
		"id":            s.ID.Hex(),
		"nombre":        s.Name,
		"descripcion":   stringOrNil(s.Description),
		"cantidad":      s.Quantity,
		"unidad":        stringOrNil(s.Unit),
		"tipo":          stringOrNil(s.Category),
		"userId":        stringOrNil(s.UserID),
		"creadoEn":      timeOrNil(s.CreatedAt),
		"actualizadoEn": timeOrNil(s.UpdatedAt),
	}
}

func hiveView(h *models.Hive) map[string]interface{} {
	return map[string]interface{}{
		"id":               h.ID.Hex(),
		"apiarioID":        stringOrNil(h.ApiaryLabel),
		"cantidadAlzas":    h.BoxCount,
		"codigo":           h.Code,
		"edadReinaMeses":   h.QueenAgeMonths,
		"estado":           h.Active,
		"fechaInstalacion": stringOrNil(models.FormatDate(h.InstalledOn)),
		"notas":            stringOrNil(h.Notes),
		"origenReina":      stringOrNil(h.QueenOrigin),
		"tipo":             stringOrNil(h.HiveStyle),
		"fotoUrl":          stringOrNil(h.PhotoURL),
		"userId":           stringOrNil(h.UserID),
		"creadoEn":         timeOrNil(h.CreatedAt),
		"actualizadoEn":    timeOrNil(h.UpdatedAt),
	}
}

func harvestView(h *models.Harvest) map[string]interface{} {
	return map[string]interface{}{
		"id":               h.ID.Hex(),
		"colmenaId":        stringOrNil(models.EncodeHiveRef(h.HiveRef)),
		"fecha":            models.FormatDate(h.DateHarvested),
		"cantidadKg":       h.HoneyKg,
		"humedad":          h.HumidityPct,
		"panalesExtraidos": h.CombsExtracted,
		"metodo":           stringOrNil(h.Method),
		"floracion":        stringOrNil(h.FloralSource),
		"operador":         stringOrNil(h.Operator),
		"notas":            stringOrNil(h.Notes),
		"tipoMiel":         stringOrNil(h.HoneyType),
		"userId":           stringOrNil(h.UserID),
		"creadoEn":         timeOrNil(h.CreatedAt),
		"actualizadoEn":    timeOrNil(h.UpdatedAt),
	}
}

func harvestViews(harvests []models.Harvest) []map[string]interface{} {
	out := make([]map[string]interface{}, len(harvests))
	for i := range harvests {
		out[i] = harvestView(&harvests[i])
	}
	return out
}

func alertView(a dashboard.Alert) map[string]interface{} {
	return map[string]interface{}{
		"id":          a.ID,
		"rule":        a.Rule,
		"title":       a.Title,
		"description": a.Description,
		"severity":    string(a.Severity),
		"targetPage":  a.TargetPage,
		"targetId":    a.TargetID,
		"hiveId":      stringOrNil(a.HiveID),
	}
}

func stringOrNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func floatOrNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func timeOrNil(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timestampLayout)
}
