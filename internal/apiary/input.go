package apiary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/models"
)

// Inputs carry only the fields the caller sent; nil means "leave unchanged".
// The tags are the wire names.

type SupplyInput struct {
	Name        *string  `mapstructure:"nombre" json:"nombre,omitempty"`
	Description *string  `mapstructure:"descripcion" json:"descripcion,omitempty"`
	Quantity    *float64 `mapstructure:"cantidad" json:"cantidad,omitempty"`
	Unit        *string  `mapstructure:"unidad" json:"unidad,omitempty"`
	Category    *string  `mapstructure:"tipo" json:"tipo,omitempty"`
}

type HiveInput struct {
	ApiaryLabel    *string `mapstructure:"apiarioID" json:"apiarioID,omitempty"`
	BoxCount       *int    `mapstructure:"cantidadAlzas" json:"cantidadAlzas,omitempty"`
	Code           *string `mapstructure:"codigo" json:"codigo,omitempty"`
	QueenAgeMonths *int    `mapstructure:"edadReinaMeses" json:"edadReinaMeses,omitempty"`
	Active         *bool   `mapstructure:"estado" json:"estado,omitempty"`
	InstalledOn    *string `mapstructure:"fechaInstalacion" json:"fechaInstalacion,omitempty"`
	Notes          *string `mapstructure:"notas" json:"notas,omitempty"`
	QueenOrigin    *string `mapstructure:"origenReina" json:"origenReina,omitempty"`
	HiveStyle      *string `mapstructure:"tipo" json:"tipo,omitempty"`
}

type HarvestInput struct {
	HiveRef        *string  `mapstructure:"colmenaId" json:"colmenaId,omitempty"`
	DateHarvested  *string  `mapstructure:"fecha" json:"fecha,omitempty"`
	HoneyKg        *float64 `mapstructure:"cantidadKg" json:"cantidadKg,omitempty"`
	HumidityPct    *float64 `mapstructure:"humedad" json:"humedad,omitempty"`
	CombsExtracted *int     `mapstructure:"panalesExtraidos" json:"panalesExtraidos,omitempty"`
	Method         *string  `mapstructure:"metodo" json:"metodo,omitempty"`
	FloralSource   *string  `mapstructure:"floracion" json:"floracion,omitempty"`
	Operator       *string  `mapstructure:"operador" json:"operador,omitempty"`
	Notes          *string  `mapstructure:"notas" json:"notas,omitempty"`
	HoneyType      *string  `mapstructure:"tipoMiel" json:"tipoMiel,omitempty"`
}

var supplyClearable = map[string]func(*models.SupplyItem){
	"descripcion": func(s *models.SupplyItem) { s.Description = "" },
	"unidad":      func(s *models.SupplyItem) { s.Unit = "" },
	"tipo":        func(s *models.SupplyItem) { s.Category = "" },
}

var hiveClearable = map[string]func(*models.Hive){
	"apiarioID":        func(h *models.Hive) { h.ApiaryLabel = "" },
	"fechaInstalacion": func(h *models.Hive) { h.InstalledOn = time.Time{} },
	"notas":            func(h *models.Hive) { h.Notes = "" },
	"origenReina":      func(h *models.Hive) { h.QueenOrigin = "" },
}

var harvestClearable = map[string]func(*models.Harvest){
	"colmenaId": func(h *models.Harvest) { h.HiveRef = nil },
	"floracion": func(h *models.Harvest) { h.FloralSource = "" },
	"operador":  func(h *models.Harvest) { h.Operator = "" },
	"notas":     func(h *models.Harvest) { h.Notes = "" },
}

// applyUnset clears the named fields. Fields that are required, unknown, or also
// being set in the same call are rejected.
func applyUnset[T any](kind string, doc *T, unset []string, set map[string]bool, clearable map[string]func(*T)) error {
	for _, field := range unset {
		reset, ok := clearable[field]
		if !ok {
			return apperr.Invalid(kind, field, fmt.Sprintf("%s cannot be unset; clearable fields: %s", field, clearableNames(clearable)))
		}
		if set[field] {
			return apperr.Invalid(kind, field, fmt.Sprintf("%s is both set and unset", field))
		}
		reset(doc)
	}
	return nil
}

func clearableNames[T any](clearable map[string]func(*T)) string {
	names := make([]string, 0, len(clearable))
	for name := range clearable {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (in SupplyInput) provided() map[string]bool {
	return present(map[string]bool{
		"nombre":      in.Name != nil,
		"descripcion": in.Description != nil,
		"cantidad":    in.Quantity != nil,
		"unidad":      in.Unit != nil,
		"tipo":        in.Category != nil,
	})
}

func (in SupplyInput) apply(item *models.SupplyItem) {
	setString(&item.Name, in.Name)
	setString(&item.Description, in.Description)
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	setString(&item.Unit, in.Unit)
	setString(&item.Category, in.Category)
}

func (in HiveInput) provided() map[string]bool {
	return present(map[string]bool{
		"apiarioID":        in.ApiaryLabel != nil,
		"cantidadAlzas":    in.BoxCount != nil,
		"codigo":           in.Code != nil,
		"edadReinaMeses":   in.QueenAgeMonths != nil,
		"estado":           in.Active != nil,
		"fechaInstalacion": in.InstalledOn != nil,
		"notas":            in.Notes != nil,
		"origenReina":      in.QueenOrigin != nil,
		"tipo":             in.HiveStyle != nil,
	})
}

func (in HiveInput) apply(h *models.Hive) error {
	if in.InstalledOn != nil {
		d, err := models.ParseDate(*in.InstalledOn)
		if err != nil {
			return apperr.Invalid(models.KindHive, "fechaInstalacion", err.Error())
		}
		h.InstalledOn = d
	}
	setString(&h.ApiaryLabel, in.ApiaryLabel)
	setInt(&h.BoxCount, in.BoxCount)
	setString(&h.Code, in.Code)
	setInt(&h.QueenAgeMonths, in.QueenAgeMonths)
	if in.Active != nil {
		h.Active = *in.Active
	}
	setString(&h.Notes, in.Notes)
	setString(&h.QueenOrigin, in.QueenOrigin)
	setString(&h.HiveStyle, in.HiveStyle)
	return nil
}

func (in HarvestInput) provided() map[string]bool {
	return present(map[string]bool{
		"colmenaId":        in.HiveRef != nil,
		"fecha":            in.DateHarvested != nil,
		"cantidadKg":       in.HoneyKg != nil,
		"humedad":          in.HumidityPct != nil,
		"panalesExtraidos": in.CombsExtracted != nil,
		"metodo":           in.Method != nil,
		"floracion":        in.FloralSource != nil,
		"operador":         in.Operator != nil,
		"notas":            in.Notes != nil,
		"tipoMiel":         in.HoneyType != nil,
	})
}

func (in HarvestInput) apply(h *models.Harvest) error {
	if in.HiveRef != nil {
		ref, err := models.DecodeHiveRef(*in.HiveRef)
		if err != nil {
			return apperr.Invalid(models.KindHarvest, "colmenaId", err.Error())
		}
		h.HiveRef = ref
	}
	if in.DateHarvested != nil {
		d, err := models.ParseDate(*in.DateHarvested)
		if err != nil {
			return apperr.Invalid(models.KindHarvest, "fecha", err.Error())
		}
		h.DateHarvested = d
	}
	if in.HoneyKg != nil {
		h.HoneyKg = *in.HoneyKg
	}
	if in.HumidityPct != nil {
		h.HumidityPct = *in.HumidityPct
	}
	setInt(&h.CombsExtracted, in.CombsExtracted)
	setString(&h.Method, in.Method)
	setString(&h.FloralSource, in.FloralSource)
	setString(&h.Operator, in.Operator)
	setString(&h.Notes, in.Notes)
	setString(&h.HoneyType, in.HoneyType)
	return nil
}

func present(fields map[string]bool) map[string]bool {
	for k, v := range fields {
		if !v {
			delete(fields, k)
		}
	}
	return fields
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
