// internal/models/harvest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Defaults applied to new harvests when the caller leaves the field empty.
const (
	DefaultHarvestMethod = "centrifuga"
	DefaultHoneyType     = "multifloral"
)

// Harvest is one honey-extraction event (cosecha). HiveRef is not enforced as a
// foreign key, so readers must tolerate references to hives that no longer exist.
type Harvest struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	HiveRef        *primitive.ObjectID `bson:"colmenaRef,omitempty" json:"-"`
	DateHarvested  time.Time           `bson:"fecha" json:"fecha" validate:"required"`
	HoneyKg        float64             `bson:"cantidadKg" json:"cantidadKg" validate:"min=0"`
	HumidityPct    float64             `bson:"humedad" json:"humedad" validate:"min=0,max=100"`
	CombsExtracted int                 `bson:"panalesExtraidos" json:"panalesExtraidos" validate:"min=0"`
	Method         string              `bson:"metodo,omitempty" json:"metodo"`
	FloralSource   string              `bson:"floracion,omitempty" json:"floracion"`
	Operator       string              `bson:"operador,omitempty" json:"operador"`
	Notes          string              `bson:"notas,omitempty" json:"notas"`
	HoneyType      string              `bson:"tipoMiel,omitempty" json:"tipoMiel"`
	UserID         string              `bson:"userId,omitempty" json:"userId"`
	CreatedAt      time.Time           `bson:"creadoEn" json:"creadoEn"`
	UpdatedAt      time.Time           `bson:"actualizadoEn,omitempty" json:"actualizadoEn"`
}

func (h *Harvest) DocumentID() primitive.ObjectID      { return h.ID }
func (h *Harvest) SetDocumentID(id primitive.ObjectID) { h.ID = id }
func (h *Harvest) CreationTime() time.Time             { return h.CreatedAt }

// HiveID returns the referenced hive's hex id, or "" when unset.
func (h *Harvest) HiveID() string {
	if h.HiveRef == nil || h.HiveRef.IsZero() {
		return ""
	}
	return h.HiveRef.Hex()
}
