// internal/models/supply_item.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupplyItem is a consumable or tool tracked by quantity (insumo).
// Quantity may be negative; that is an alert-worthy state, not an error.
type SupplyItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"nombre" json:"nombre" validate:"required,notblank"`
	Description string             `bson:"descripcion,omitempty" json:"descripcion"`
	Quantity    float64            `bson:"cantidad" json:"cantidad"`
	Unit        string             `bson:"unidad,omitempty" json:"unidad"`
	Category    string             `bson:"tipo,omitempty" json:"tipo"`
	UserID      string             `bson:"userId,omitempty" json:"userId"`
	CreatedAt   time.Time          `bson:"creadoEn" json:"creadoEn"`
	UpdatedAt   time.Time          `bson:"actualizadoEn,omitempty" json:"actualizadoEn"`
}

func (s *SupplyItem) DocumentID() primitive.ObjectID      { return s.ID }
func (s *SupplyItem) SetDocumentID(id primitive.ObjectID) { s.ID = id }
func (s *SupplyItem) CreationTime() time.Time             { return s.CreatedAt }
