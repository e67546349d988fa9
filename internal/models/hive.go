// internal/models/hive.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultHiveStyle is applied when a hive is created without a style.
const DefaultHiveStyle = "Langstroth"

// Hive is a physical beehive unit (colmena).
type Hive struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApiaryLabel    string             `bson:"apiarioID" json:"apiarioID"`
	BoxCount       int                `bson:"cantidadAlzas" json:"cantidadAlzas" validate:"min=0"`
	Code           string             `bson:"codigo" json:"codigo" validate:"notblank"`
	QueenAgeMonths int                `bson:"edadReinaMeses" json:"edadReinaMeses" validate:"min=0"`
	Active         bool               `bson:"estado" json:"estado"`
	InstalledOn    time.Time          `bson:"fechaInstalacion,omitempty" json:"fechaInstalacion"`
	Notes          string             `bson:"notas,omitempty" json:"notas"`
	QueenOrigin    string             `bson:"origenReina,omitempty" json:"origenReina"`
	HiveStyle      string             `bson:"tipo,omitempty" json:"tipo"`
	PhotoURL       string             `bson:"fotoUrl,omitempty" json:"fotoUrl"`
	UserID         string             `bson:"userId,omitempty" json:"userId"`
	CreatedAt      time.Time          `bson:"creadoEn" json:"creadoEn"`
	UpdatedAt      time.Time          `bson:"actualizadoEn,omitempty" json:"actualizadoEn"`
}

func (h *Hive) DocumentID() primitive.ObjectID      { return h.ID }
func (h *Hive) SetDocumentID(id primitive.ObjectID) { h.ID = id }
func (h *Hive) CreationTime() time.Time             { return h.CreatedAt }
