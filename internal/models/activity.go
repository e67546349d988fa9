// internal/models/activity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity actions.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ActivityEntry records one mutation. QuantityBefore/After are only filled for supply items.
type ActivityEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action         string             `bson:"action" json:"action"`
	TargetType     string             `bson:"targetType" json:"targetType"`
	TargetID       string             `bson:"targetId" json:"targetId"`
	QuantityBefore *float64           `bson:"cantidadAntes" json:"cantidadAntes"`
	QuantityAfter  *float64           `bson:"cantidadDespues" json:"cantidadDespues"`
	User           string             `bson:"user" json:"user"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

func (a *ActivityEntry) DocumentID() primitive.ObjectID      { return a.ID }
func (a *ActivityEntry) SetDocumentID(id primitive.ObjectID) { a.ID = id }
func (a *ActivityEntry) CreationTime() time.Time             { return a.Timestamp }
