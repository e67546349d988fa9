package client

import (
	"fmt"
	"time"

	"apiary-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Supply is an insumo as returned by the server.
type Supply struct {
	ID          string  `json:"id"`
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion"`
	Quantity    float64 `json:"cantidad"`
	Unit        *string `json:"unidad"`
	Category    *string `json:"tipo"`
	UserID      *string `json:"userId"`
	CreatedAt   *string `json:"creadoEn"`
	UpdatedAt   *string `json:"actualizadoEn"`
}

// Hive is a colmena as returned by the server.
type Hive struct {
	ID             string  `json:"id"`
	ApiaryLabel    *string `json:"apiarioID"`
	BoxCount       int     `json:"cantidadAlzas"`
	Code           string  `json:"codigo"`
	QueenAgeMonths int     `json:"edadReinaMeses"`
	Active         bool    `json:"estado"`
	InstalledOn    *string `json:"fechaInstalacion"`
	Notes          *string `json:"notas"`
	QueenOrigin    *string `json:"origenReina"`
	HiveStyle      *string `json:"tipo"`
	PhotoURL       *string `json:"fotoUrl"`
	UserID         *string `json:"userId"`
	CreatedAt      *string `json:"creadoEn"`
	UpdatedAt      *string `json:"actualizadoEn"`
}

// Harvest is a cosecha as returned by the server. HiveRef is "colmenas/<id>" or nil.
type Harvest struct {
	ID             string  `json:"id"`
	HiveRef        *string `json:"colmenaId"`
	DateHarvested  string  `json:"fecha"`
	HoneyKg        float64 `json:"cantidadKg"`
	HumidityPct    float64 `json:"humedad"`
	CombsExtracted int     `json:"panalesExtraidos"`
	Method         *string `json:"metodo"`
	FloralSource   *string `json:"floracion"`
	Operator       *string `json:"operador"`
	Notes          *string `json:"notas"`
	HoneyType      *string `json:"tipoMiel"`
	UserID         *string `json:"userId"`
	CreatedAt      *string `json:"creadoEn"`
	UpdatedAt      *string `json:"actualizadoEn"`
}

type Activity struct {
	ID             string   `json:"id"`
	Action         string   `json:"action"`
	TargetType     string   `json:"targetType"`
	TargetID       *string  `json:"targetId"`
	QuantityBefore *float64 `json:"cantidadAntes"`
	QuantityAfter  *float64 `json:"cantidadDespues"`
	User           *string  `json:"user"`
	Timestamp      string   `json:"timestamp"`
}

type Alert struct {
	ID          string  `json:"id"`
	Rule        string  `json:"rule"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	TargetPage  string  `json:"targetPage"`
	TargetID    string  `json:"targetId"`
	HiveID      *string `json:"hiveId"`
}

// Dashboard is the server-computed summary.
type Dashboard struct {
	ActiveHiveCount int     `json:"activeHiveCount"`
	MonthlyHoneyKg  float64 `json:"monthlyHoneyKg"`
	Alerts          []Alert `json:"alerts"`
	TotalAlerts     int     `json:"totalAlerts"`
	RemainingAlerts int     `json:"remainingAlerts"`
	ComputedAt      string  `json:"computedAt"`
}

// Model converts the wire record into the domain model used by the dashboard engine.
func (s Supply) Model() (models.SupplyItem, error) {
	id, err := primitive.ObjectIDFromHex(s.ID)
	if err != nil {
		return models.SupplyItem{}, fmt.Errorf("insumo id %q: %w", s.ID, err)
	}
	return models.SupplyItem{
		ID:          id,
		Name:        s.Name,
		Description: deref(s.Description),
		Quantity:    s.Quantity,
		Unit:        deref(s.Unit),
		Category:    deref(s.Category),
		UserID:      deref(s.UserID),
		CreatedAt:   parseTimestamp(s.CreatedAt),
		UpdatedAt:   parseTimestamp(s.UpdatedAt),
	}, nil
}

func (h Hive) Model() (models.Hive, error) {
	id, err := primitive.ObjectIDFromHex(h.ID)
	if err != nil {
		return models.Hive{}, fmt.Errorf("colmena id %q: %w", h.ID, err)
	}
	installed, err := models.ParseDate(deref(h.InstalledOn))
	if err != nil {
		return models.Hive{}, fmt.Errorf("colmena %s: %w", h.ID, err)
	}
	return models.Hive{
		ID:             id,
		ApiaryLabel:    deref(h.ApiaryLabel),
		BoxCount:       h.BoxCount,
		Code:           h.Code,
		QueenAgeMonths: h.QueenAgeMonths,
		Active:         h.Active,
		InstalledOn:    installed,
		Notes:          deref(h.Notes),
		QueenOrigin:    deref(h.QueenOrigin),
		HiveStyle:      deref(h.HiveStyle),
		PhotoURL:       deref(h.PhotoURL),
		UserID:         deref(h.UserID),
		CreatedAt:      parseTimestamp(h.CreatedAt),
		UpdatedAt:      parseTimestamp(h.UpdatedAt),
	}, nil
}

// Model keeps an unparseable hive reference as "no hive" so one bad record does not
// hide the rest of the dashboard.
func (h Harvest) Model() (models.Harvest, error) {
	id, err := primitive.ObjectIDFromHex(h.ID)
	if err != nil {
		return models.Harvest{}, fmt.Errorf("cosecha id %q: %w", h.ID, err)
	}
	date, err := models.ParseDate(h.DateHarvested)
	if err != nil {
		return models.Harvest{}, fmt.Errorf("cosecha %s: %w", h.ID, err)
	}
	ref, _ := models.DecodeHiveRef(deref(h.HiveRef))
	return models.Harvest{
		ID:             id,
		HiveRef:        ref,
		DateHarvested:  date,
		HoneyKg:        h.HoneyKg,
		HumidityPct:    h.HumidityPct,
		CombsExtracted: h.CombsExtracted,
		Method:         deref(h.Method),
		FloralSource:   deref(h.FloralSource),
		Operator:       deref(h.Operator),
		Notes:          deref(h.Notes),
		HoneyType:      deref(h.HoneyType),
		UserID:         deref(h.UserID),
		CreatedAt:      parseTimestamp(h.CreatedAt),
		UpdatedAt:      parseTimestamp(h.UpdatedAt),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseTimestamp(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timestampLayout, *s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, *s)
	return t
}
