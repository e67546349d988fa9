// internal/models/common.go
package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date format used on the wire (fechaInstalacion, fecha).
const DateLayout = "2006-01-02"

// HiveRefPrefix is the collection path clients use when referencing a hive.
const HiveRefPrefix = "colmenas/"

// Collection names in the document store.
const (
	SuppliesCollection = "insumos"
	HivesCollection    = "colmenas"
	HarvestsCollection = "cosechas"
	ActivityCollection = "activityLog"
)

// Entity kinds, used for error context, activity entries and change events.
const (
	KindSupply  = "insumo"
	KindHive    = "colmena"
	KindHarvest = "cosecha"
)

// ParseDate parses a YYYY-MM-DD string into a UTC midnight timestamp.
// An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		// Some older records carry full RFC 3339 timestamps.
		if ts, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			y, m, d := ts.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders a calendar date, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// EncodeHiveRef turns a stored hive reference into its client-facing path form.
func EncodeHiveRef(id *primitive.ObjectID) string {
	if id == nil || id.IsZero() {
		return ""
	}
	return HiveRefPrefix + id.Hex()
}

// DecodeHiveRef accepts "colmenas/<hex>" or a bare "<hex>". Empty input decodes to nil.
func DecodeHiveRef(ref string) (*primitive.ObjectID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	ref = strings.TrimPrefix(ref, "/")
	ref = strings.TrimPrefix(ref, HiveRefPrefix)
	oid, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid hive reference %q", ref)
	}
	return &oid, nil
}
