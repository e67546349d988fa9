// Package dashboard derives the headline metrics and the prioritised alert list
// from a snapshot of hives, supplies and harvests. It performs no I/O.
package dashboard

import (
	"sort"
	"time"

	"apiary-api-server/internal/models"
)

// Snapshot is the full set of records the engine evaluates.
type Snapshot struct {
	Hives    []models.Hive
	Supplies []models.SupplyItem
	Harvests []models.Harvest
}

// Options tunes rule evaluation.
type Options struct {
	// RequireResolvedHive suppresses the humidity and yield rules for harvests whose
	// hive reference no longer resolves.
	RequireResolvedHive bool
}

// DefaultOptions matches the behaviour the dashboard has always had.
func DefaultOptions() Options {
	return Options{RequireResolvedHive: true}
}

// Summary is the computed dashboard.
type Summary struct {
	ActiveHiveCount int
	MonthlyHoneyKg  float64
	Alerts          []Alert
	ComputedAt      time.Time
}

// Top returns at most n alerts and the number left out. n <= 0 returns everything.
func (s Summary) Top(n int) ([]Alert, int) {
	if n <= 0 || n >= len(s.Alerts) {
		return s.Alerts, 0
	}
	return s.Alerts[:n], len(s.Alerts) - n
}

// Compute evaluates metrics and alerts against now.
func Compute(snap Snapshot, now time.Time, opts Options) Summary {
	return Summary{
		ActiveHiveCount: ActiveHiveCount(snap.Hives),
		MonthlyHoneyKg:  MonthlyHoneyKg(snap.Harvests, now),
		Alerts:          Alerts(snap, now, opts),
		ComputedAt:      now,
	}
}

// ActiveHiveCount counts hives marked active.
func ActiveHiveCount(hives []models.Hive) int {
	n := 0
	for i := range hives {
		if hives[i].Active {
			n++
		}
	}
	return n
}

// MonthlyHoneyKg sums the honey of harvests dated in now's calendar month.
// Amounts are summed in ascending order so the result does not depend on input order.
func MonthlyHoneyKg(harvests []models.Harvest, now time.Time) float64 {
	year, month, _ := now.Date()
	var amounts []float64
	for i := range harvests {
		d := harvests[i].DateHarvested
		if d.IsZero() {
			continue
		}
		y, m, _ := d.UTC().Date()
		if y == year && m == month {
			amounts = append(amounts, harvests[i].HoneyKg)
		}
	}
	sort.Float64s(amounts)
	total := 0.0
	for _, kg := range amounts {
		total += kg
	}
	return total
}
