package dashboard

import (
	"testing"
	"time"

	"apiary-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var now = time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hive(code string, active bool, queenAge, boxes int) models.Hive {
	return models.Hive{
		ID:             primitive.NewObjectID(),
		Code:           code,
		Active:         active,
		QueenAgeMonths: queenAge,
		BoxCount:       boxes,
		InstalledOn:    date(2026, time.April, 1),
	}
}

func harvestFor(h *models.Hive, kg, humidity float64, combs int) models.Harvest {
	var ref *primitive.ObjectID
	if h != nil {
		id := h.ID
		ref = &id
	}
	return models.Harvest{
		ID:             primitive.NewObjectID(),
		HiveRef:        ref,
		DateHarvested:  date(2026, time.May, 2),
		HoneyKg:        kg,
		HumidityPct:    humidity,
		CombsExtracted: combs,
		FloralSource:   "eucalipto",
		Operator:       "Ana",
	}
}

func byRule(alerts []Alert, rule string) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.Rule == rule {
			out = append(out, a)
		}
	}
	return out
}

func TestQueenReplacementWithoutBoxSpace(t *testing.T) {
	h := hive("COL-001", true, 20, 2)

	alerts := Alerts(Snapshot{Hives: []models.Hive{h}}, now, DefaultOptions())

	queen := byRule(alerts, RuleQueenReplacement)
	require.Len(t, queen, 1)
	assert.Equal(t, SeverityWarning, queen[0].Severity)
	assert.Equal(t, PageHives, queen[0].TargetPage)
	assert.Equal(t, h.ID.Hex(), queen[0].TargetID)
	assert.Contains(t, queen[0].Description, "COL-001")
	assert.Empty(t, byRule(alerts, RuleBoxSpace))
}

func TestQueenAgeBoundary(t *testing.T) {
	h := hive("COL-002", true, QueenMaxAgeMonths, 1)

	alerts := Alerts(Snapshot{Hives: []models.Hive{h}}, now, DefaultOptions())

	assert.Empty(t, byRule(alerts, RuleQueenReplacement))
}

func TestBoxSpaceInfo(t *testing.T) {
	h := hive("COL-003", true, 4, 3)

	alerts := Alerts(Snapshot{Hives: []models.Hive{h}}, now, DefaultOptions())

	box := byRule(alerts, RuleBoxSpace)
	require.Len(t, box, 1)
	assert.Equal(t, SeverityInfo, box[0].Severity)
}

func TestInactiveHiveIsCriticalOnly(t *testing.T) {
	h := hive("COL-004", false, 30, 5)

	alerts := Alerts(Snapshot{Hives: []models.Hive{h}}, now, DefaultOptions())

	require.Len(t, alerts, 1)
	assert.Equal(t, RuleInactiveHive, alerts[0].Rule)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Equal(t, h.ID.Hex(), alerts[0].TargetID)
}

func TestUninspectedHive(t *testing.T) {
	old := hive("COL-005", true, 2, 1)
	old.InstalledOn = date(2025, time.June, 1)
	harvested := hive("COL-006", true, 2, 1)
	harvested.InstalledOn = date(2025, time.June, 1)
	staleHarvest := hive("COL-007", true, 2, 1)
	staleHarvest.InstalledOn = date(2025, time.June, 1)
	recent := hive("COL-008", true, 2, 1)

	h1 := harvestFor(&harvested, 10, 17, 5)
	h2 := harvestFor(&staleHarvest, 10, 17, 5)
	h2.DateHarvested = date(2026, time.January, 10)

	snap := Snapshot{
		Hives:    []models.Hive{old, harvested, staleHarvest, recent},
		Harvests: []models.Harvest{h1, h2},
	}
	alerts := byRule(Alerts(snap, now, DefaultOptions()), RuleUninspected)

	require.Len(t, alerts, 2)
	assert.Equal(t, old.ID.Hex(), alerts[0].TargetID)
	assert.Equal(t, staleHarvest.ID.Hex(), alerts[1].TargetID)
}

func TestNegativeStockIsCritical(t *testing.T) {
	fuel := models.SupplyItem{ID: primitive.NewObjectID(), Name: "Smoker fuel", Quantity: -2}

	alerts := Alerts(Snapshot{Supplies: []models.SupplyItem{fuel}}, now, DefaultOptions())

	require.Len(t, alerts, 1)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Equal(t, PageSupplies, alerts[0].TargetPage)
	assert.Contains(t, alerts[0].Description, "-2")
}

func TestLowStockThresholds(t *testing.T) {
	supplies := []models.SupplyItem{
		{ID: primitive.NewObjectID(), Name: "Frames", Quantity: 0, Unit: "u"},
		{ID: primitive.NewObjectID(), Name: "Wax", Quantity: 4.5, Unit: "kg"},
		{ID: primitive.NewObjectID(), Name: "Jars", Quantity: 5},
		{ID: primitive.NewObjectID(), Name: "Sugar", Quantity: 40},
	}

	alerts := Alerts(Snapshot{Supplies: supplies}, now, DefaultOptions())

	require.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.Equal(t, SeverityWarning, a.Severity)
	}
	assert.Equal(t, "Wax: 4.5 kg in stock.", alerts[1].Description)
}

func TestHarvestWithWetLowYield(t *testing.T) {
	h := hive("COL-001", true, 4, 1)
	hv := harvestFor(&h, 0.5, 20.0, 1)

	alerts := Alerts(Snapshot{Hives: []models.Hive{h}, Harvests: []models.Harvest{hv}}, now, DefaultOptions())

	ferm := byRule(alerts, RuleFermentation)
	require.Len(t, ferm, 1)
	assert.Equal(t, SeverityCritical, ferm[0].Severity)
	assert.Equal(t, h.ID.Hex(), ferm[0].HiveID)

	yield := byRule(alerts, RuleLowYield)
	require.Len(t, yield, 1)
	assert.Equal(t, SeverityWarning, yield[0].Severity)
	assert.Equal(t, h.ID.Hex(), yield[0].HiveID)
	assert.Equal(t, PageHarvests, yield[0].TargetPage)
	assert.Equal(t, hv.ID.Hex(), yield[0].TargetID)
}

func TestDanglingHiveSuppressesHarvestRules(t *testing.T) {
	gone := hive("COL-404", true, 1, 1)
	hv := harvestFor(&gone, 0.5, 20.0, 1)
	hv.Operator = " "

	snap := Snapshot{Harvests: []models.Harvest{hv}}

	alerts := Alerts(snap, now, DefaultOptions())
	assert.Empty(t, byRule(alerts, RuleFermentation))
	assert.Empty(t, byRule(alerts, RuleLowYield))
	incomplete := byRule(alerts, RuleIncompleteRecord)
	require.Len(t, incomplete, 1)
	assert.Contains(t, incomplete[0].Description, "unknown hive")

	relaxed := Alerts(snap, now, Options{RequireResolvedHive: false})
	assert.Len(t, byRule(relaxed, RuleFermentation), 1)
	assert.Len(t, byRule(relaxed, RuleLowYield), 1)
}

func TestIncompleteRecord(t *testing.T) {
	h := hive("COL-001", true, 4, 1)
	complete := harvestFor(&h, 10, 17, 4)
	missing := harvestFor(&h, 10, 17, 4)
	missing.FloralSource = "\t"
	missing.Operator = ""

	alerts := byRule(Alerts(Snapshot{Hives: []models.Hive{h}, Harvests: []models.Harvest{complete, missing}}, now, DefaultOptions()), RuleIncompleteRecord)

	require.Len(t, alerts, 1)
	assert.Equal(t, missing.ID.Hex(), alerts[0].TargetID)
	assert.Contains(t, alerts[0].Description, "floral source and operator")
}

func TestAlertsSortedBySeverityStable(t *testing.T) {
	a := hive("COL-A", true, 24, 4)
	b := hive("COL-B", false, 1, 1)
	c := hive("COL-C", true, 19, 3)
	supplies := []models.SupplyItem{
		{ID: primitive.NewObjectID(), Name: "Fuel", Quantity: -1},
		{ID: primitive.NewObjectID(), Name: "Wax", Quantity: 1},
	}

	alerts := Alerts(Snapshot{Hives: []models.Hive{a, b, c}, Supplies: supplies}, now, DefaultOptions())

	for i := 1; i < len(alerts); i++ {
		assert.LessOrEqual(t, alerts[i-1].Severity.Rank(), alerts[i].Severity.Rank())
	}
	var order []string
	for _, al := range alerts {
		order = append(order, al.ID)
	}
	assert.Equal(t, []string{
		RuleInactiveHive + ":" + b.ID.Hex(),
		RuleLowStock + ":" + supplies[0].ID.Hex(),
		RuleQueenReplacement + ":" + a.ID.Hex(),
		RuleQueenReplacement + ":" + c.ID.Hex(),
		RuleLowStock + ":" + supplies[1].ID.Hex(),
		RuleBoxSpace + ":" + a.ID.Hex(),
		RuleBoxSpace + ":" + c.ID.Hex(),
	}, order)
}

func TestMonthlyHoneyKg(t *testing.T) {
	hs := []models.Harvest{
		{HoneyKg: 0.1, DateHarvested: date(2026, time.May, 1)},
		{HoneyKg: 0.2, DateHarvested: date(2026, time.May, 14)},
		{HoneyKg: 0.3, DateHarvested: date(2026, time.May, 31)},
		{HoneyKg: 50, DateHarvested: date(2026, time.April, 30)},
		{HoneyKg: 50, DateHarvested: date(2025, time.May, 10)},
		{HoneyKg: 50},
	}
	reversed := make([]models.Harvest, len(hs))
	for i := range hs {
		reversed[len(hs)-1-i] = hs[i]
	}

	got := MonthlyHoneyKg(hs, now)
	assert.InDelta(t, 0.6, got, 1e-9)
	assert.Equal(t, got, MonthlyHoneyKg(reversed, now))
	assert.Zero(t, MonthlyHoneyKg(hs[3:], now))
	assert.Zero(t, MonthlyHoneyKg(nil, now))
}

func TestComputeAndTop(t *testing.T) {
	snap := Snapshot{
		Hives: []models.Hive{hive("COL-1", true, 20, 3), hive("COL-2", false, 1, 1), hive("COL-3", true, 1, 1)},
		Supplies: []models.SupplyItem{
			{ID: primitive.NewObjectID(), Name: "Fuel", Quantity: -3},
			{ID: primitive.NewObjectID(), Name: "Wax", Quantity: 2},
			{ID: primitive.NewObjectID(), Name: "Jars", Quantity: 1},
		},
	}

	s := Compute(snap, now, DefaultOptions())

	assert.Equal(t, 2, s.ActiveHiveCount)
	assert.Equal(t, now, s.ComputedAt)
	require.Len(t, s.Alerts, 6)

	top, rest := s.Top(5)
	assert.Len(t, top, 5)
	assert.Equal(t, 1, rest)

	all, rest := s.Top(0)
	assert.Len(t, all, 6)
	assert.Zero(t, rest)
}
