package dashboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"apiary-api-server/internal/models"
)

// Severity ranks an alert for display.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities: critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Pages alerts deep-link into.
const (
	PageHives    = "colmenas"
	PageSupplies = "insumos"
	PageHarvests = "cosechas"
)

// Rule identifiers.
const (
	RuleQueenReplacement = "queen-replacement"
	RuleBoxSpace         = "box-space"
	RuleUninspected      = "uninspected-hive"
	RuleInactiveHive     = "inactive-hive"
	RuleLowStock         = "low-stock"
	RuleFermentation     = "fermentation-risk"
	RuleLowYield         = "low-yield"
	RuleIncompleteRecord = "incomplete-record"
)

// Thresholds.
const (
	QueenMaxAgeMonths      = 18
	BoxSpaceMinBoxes       = 3
	UninspectedAfterMonths = 6
	HarvestLookbackMonths  = 3
	LowStockBelow          = 5.0
	MaxHumidityPct         = 18.5
	MinKgPerComb           = 1.0
)

// Alert is one derived warning with enough to deep-link the UI to its target.
type Alert struct {
	ID          string   `json:"id"`
	Rule        string   `json:"rule"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	TargetPage  string   `json:"targetPage"`
	TargetID    string   `json:"targetId"`
	HiveID      string   `json:"hiveId,omitempty"`
}

// Alerts evaluates every rule and returns the alerts sorted by severity.
// Within a severity tier alerts keep rule-emission order.
func Alerts(snap Snapshot, now time.Time, opts Options) []Alert {
	hivesByID := make(map[string]*models.Hive, len(snap.Hives))
	for i := range snap.Hives {
		hivesByID[snap.Hives[i].ID.Hex()] = &snap.Hives[i]
	}

	var out []Alert
	out = append(out, queenReplacement(snap.Hives)...)
	out = append(out, boxSpace(snap.Hives)...)
	out = append(out, uninspected(snap.Hives, snap.Harvests, now)...)
	out = append(out, inactive(snap.Hives)...)
	out = append(out, lowStock(snap.Supplies)...)
	out = append(out, fermentation(snap.Harvests, hivesByID, opts)...)
	out = append(out, lowYield(snap.Harvests, hivesByID, opts)...)
	out = append(out, incomplete(snap.Harvests, hivesByID)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}

func queenReplacement(hives []models.Hive) []Alert {
	var out []Alert
	for i := range hives {
		h := &hives[i]
		if !h.Active || h.QueenAgeMonths <= QueenMaxAgeMonths {
			continue
		}
		out = append(out, hiveAlert(RuleQueenReplacement, h, SeverityWarning,
			"Queen replacement due",
			fmt.Sprintf("Hive %s has a %d-month-old queen; plan a replacement.", hiveLabel(h), h.QueenAgeMonths)))
	}
	return out
}

func boxSpace(hives []models.Hive) []Alert {
	var out []Alert
	for i := range hives {
		h := &hives[i]
		if !h.Active || h.BoxCount < BoxSpaceMinBoxes {
			continue
		}
		out = append(out, hiveAlert(RuleBoxSpace, h, SeverityInfo,
			"Check box space",
			fmt.Sprintf("Hive %s has %d boxes; check whether it needs more room or a harvest.", hiveLabel(h), h.BoxCount)))
	}
	return out
}

func uninspected(hives []models.Hive, harvests []models.Harvest, now time.Time) []Alert {
	installedBefore := now.AddDate(0, -UninspectedAfterMonths, 0)
	harvestedSince := now.AddDate(0, -HarvestLookbackMonths, 0)

	recent := make(map[string]bool)
	for i := range harvests {
		h := &harvests[i]
		if h.HiveID() == "" || h.DateHarvested.IsZero() {
			continue
		}
		if !h.DateHarvested.Before(harvestedSince) {
			recent[h.HiveID()] = true
		}
	}

	var out []Alert
	for i := range hives {
		h := &hives[i]
		if !h.Active || h.InstalledOn.IsZero() || !h.InstalledOn.Before(installedBefore) {
			continue
		}
		if recent[h.ID.Hex()] {
			continue
		}
		out = append(out, hiveAlert(RuleUninspected, h, SeverityWarning,
			"Hive without recent harvest",
			fmt.Sprintf("Hive %s has no harvest recorded in the last %d months; schedule an inspection.", hiveLabel(h), HarvestLookbackMonths)))
	}
	return out
}

func inactive(hives []models.Hive) []Alert {
	var out []Alert
	for i := range hives {
		h := &hives[i]
		if h.Active {
			continue
		}
		out = append(out, hiveAlert(RuleInactiveHive, h, SeverityCritical,
			"Inactive hive",
			fmt.Sprintf("Hive %s is marked inactive.", hiveLabel(h))))
	}
	return out
}

func lowStock(supplies []models.SupplyItem) []Alert {
	var out []Alert
	for i := range supplies {
		s := &supplies[i]
		if s.Quantity >= LowStockBelow {
			continue
		}
		severity, title := SeverityWarning, "Low stock"
		if s.Quantity < 0 {
			severity, title = SeverityCritical, "Negative stock"
		}
		qty := strconv.FormatFloat(s.Quantity, 'f', -1, 64)
		if s.Unit != "" {
			qty += " " + s.Unit
		}
		out = append(out, Alert{
			ID:          RuleLowStock + ":" + s.ID.Hex(),
			Rule:        RuleLowStock,
			Title:       title,
			Description: fmt.Sprintf("%s: %s in stock.", supplyLabel(s), qty),
			Severity:    severity,
			TargetPage:  PageSupplies,
			TargetID:    s.ID.Hex(),
		})
	}
	return out
}

func fermentation(harvests []models.Harvest, hives map[string]*models.Hive, opts Options) []Alert {
	var out []Alert
	for i := range harvests {
		h := &harvests[i]
		if h.HumidityPct <= MaxHumidityPct {
			continue
		}
		hive, ok := hives[h.HiveID()]
		if !ok && opts.RequireResolvedHive {
			continue
		}
		out = append(out, harvestAlert(RuleFermentation, h, hive, SeverityCritical,
			"Fermentation risk",
			fmt.Sprintf("Harvest from hive %s has %s%% humidity (max %s%%).",
				harvestHiveLabel(h, hive), formatFloat(h.HumidityPct), formatFloat(MaxHumidityPct))))
	}
	return out
}

func lowYield(harvests []models.Harvest, hives map[string]*models.Hive, opts Options) []Alert {
	var out []Alert
	for i := range harvests {
		h := &harvests[i]
		if h.CombsExtracted <= 0 {
			continue
		}
		perComb := h.HoneyKg / float64(h.CombsExtracted)
		if perComb >= MinKgPerComb {
			continue
		}
		hive, ok := hives[h.HiveID()]
		if !ok && opts.RequireResolvedHive {
			continue
		}
		out = append(out, harvestAlert(RuleLowYield, h, hive, SeverityWarning,
			"Low yield per comb",
			fmt.Sprintf("Harvest from hive %s yielded %s kg per comb.",
				harvestHiveLabel(h, hive), strconv.FormatFloat(perComb, 'f', 2, 64))))
	}
	return out
}

func incomplete(harvests []models.Harvest, hives map[string]*models.Hive) []Alert {
	var out []Alert
	for i := range harvests {
		h := &harvests[i]
		var missing []string
		if strings.TrimSpace(h.FloralSource) == "" {
			missing = append(missing, "floral source")
		}
		if strings.TrimSpace(h.Operator) == "" {
			missing = append(missing, "operator")
		}
		if len(missing) == 0 {
			continue
		}
		hive := hives[h.HiveID()]
		out = append(out, harvestAlert(RuleIncompleteRecord, h, hive, SeverityWarning,
			"Incomplete harvest record",
			fmt.Sprintf("Harvest from hive %s is missing %s.", harvestHiveLabel(h, hive), strings.Join(missing, " and "))))
	}
	return out
}

func hiveAlert(rule string, h *models.Hive, severity Severity, title, description string) Alert {
	return Alert{
		ID:          rule + ":" + h.ID.Hex(),
		Rule:        rule,
		Title:       title,
		Description: description,
		Severity:    severity,
		TargetPage:  PageHives,
		TargetID:    h.ID.Hex(),
		HiveID:      h.ID.Hex(),
	}
}

func harvestAlert(rule string, h *models.Harvest, hive *models.Hive, severity Severity, title, description string) Alert {
	a := Alert{
		ID:          rule + ":" + h.ID.Hex(),
		Rule:        rule,
		Title:       title,
		Description: description,
		Severity:    severity,
		TargetPage:  PageHarvests,
		TargetID:    h.ID.Hex(),
	}
	if hive != nil {
		a.HiveID = hive.ID.Hex()
	}
	return a
}

func hiveLabel(h *models.Hive) string {
	if c := strings.TrimSpace(h.Code); c != "" {
		return c
	}
	return h.ID.Hex()
}

func harvestHiveLabel(h *models.Harvest, hive *models.Hive) string {
	if hive != nil {
		return hiveLabel(hive)
	}
	if id := h.HiveID(); id != "" {
		return id + " (unknown hive)"
	}
	return "unknown hive"
}

func supplyLabel(s *models.SupplyItem) string {
	if n := strings.TrimSpace(s.Name); n != "" {
		return n
	}
	return s.ID.Hex()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
