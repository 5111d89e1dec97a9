package intake

import (
	"regexp"
	"strconv"
	"strings"
)

// lineItemDonePhrases are the completion signals that exit the line-item
// phase.
var lineItemDonePhrases = map[string]bool{
	"done": true, "that's all": true, "thats all": true, "that is all": true,
	"finished": true, "complete": true, "no more": true, "nothing else": true,
	"all done": true, "we're done": true, "were done": true, "i'm done": true,
	"im done": true,
}

// isLineItemDone reports whether a turn signals the end of line-item
// collection.
func isLineItemDone(input string) bool {
	return lineItemDonePhrases[normalizeTurn(input)]
}

var (
	quantityRE = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(sq\.?\s?ft|sqft|square feet|lin\.?\s?ft|lf|linear feet|ft|feet|hours?|hrs?|days?|each|units?|yards?|loads?)`)
	unitCostRE = regexp.MustCompile(`(?i)(?:\$\s?(\d+(?:,\d{3})*(?:\.\d+)?)|(\d+(?:\.\d+)?)\s*dollars)(?:\s*(?:/|per|a|an)\s*\w+)?`)
	letterRE   = regexp.MustCompile(`[a-zA-Z]`)
)

// categoryKeywords maps phrasing to line-item categories. Checked in order;
// first hit wins.
var categoryKeywords = []struct {
	keyword  string
	category ItemCategory
}{
	{"labor", CategoryLabor},
	{"install", CategoryLabor},
	{"demo", CategoryLabor},
	{"demolition", CategoryLabor},
	{"framing", CategoryLabor},
	{"carpentry", CategoryLabor},
	{"crew", CategoryLabor},
	{"lumber", CategoryMaterials},
	{"decking", CategoryMaterials},
	{"concrete", CategoryMaterials},
	{"hardware", CategoryMaterials},
	{"screws", CategoryMaterials},
	{"joist", CategoryMaterials},
	{"railing", CategoryMaterials},
	{"material", CategoryMaterials},
	{"composite", CategoryMaterials},
	{"trex", CategoryMaterials},
	{"cedar", CategoryMaterials},
	{"gravel", CategoryMaterials},
	{"paint", CategoryMaterials},
	{"rental", CategoryEquipment},
	{"excavator", CategoryEquipment},
	{"auger", CategoryEquipment},
	{"dumpster", CategoryEquipment},
	{"equipment", CategoryEquipment},
	{"lift", CategoryEquipment},
	{"electrician", CategorySubcontractor},
	{"plumber", CategorySubcontractor},
	{"subcontractor", CategorySubcontractor},
	{"sub ", CategorySubcontractor},
	{"hvac", CategorySubcontractor},
	{"permit", CategoryOther},
}

func categorize(text string) ItemCategory {
	lower := strings.ToLower(text)
	for _, kw := range categoryKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.category
		}
	}
	return CategoryOther
}

// parseLineItem turns one turn into a line item. Returns ok=false for turns
// that cannot form a valid item: empty text, questions, or text with no
// letters. Those turns are discarded without ending the phase.
func parseLineItem(input string) (LineItem, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.HasSuffix(trimmed, "?") {
		return LineItem{}, false
	}
	if !letterRE.MatchString(trimmed) {
		return LineItem{}, false
	}

	item := LineItem{
		Quantity: 1,
		Unit:     "each",
		Category: categorize(trimmed),
	}

	description := trimmed

	if m := quantityRE.FindStringSubmatch(trimmed); len(m) == 3 {
		if qty, err := strconv.ParseFloat(m[1], 64); err == nil && qty > 0 {
			item.Quantity = qty
			item.Unit = normalizeUnit(m[2])
		}
	}

	if m := unitCostRE.FindStringSubmatch(trimmed); len(m) == 3 {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		raw = strings.ReplaceAll(raw, ",", "")
		if price, err := strconv.ParseFloat(raw, 64); err == nil && price > 0 {
			item.UnitPrice = price
		}
		description = strings.TrimSpace(strings.Replace(description, m[0], "", 1))
	}

	description = strings.TrimSuffix(strings.TrimSpace(description), " at")
	description = strings.Trim(description, " ,.-")
	if description == "" {
		description = trimmed
	}
	item.Description = description

	return item, true
}

func normalizeUnit(raw string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), " ", "")) {
	case "sqft", "squarefeet":
		return "sq ft"
	case "lf", "linft", "linearfeet":
		return "lin ft"
	case "ft", "feet":
		return "ft"
	case "hour", "hours", "hr", "hrs":
		return "hours"
	case "day", "days":
		return "days"
	case "unit", "units", "each":
		return "each"
	case "yard", "yards":
		return "yards"
	case "load", "loads":
		return "loads"
	default:
		return strings.ToLower(raw)
	}
}
