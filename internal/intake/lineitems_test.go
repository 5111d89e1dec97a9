package intake

import "testing"

func TestParseLineItem(t *testing.T) {
	tests := []struct {
		input        string
		wantQty      float64
		wantUnit     string
		wantPrice    float64
		wantCategory ItemCategory
	}{
		{"200 sq ft composite decking at $12", 200, "sq ft", 12, CategoryMaterials},
		{"16 hours demo labor at $85/hour", 16, "hours", 85, CategoryLabor},
		{"excavator rental, 2 days, $350 per day", 2, "days", 350, CategoryEquipment},
		{"electrician for hot tub hookup $1,200", 1, "each", 1200, CategorySubcontractor},
		{"permit filing", 1, "each", 0, CategoryOther},
		{"40 lin ft cedar railing", 40, "lin ft", 0, CategoryMaterials},
	}

	for _, tt := range tests {
		item, ok := parseLineItem(tt.input)
		if !ok {
			t.Fatalf("parseLineItem(%q) rejected a valid item", tt.input)
		}
		if item.Quantity != tt.wantQty {
			t.Fatalf("%q: quantity = %g, want %g", tt.input, item.Quantity, tt.wantQty)
		}
		if item.Unit != tt.wantUnit {
			t.Fatalf("%q: unit = %q, want %q", tt.input, item.Unit, tt.wantUnit)
		}
		if item.UnitPrice != tt.wantPrice {
			t.Fatalf("%q: price = %g, want %g", tt.input, item.UnitPrice, tt.wantPrice)
		}
		if item.Category != tt.wantCategory {
			t.Fatalf("%q: category = %s, want %s", tt.input, item.Category, tt.wantCategory)
		}
		if item.Description == "" {
			t.Fatalf("%q: empty description", tt.input)
		}
	}
}

func TestParseLineItem_RejectsUnusableTurns(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"what do you mean?",
		"12345",
		"$$$",
	} {
		if _, ok := parseLineItem(input); ok {
			t.Fatalf("parseLineItem(%q) should reject", input)
		}
	}
}

func TestIsLineItemDone(t *testing.T) {
	for _, input := range []string{"done", "Done.", "that's all", "nothing else", "we're done"} {
		if !isLineItemDone(input) {
			t.Fatalf("expected %q to signal completion", input)
		}
	}
	for _, input := range []string{"done with the demo part, next is framing", "40 lf railing"} {
		if isLineItemDone(input) {
			t.Fatalf("%q must not signal completion", input)
		}
	}
}
