// Package estimate turns a completed intake session into a priced quote
// draft for the estimator to review.
package estimate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/intake"
)

// Business constants.
const (
	// WasteFactor adds 10% waste to material costs.
	WasteFactor = 1.10
	// Margin is the target gross margin on the job.
	Margin = 0.25
)

// Line is one priced entry in the quote.
type Line struct {
	Description string              `json:"description"`
	Category    intake.ItemCategory `json:"category"`
	Quantity    float64             `json:"quantity"`
	Unit        string              `json:"unit"`
	UnitPrice   float64             `json:"unit_price"`
	Extended    float64             `json:"extended"`
}

// Quote is the priced rollup of a session's collected line items.
type Quote struct {
	SessionID    string                          `json:"session_id"`
	CustomerName string                          `json:"customer_name"`
	ProjectType  string                          `json:"project_type"`
	Lines        []Line                          `json:"lines"`
	Subtotals    map[intake.ItemCategory]float64 `json:"subtotals"`
	Subtotal     float64                         `json:"subtotal"`
	MarginAmount float64                         `json:"margin_amount"`
	Total        float64                         `json:"total"`
	SquareFeet   float64                         `json:"square_feet,omitempty"`
	PricePerSqFt float64                         `json:"price_per_sqft,omitempty"`
}

var dimensionsRE = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:x|×|by)\s*(\d+(?:\.\d+)?)`)

// Assemble prices a session's line items. Material costs carry the waste
// factor; the margin is applied so the quoted total yields the target gross
// margin. Items without a unit price extend to zero and stay on the quote
// for the estimator to fill in.
func Assemble(session *intake.Session) Quote {
	q := Quote{
		SessionID:    session.ID,
		CustomerName: session.Draft.Value(intake.FieldCustomerName),
		ProjectType:  session.Draft.Value(intake.FieldProjectType),
		Subtotals:    make(map[intake.ItemCategory]float64),
	}

	for _, item := range session.Draft.Items {
		extended := item.Quantity * item.UnitPrice
		if item.Category == intake.CategoryMaterials {
			extended *= WasteFactor
		}
		line := Line{
			Description: item.Description,
			Category:    item.Category,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Extended:    extended,
		}
		q.Lines = append(q.Lines, line)
		q.Subtotals[item.Category] += extended
		q.Subtotal += extended
	}

	q.MarginAmount = q.Subtotal * Margin / (1 - Margin)
	q.Total = q.Subtotal + q.MarginAmount

	if sqft := squareFeet(session.Draft.Value(intake.FieldScopeDescription)); sqft > 0 {
		q.SquareFeet = sqft
		if q.Total > 0 {
			q.PricePerSqFt = q.Total / sqft
		}
	}

	return q
}

// squareFeet derives the footprint from dimensions mentioned in the scope,
// like "12x16 deck". Returns 0 when no dimensions are present.
func squareFeet(scope string) float64 {
	m := dimensionsRE.FindStringSubmatch(scope)
	if len(m) != 3 {
		return 0
	}
	w, err1 := strconv.ParseFloat(m[1], 64)
	d, err2 := strconv.ParseFloat(strings.TrimSpace(m[2]), 64)
	if err1 != nil || err2 != nil {
		return 0
	}
	return w * d
}
