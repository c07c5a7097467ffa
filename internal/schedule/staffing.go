package schedule

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Summary is the derived staffing projection for a shift. It is computed
// from the assignment counts alone and says nothing about workflow state:
// a fully staffed shift can still be cancelled, and the stored status field
// remains the only authority on the lifecycle.
type Summary struct {
	Assigned      int    `json:"assigned"`
	Required      int    `json:"required"`
	PercentFilled int    `json:"percent_filled"`
	FullyStaffed  bool   `json:"fully_staffed"`
	StillNeeded   int    `json:"still_needed"`
	FillLabel     string `json:"fill_label"`
}

var labelCaser = cases.Title(language.English)

// DisplayLabel renders a stored machine code such as a department or
// specialty ("icu_rn", "med-surg") as a human-readable title ("Icu Rn",
// "Med Surg"). Eligibility matching always compares the stored form; this is
// display only and never round-trips back into persistence.
func DisplayLabel(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	words := strings.NewReplacer("_", " ", "-", " ").Replace(code)
	return labelCaser.String(words)
}

// Staffing computes the fill projection for assigned workers against a
// required count. A non-positive required count yields 0 percent; that input
// is a validation error upstream and never reaches persistence.
func Staffing(assigned, required int) Summary {
	s := Summary{Assigned: assigned, Required: required}
	if required > 0 {
		s.PercentFilled = int(math.Round(100 * float64(assigned) / float64(required)))
	}
	s.FullyStaffed = required > 0 && assigned >= required
	if n := required - assigned; n > 0 {
		s.StillNeeded = n
	}

	switch {
	case s.FullyStaffed:
		s.FillLabel = labelCaser.String("fully staffed")
	case assigned > 0:
		s.FillLabel = labelCaser.String("partially staffed")
	default:
		s.FillLabel = labelCaser.String("unfilled")
	}
	return s
}
