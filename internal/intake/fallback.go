package intake

import (
	"regexp"
	"strings"
)

var (
	emailRE = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRE = regexp.MustCompile(`\+?1?[\s.-]?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// FallbackExtractor is the pure, offline safety net used whenever the
// completion pipeline is unavailable or fails: regex detectors scoped to the
// field currently being asked about, then raw assignment of the whole input.
type FallbackExtractor struct{}

func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

// ExtractScoped applies the format detectors relevant to the current field.
// Returns nil when nothing matched.
func (x *FallbackExtractor) ExtractScoped(input, currentField string) map[string]string {
	switch currentField {
	case FieldCustomerEmail:
		if email := emailRE.FindString(input); email != "" {
			return map[string]string{FieldCustomerEmail: email}
		}
	case FieldCustomerPhone:
		if phone := phoneRE.FindString(input); phone != "" {
			return map[string]string{FieldCustomerPhone: strings.TrimSpace(phone)}
		}
	case FieldProjectType:
		if pt := canonicalProjectType(input); pt != "" {
			return map[string]string{FieldProjectType: pt}
		}
	}
	return nil
}

// ExtractRaw assigns the entire input to the current field. The last rung of
// the fallback cascade; never applied to the line-item pseudo-field.
func (x *FallbackExtractor) ExtractRaw(input, currentField string) map[string]string {
	value := strings.TrimSpace(input)
	if value == "" || currentField == "" || currentField == FieldLineItems {
		return nil
	}
	return map[string]string{currentField: value}
}
