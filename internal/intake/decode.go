package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONObject slices the first {...} block out of completion text.
// Providers routinely wrap JSON in prose or markdown fences.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// decodeStrict parses completion output into dst, rejecting unknown fields.
// Any failure yields errMalformedPayload so callers can route through the
// fallback strategy chain instead of aborting the turn.
func decodeStrict(text string, dst any) error {
	payload, ok := extractJSONObject(text)
	if !ok {
		return fmt.Errorf("%w: no JSON object in %q", errMalformedPayload, truncate(text, 80))
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
