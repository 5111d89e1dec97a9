package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

// ---------- canonical project types ----------

// projectTypeAliases maps customer phrasings to canonical project types.
// Longer phrases first so they win over their substrings.
var projectTypeAliases = []struct {
	pattern string
	name    string
}{
	{"deck replacement", "deck replacement"},
	{"replace my deck", "deck replacement"},
	{"new deck", "deck construction"},
	{"build a deck", "deck construction"},
	{"deck build", "deck construction"},
	{"composite deck", "deck construction"},
	{"deck", "deck construction"},
	{"pergola", "pergola construction"},
	{"gazebo", "pergola construction"},
	{"fence", "fence installation"},
	{"fencing", "fence installation"},
	{"privacy screen", "fence installation"},
	{"paver patio", "patio installation"},
	{"patio", "patio installation"},
	{"kitchen remodel", "kitchen remodel"},
	{"kitchen reno", "kitchen remodel"},
	{"bathroom remodel", "bathroom remodel"},
	{"bath remodel", "bathroom remodel"},
	{"basement finish", "basement finishing"},
	{"finish my basement", "basement finishing"},
	{"addition", "home addition"},
	{"remodel", "remodel"},
	{"renovation", "remodel"},
	{"roof", "roofing"},
	{"siding", "siding"},
	{"retaining wall", "retaining wall"},
	{"stairs", "exterior stairs"},
	{"railing", "railing installation"},
}

// canonicalProjectType collapses a free-form project description to a
// canonical type, or returns "" when nothing matches.
func canonicalProjectType(text string) string {
	lower := strings.ToLower(text)
	for _, alias := range projectTypeAliases {
		if strings.Contains(lower, alias.pattern) {
			return alias.name
		}
	}
	return ""
}

// ---------- completion-backed field extraction ----------

const extractionPromptHeader = `You are extracting quote fields from one turn of a contractor intake conversation.

Known so far:
%s

Collectible fields (name: meaning):
- customerName: the customer's full name
- customerEmail: the customer's email address
- customerPhone: the customer's phone number
- projectType: the kind of project (deck, fence, remodel, ...)
- location: where the work happens (address or spot on the property)
- scopeDescription: dimensions, materials, and scope details
- budget: the customer's budget
- timeline: when they want the work done

Extract EVERY field the message mentions, not just the one being asked about.
Do not invent values. Do not repeat fields already known unless the message
restates them.

User message: %s

Respond with JSON only: {"fields": {"<name>": "<value>", ...}}`

// FieldExtractor asks the completion provider to pull every mentioned field
// out of a turn and normalizes known variants into canonical values.
type FieldExtractor struct {
	client CompletionClient
	model  string
	logger *logging.Logger
}

func NewFieldExtractor(client CompletionClient, model string, logger *logging.Logger) *FieldExtractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &FieldExtractor{client: client, model: model, logger: logger}
}

// Extract returns the fields mentioned in input. A provider failure or a
// malformed payload comes back as an error for the strategy chain to handle.
func (e *FieldExtractor) Extract(ctx context.Context, input string, draft Draft) (map[string]string, error) {
	if e == nil || e.client == nil {
		return nil, ErrPipelineUnavailable
	}

	known, _ := json.Marshal(draft.Fields)
	prompt := fmt.Sprintf(extractionPromptHeader, string(known), input)

	resp, err := e.client.Complete(ctx, CompletionRequest{
		Model:     e.model,
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens: 300,
	})
	if err != nil {
		return nil, fmt.Errorf("intake: extraction completion failed: %w", err)
	}

	var decoded struct {
		Fields map[string]string `json:"fields"`
	}
	if err := decodeStrict(resp.Text, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Fields) == 0 {
		return nil, errNoExtraction
	}

	return normalizeExtracted(decoded.Fields), nil
}

// normalizeExtracted trims values and collapses project types to canonical
// names. Empty values are dropped.
func normalizeExtracted(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for name, value := range fields {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if name == FieldProjectType {
			if canonical := canonicalProjectType(value); canonical != "" {
				value = canonical
			}
		}
		out[name] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ---------- confirmation re-extraction ----------

var dimensionRE = regexp.MustCompile(`(?i)(\d+\s*(?:x|×|by)\s*\d+)\s*(?:ft|foot|feet)?\s*([a-z]+)?`)

// extractFromAssistantQuestion re-derives the values a confirmation turn is
// affirming from the question the assistant just asked. "Yes" confirms
// whatever the question asserted, never the literal word.
func extractFromAssistantQuestion(question string) map[string]string {
	if strings.TrimSpace(question) == "" {
		return nil
	}
	out := make(map[string]string)

	if pt := canonicalProjectType(question); pt != "" {
		out[FieldProjectType] = pt
	}
	if m := dimensionRE.FindStringSubmatch(question); len(m) >= 2 {
		scope := strings.ReplaceAll(strings.ToLower(m[1]), " ", "")
		scope = strings.ReplaceAll(scope, "×", "x")
		scope = strings.ReplaceAll(scope, "by", "x")
		if subject := m[2]; subject != "" {
			scope += " " + strings.ToLower(subject)
		} else if pt, ok := out[FieldProjectType]; ok {
			scope += " " + pt
		}
		out[FieldScopeDescription] = scope
	}
	if email := emailRE.FindString(question); email != "" {
		out[FieldCustomerEmail] = email
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// ---------- correction parsing ----------

// correction is the parsed form of a MODIFY turn.
type correction struct {
	Field string
	Value string
}

var (
	changeToRE   = regexp.MustCompile(`(?i)(?:change|update|set|switch)\s+(?:the\s+|my\s+)?([a-z ]+?)\s+to\s+(.+)$`)
	actuallyIsRE = regexp.MustCompile(`(?i)actually,?\s+(?:the\s+|my\s+)?([a-z ]+?)\s+(?:is|should be)\s+(.+)$`)
	actuallyRE   = regexp.MustCompile(`(?i)^actually,?\s+(?:it'?s\s+)?(.+)$`)
)

// correctionTargets maps the cue's target noun to a draft key.
var correctionTargets = map[string]string{
	"name":          FieldCustomerName,
	"customer name": FieldCustomerName,
	"email":         FieldCustomerEmail,
	"email address": FieldCustomerEmail,
	"phone":         FieldCustomerPhone,
	"phone number":  FieldCustomerPhone,
	"number":        FieldCustomerPhone,
	"project":       FieldProjectType,
	"project type":  FieldProjectType,
	"type":          FieldProjectType,
	"location":      FieldLocation,
	"address":       FieldLocation,
	"site":          FieldLocation,
	"scope":         FieldScopeDescription,
	"description":   FieldScopeDescription,
	"budget":        FieldBudget,
	"price":         FieldBudget,
	"timeline":      FieldTimeline,
	"schedule":      FieldTimeline,
	"date":          FieldTimeline,
}

// parseCorrection recognizes explicit correction cues and infers which draft
// key they target from the cue's noun. Returns nil when the input carries no
// correction.
func parseCorrection(input string) *correction {
	trimmed := strings.TrimSpace(input)

	for _, re := range []*regexp.Regexp{changeToRE, actuallyIsRE} {
		if m := re.FindStringSubmatch(trimmed); len(m) == 3 {
			noun := strings.TrimSpace(strings.ToLower(m[1]))
			if field, ok := correctionTargets[noun]; ok {
				return &correction{Field: field, Value: cleanCorrectionValue(field, m[2])}
			}
		}
	}

	// "actually, jane@x.com" style: no target noun, infer from the value.
	if m := actuallyRE.FindStringSubmatch(trimmed); len(m) == 2 {
		value := strings.TrimSpace(m[1])
		if email := emailRE.FindString(value); email != "" {
			return &correction{Field: FieldCustomerEmail, Value: email}
		}
		if phone := phoneRE.FindString(value); phone != "" {
			return &correction{Field: FieldCustomerPhone, Value: strings.TrimSpace(phone)}
		}
		if pt := canonicalProjectType(value); pt != "" {
			return &correction{Field: FieldProjectType, Value: pt}
		}
	}

	return nil
}

func cleanCorrectionValue(field, raw string) string {
	value := strings.Trim(strings.TrimSpace(raw), ".,!?")
	switch field {
	case FieldCustomerEmail:
		if email := emailRE.FindString(value); email != "" {
			return email
		}
	case FieldProjectType:
		if pt := canonicalProjectType(value); pt != "" {
			return pt
		}
	}
	return value
}
