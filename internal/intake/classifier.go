package intake

import (
	"context"
	"strings"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

// Intent is the four-way classification of a user turn.
type Intent string

const (
	IntentAnswer Intent = "answer"
	IntentModify Intent = "modify"
	IntentAsk    Intent = "ask"
	IntentIgnore Intent = "ignore"
)

// Classification carries the intent plus the deterministic sub-flags the
// shortcuts can establish without a completion round-trip.
type Classification struct {
	Intent       Intent
	Confirmation bool // bare "yes"/"correct" affirming the previous question
	Repeat       bool // "repeat that" / "say that again"
	Meta         bool // question about what information is still missing
}

// ---------- package-level compiled shortcut patterns ----------

var (
	confirmationPhrases = map[string]bool{
		"yes": true, "yep": true, "yeah": true, "yup": true, "correct": true,
		"right": true, "that's right": true, "thats right": true,
		"that's correct": true, "thats correct": true, "exactly": true,
		"sounds right": true, "sounds good": true, "looks right": true,
		"that is right": true, "that is correct": true, "sure is": true,
	}

	repeatPhrases = []string{
		"repeat that", "say that again", "what did you say", "come again",
		"can you repeat", "could you repeat", "one more time",
	}

	metaPhrases = []string{
		"what else do you need", "what else do you want", "what's left",
		"whats left", "what is left", "what's missing", "whats missing",
		"what do you still need", "what more do you need", "how much more",
		"anything else you need", "what remains", "what info do you need",
		"what information do you need", "how far along",
	}

	ignorePhrases = map[string]bool{
		"ok": true, "okay": true, "k": true, "cool": true, "thanks": true,
		"thank you": true, "lol": true, "haha": true, "hi": true, "hello": true,
		"hey": true, "hmm": true,
	}
)

func normalizeTurn(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	return strings.Trim(s, ".,!? ")
}

// classifyShortcut applies the deterministic patterns that must run before
// the completion classifier. Returns ok=false when nothing matched and the
// turn needs the model.
func classifyShortcut(input string) (Classification, bool) {
	norm := normalizeTurn(input)
	if norm == "" {
		return Classification{Intent: IntentIgnore}, true
	}

	if confirmationPhrases[norm] {
		return Classification{Intent: IntentAnswer, Confirmation: true}, true
	}
	for _, p := range repeatPhrases {
		if strings.Contains(norm, p) {
			return Classification{Intent: IntentAsk, Repeat: true}, true
		}
	}
	for _, p := range metaPhrases {
		if strings.Contains(norm, p) {
			return Classification{Intent: IntentAsk, Meta: true}, true
		}
	}
	if parsed := parseCorrection(input); parsed != nil {
		return Classification{Intent: IntentModify}, true
	}
	if ignorePhrases[norm] {
		return Classification{Intent: IntentIgnore}, true
	}
	return Classification{}, false
}

const classifierPrompt = `You are routing one turn of a quote-intake conversation for a construction contractor.

Classify the user's message into exactly ONE intent:
- answer: the message provides information for the quote (name, contact, project details, budget, dates)
- modify: the message corrects something previously provided
- ask: the message asks a question instead of answering
- ignore: small talk or chatter unrelated to the quote

The assistant's last question was: %q

User message: %q

Respond with JSON only: {"intent": "<answer|modify|ask|ignore>"}`

// IntentClassifier resolves a turn's intent, trying deterministic shortcuts
// first and the completion provider second.
type IntentClassifier struct {
	client CompletionClient
	model  string
	logger *logging.Logger
}

func NewIntentClassifier(client CompletionClient, model string, logger *logging.Logger) *IntentClassifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntentClassifier{client: client, model: model, logger: logger}
}

// Classify returns the turn's classification. Shortcut hits never reach the
// provider. Provider failures degrade to IntentAnswer so the extraction
// chain still runs; classification errors never abort a turn.
func (c *IntentClassifier) Classify(ctx context.Context, input, lastQuestion string) Classification {
	if cls, ok := classifyShortcut(input); ok {
		return cls
	}
	if c == nil || c.client == nil {
		return Classification{Intent: IntentAnswer}
	}

	prompt := strings.Replace(classifierPrompt, "%q", quote(lastQuestion), 1)
	prompt = strings.Replace(prompt, "%q", quote(input), 1)

	resp, err := c.client.Complete(ctx, CompletionRequest{
		Model:     c.model,
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens: 30,
	})
	if err != nil {
		c.logger.Warn("intent classification failed, assuming answer", "error", err)
		return Classification{Intent: IntentAnswer}
	}

	var decoded struct {
		Intent string `json:"intent"`
	}
	if err := decodeStrict(resp.Text, &decoded); err != nil {
		c.logger.Warn("intent classification returned malformed payload", "error", err)
		return Classification{Intent: IntentAnswer}
	}

	switch Intent(strings.ToLower(strings.TrimSpace(decoded.Intent))) {
	case IntentModify:
		return Classification{Intent: IntentModify}
	case IntentAsk:
		return Classification{Intent: IntentAsk}
	case IntentIgnore:
		return Classification{Intent: IntentIgnore}
	default:
		return Classification{Intent: IntentAnswer}
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
}
