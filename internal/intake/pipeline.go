package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/observability/metrics"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

// ContextSummary is the engine's view of where a session stands after a
// turn's extraction has been merged.
type ContextSummary struct {
	Known   map[string]string
	Missing []string
	Hints   []string
}

// Pipeline runs the per-turn language work: classify the turn, pull fields
// out of it, and phrase the next question. Every completion call is bounded
// and every failure degrades to a deterministic path, so the pipeline never
// blocks a turn.
type Pipeline struct {
	classifier *IntentClassifier
	strategies []extractionStrategy
	client     CompletionClient
	model      string
	timeout    time.Duration
	logger     *logging.Logger
	metrics    *metrics.IntakeMetrics
}

type PipelineOption func(*Pipeline)

func WithPipelineTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithPipelineMetrics(m *metrics.IntakeMetrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline wires the ordered extraction chain: completion-backed
// extraction first, scoped heuristics second, raw assignment last.
func NewPipeline(client CompletionClient, model string, logger *logging.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}
	fallback := NewFallbackExtractor()
	p := &Pipeline{
		classifier: NewIntentClassifier(client, model, logger),
		strategies: []extractionStrategy{
			llmStrategy{extractor: NewFieldExtractor(client, model, logger)},
			heuristicStrategy{fallback: fallback},
			rawAssignStrategy{fallback: fallback},
		},
		client:  client,
		model:   model,
		timeout: 15 * time.Second,
		logger:  logger.Component("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classify resolves the turn's intent. Deterministic shortcuts win; the
// completion provider breaks ties; failures degrade to answer.
func (p *Pipeline) Classify(ctx context.Context, input, lastQuestion string) Classification {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	cls := p.classifier.Classify(ctx, input, lastQuestion)
	p.metrics.ObserveCompletionLatency("classify", time.Since(start).Seconds())
	return cls
}

// Extract pulls field values out of a turn according to its classification.
// The returned map is nil when the turn yielded nothing usable; the name of
// the strategy that produced the values comes back for observability.
func (p *Pipeline) Extract(ctx context.Context, cls Classification, input string, draft Draft, currentField, lastQuestion string) (map[string]string, string) {
	switch cls.Intent {
	case IntentIgnore:
		return nil, "none"
	case IntentAsk:
		return nil, "none"
	case IntentModify:
		if corr := parseCorrection(input); corr != nil {
			return map[string]string{corr.Field: corr.Value}, "correction"
		}
	}

	if cls.Confirmation {
		if fields := extractFromAssistantQuestion(lastQuestion); len(fields) > 0 {
			p.metrics.ObserveExtraction("confirmation", "ok")
			return fields, "confirmation"
		}
		return nil, "none"
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	fields, strategy := runStrategies(ctx, p.strategies, input, draft, currentField, p.metrics.ObserveExtraction)
	p.metrics.ObserveCompletionLatency("extract", time.Since(start).Seconds())
	return fields, strategy
}

// Summarize snapshots the draft against the catalog for prompt context and
// meta answers.
func (p *Pipeline) Summarize(draft Draft, catalog *Catalog, hints []string) ContextSummary {
	known := make(map[string]string, len(draft.Fields))
	for name, value := range draft.Fields {
		known[name] = value
	}
	if len(draft.Items) > 0 {
		known[FieldLineItems] = fmt.Sprintf("%d items recorded", len(draft.Items))
	}
	return ContextSummary{
		Known:   known,
		Missing: catalog.MissingFields(draft),
		Hints:   hints,
	}
}

const questionPromptHeader = `You are a friendly assistant gathering quote details for a construction contractor.

Known so far:
%s

Photo notes from the customer, if any:
%s

Ask for exactly this next: %s

Phrase one short, conversational question asking only for that. Do not greet,
do not recap, do not ask about anything else. Respond with the question text
only.`

// NextQuestion phrases the catalog question for nextField. The completion
// provider gets one bounded attempt; anything else falls back to the catalog
// prompt verbatim.
func (p *Pipeline) NextQuestion(ctx context.Context, summary ContextSummary, nextField string, catalog *Catalog) string {
	prompt := catalog.PromptFor(nextField)
	if p == nil || p.client == nil {
		return prompt
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var known strings.Builder
	for name, value := range summary.Known {
		fmt.Fprintf(&known, "- %s: %s\n", name, value)
	}
	hints := strings.Join(summary.Hints, "; ")
	if hints == "" {
		hints = "none"
	}
	field, _ := catalog.Field(nextField)
	ask := nextField
	if field.Prompt != "" {
		ask = fmt.Sprintf("%s (%s)", nextField, field.Prompt)
	}

	start := time.Now()
	resp, err := p.client.Complete(ctx, CompletionRequest{
		Model:       p.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: fmt.Sprintf(questionPromptHeader, known.String(), hints, ask)}},
		MaxTokens:   120,
		Temperature: 0.4,
	})
	p.metrics.ObserveCompletionLatency("question", time.Since(start).Seconds())
	if err != nil {
		p.logger.Warn("question generation failed, using catalog prompt", "field", nextField, "error", err)
		return prompt
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" || len(text) > 300 {
		return prompt
	}
	return text
}
