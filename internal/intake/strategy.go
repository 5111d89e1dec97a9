package intake

import (
	"context"
	"errors"
)

// extractionStrategy is one rung of the extraction cascade. The engine runs
// strategies in order and stops at the first success; a nil map with a nil
// error is treated the same as errNoExtraction.
type extractionStrategy interface {
	Name() string
	Extract(ctx context.Context, input string, draft Draft, currentField string) (map[string]string, error)
}

// llmStrategy delegates to the completion-backed field extractor.
type llmStrategy struct {
	extractor *FieldExtractor
}

func (s llmStrategy) Name() string { return "llm" }

func (s llmStrategy) Extract(ctx context.Context, input string, draft Draft, _ string) (map[string]string, error) {
	return s.extractor.Extract(ctx, input, draft)
}

// heuristicStrategy applies the deterministic format detectors scoped to the
// field being asked about.
type heuristicStrategy struct {
	fallback *FallbackExtractor
}

func (s heuristicStrategy) Name() string { return "heuristic" }

func (s heuristicStrategy) Extract(_ context.Context, input string, _ Draft, currentField string) (map[string]string, error) {
	if fields := s.fallback.ExtractScoped(input, currentField); fields != nil {
		return fields, nil
	}
	return nil, errNoExtraction
}

// rawAssignStrategy assigns the whole input to the current field.
type rawAssignStrategy struct {
	fallback *FallbackExtractor
}

func (s rawAssignStrategy) Name() string { return "raw" }

func (s rawAssignStrategy) Extract(_ context.Context, input string, _ Draft, currentField string) (map[string]string, error) {
	if fields := s.fallback.ExtractRaw(input, currentField); fields != nil {
		return fields, nil
	}
	return nil, errNoExtraction
}

// runStrategies applies the cascade in order, returning the first successful
// extraction along with the name of the strategy that produced it.
func runStrategies(ctx context.Context, strategies []extractionStrategy, input string, draft Draft, currentField string, observe func(strategy, outcome string)) (map[string]string, string) {
	for _, s := range strategies {
		fields, err := s.Extract(ctx, input, draft, currentField)
		if err != nil {
			if observe != nil {
				outcome := "failure"
				if errors.Is(err, errNoExtraction) {
					outcome = "miss"
				}
				observe(s.Name(), outcome)
			}
			continue
		}
		if len(fields) == 0 {
			if observe != nil {
				observe(s.Name(), "miss")
			}
			continue
		}
		if observe != nil {
			observe(s.Name(), "ok")
		}
		return fields, s.Name()
	}
	return nil, ""
}
