package intake

import (
	"context"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

// FallbackCompletionClient wraps a primary completion provider with a
// secondary one. If the primary fails the request is retried against the
// secondary before the error is surfaced.
type FallbackCompletionClient struct {
	primary   CompletionClient
	secondary CompletionClient
	logger    *logging.Logger
}

// NewFallbackCompletionClient builds the wrapper. Passing a nil secondary
// degrades to primary-only behavior.
func NewFallbackCompletionClient(primary, secondary CompletionClient, logger *logging.Logger) *FallbackCompletionClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackCompletionClient{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Complete tries the primary provider, then the secondary.
func (c *FallbackCompletionClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary completion provider failed",
		"error", err.Error(),
		"secondary_available", c.secondary != nil,
	)

	if c.secondary == nil {
		return CompletionResponse{}, err
	}

	secondaryResp, secondaryErr := c.secondary.Complete(ctx, req)
	if secondaryErr != nil {
		c.logger.Error("secondary completion provider also failed",
			"primary_error", err.Error(),
			"secondary_error", secondaryErr.Error(),
		)
		return CompletionResponse{}, secondaryErr
	}

	c.logger.Info("secondary completion provider succeeded after primary failure")
	return secondaryResp, nil
}
