// Package extract turns free text describing an encounter into a
// structured interaction card via an external structured-output model.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meetlog/meetlog/internal/model"
)

// ErrNoInput is returned when the input text is empty or whitespace
// only. The model is never contacted in that case.
var ErrNoInput = errors.New("no input text provided")

// ModelClient is the single capability the engine requires from a model
// provider: accept free text and return a card conforming to the
// interaction card schema. Schema conformance (field types, mandatory
// who) is the provider's structured-output contract; the engine does
// not re-validate it.
type ModelClient interface {
	ExtractCard(ctx context.Context, text string) (*model.InteractionCard, error)
}

// Engine runs the extraction pipeline: one transformation stage, from
// awaiting-input straight to done, ending in either a populated card or
// a failure reason. There is no retry; a model failure is final for the
// request. An Engine holds no mutable state and is safe for concurrent
// use.
type Engine struct {
	client  ModelClient
	timeout time.Duration
	logger  *slog.Logger
}

// NewEngine creates an Engine. The timeout bounds each model
// invocation; zero disables the bound.
func NewEngine(client ModelClient, timeout time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// Extract produces an interaction card for the given text. Blank input
// fails immediately with ErrNoInput without a model call; any error
// from the model invocation (timeout, provider error, non-conforming
// output) is wrapped into a single failure reason.
func (e *Engine) Extract(ctx context.Context, text string) (*model.InteractionCard, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	card, err := e.client.ExtractCard(ctx, text)
	if err != nil {
		e.logger.Error("extraction model invocation failed",
			slog.String("error", err.Error()),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
		)
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}

	e.logger.Debug("interaction card extracted",
		slog.String("who", card.Who),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)

	return card, nil
}
