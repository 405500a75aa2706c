package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tariff-backend/internal/llm"
	"tariff-backend/internal/plans"
	"tariff-backend/internal/shared/metrics"
	"tariff-backend/internal/shared/telemetry"
)

const (
	maxGenerationAttempts = 3
	retryBaseDelay        = 2 * time.Second
	retryMaxDelay         = 10 * time.Second
)

// Generator drives one generation call through the validate/retry loop.
// Validation failures of the generated payload retry with bounded backoff;
// transport, auth, quota and timeout failures never do, since repeating those
// is assumed unproductive.
type Generator struct {
	LLM llm.Client

	// sleep is injectable so tests can run the full retry path without real
	// delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGenerator constructs a Generator over the given client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{
		LLM:   client,
		sleep: sleepContext,
	}
}

// Generate produces a strictly validated analysis payload for the comparison,
// retrying validation failures up to the attempt limit.
func (g *Generator) Generate(ctx context.Context, typ ComparisonType, brands []string, rows []plans.PlanRow) (json.RawMessage, error) {
	prompt := BuildPrompt(typ, brands, rows)

	var lastValidation error
	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		metrics.IncGenerationAttempt()
		raw, err := g.LLM.Generate(ctx, llm.GenerateRequest{
			Prompt:           prompt,
			StructuredOutput: true,
		})
		if err != nil {
			metrics.IncGenerationFailed()
			return nil, &GenerationError{
				Type:     typ,
				Brands:   brands,
				Attempts: attempt,
				Class:    llm.ClassOf(err),
				Err:      err,
			}
		}

		if err := ValidateStrict(raw, typ); err == nil {
			return raw, nil
		} else {
			lastValidation = err
			telemetry.Warn("analyses.generate.invalid", map[string]any{
				"type":    string(typ),
				"attempt": attempt,
				"error":   err.Error(),
			})
		}

		if attempt < maxGenerationAttempts {
			if err := g.sleep(ctx, backoffDelay(attempt)); err != nil {
				return nil, &GenerationError{
					Type:     typ,
					Brands:   brands,
					Attempts: attempt,
					Class:    llm.ErrorTimeout,
					Err:      err,
				}
			}
		}
	}

	metrics.IncGenerationFailed()
	return nil, &GenerationError{
		Type:     typ,
		Brands:   brands,
		Attempts: maxGenerationAttempts,
		Err:      fmt.Errorf("%w: %v", ErrValidationExhausted, lastValidation),
	}
}

// IsValidationExhausted reports whether err is a generation failure caused by
// repeated invalid payloads rather than a transport-level error.
func IsValidationExhausted(err error) bool {
	return errors.Is(err, ErrValidationExhausted)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffDelay returns min(2s * 2^(attempt-1), 10s).
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}
