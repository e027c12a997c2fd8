package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/expense-audit/internal/logger"
)

// DefaultAttempts bounds how many times a malformed judgment is retried
// before the conservative fallback applies.
const DefaultAttempts = 2

// Classifier turns free-form model output into validated judgments.
type Classifier struct {
	client   Client
	attempts int
}

// NewClassifier wraps a model client. attempts <= 0 selects
// DefaultAttempts.
func NewClassifier(client Client, attempts int) *Classifier {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Classifier{client: client, attempts: attempts}
}

// Classify sends the request and parses the response as a JSON object
// carrying every required key. Failed calls and malformed responses are
// retried up to the attempt bound; after that the judgment comes back
// empty and marked degraded rather than as an error, and the audit treats
// the case as not flagged.
func (c *Classifier) Classify(ctx context.Context, req Request, requiredKeys []string) Judgment {
	log := logger.FromContext(ctx)

	for attempt := 1; attempt <= c.attempts; attempt++ {
		raw, err := c.client.Complete(ctx, req)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Model call failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}

		fields, err := parseJudgment(raw, requiredKeys)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Model returned malformed judgment")
			continue
		}
		return Judgment{Fields: fields}
	}

	log.Warn().Int("attempts", c.attempts).Msg("Judgment degraded to conservative default")
	return Judgment{Degraded: true}
}

// parseJudgment decodes a model response and checks the contract keys.
func parseJudgment(raw string, requiredKeys []string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &fields); err != nil {
		return nil, fmt.Errorf("parseJudgment: unmarshal JSON: %w", err)
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("parseJudgment: missing required key %q", key)
		}
	}
	return fields, nil
}
