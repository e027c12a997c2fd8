// Package llm is the boundary to the text-completion service the audit
// agents consult for judgment calls no deterministic rule can express.
package llm

import "context"

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// Client sends completion requests to a language model.
// This interface enables mocking the model in agent tests.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
