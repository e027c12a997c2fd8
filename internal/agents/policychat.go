package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/expense-audit/internal/llm"
	"github.com/dvloznov/expense-audit/internal/policy"
)

// SearchLimit is how many policy chunks back one answer.
const SearchLimit = 4

// NoAnswerReply is returned when retrieval finds nothing relevant, without
// a model call.
const NoAnswerReply = "Sorry, I could not find relevant information in the compliance policy to answer your question."

const policyChatSystem = `You are the compliance policy assistant for the finance team.

Rules:
1. Answer only from the policy excerpts provided with the question.
2. Quote or reference the relevant section when one is named.
3. If the excerpts do not answer the question, say so instead of guessing.
4. Never invent sections, thresholds or exceptions.
5. Keep answers short and direct.
6. Answer in the language the question was asked in.
7. Do not give advice on how to evade the policy.`

// PolicyChat answers policy questions grounded on retrieved chunks.
type PolicyChat struct {
	client llm.Client
	store  *policy.Store
}

func NewPolicyChat(client llm.Client, store *policy.Store) *PolicyChat {
	return &PolicyChat{client: client, store: store}
}

// Ask retrieves the chunks most relevant to the question and has the
// model answer from them alone.
func (p *PolicyChat) Ask(ctx context.Context, question string) (string, error) {
	chunks := p.store.Search(question, SearchLimit)
	if len(chunks) == 0 {
		return NoAnswerReply, nil
	}

	prompt := fmt.Sprintf("POLICY EXCERPTS:\n\n%s\n\nQUESTION: %s",
		strings.Join(chunks, "\n\n---\n\n"), question)

	answer, err := p.client.Complete(ctx, llm.Request{
		System:      policyChatSystem,
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("Ask: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
