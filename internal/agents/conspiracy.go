// Package agents hosts the LLM-backed auditors that cover judgment calls
// the deterministic rules cannot express.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/expense-audit/internal/email"
	"github.com/dvloznov/expense-audit/internal/llm"
	"github.com/dvloznov/expense-audit/internal/logger"
)

// DefaultPersonOfInterest is the mailbox the conspiracy sweep follows.
const DefaultPersonOfInterest = "michael.scott@dundermifflin.com"

// DefaultAliases are names whose mention pulls an email into the sweep
// even when the person of interest is not a participant.
var DefaultAliases = []string{"toby", "flenderson"}

const conspiracySystem = `You are a corporate compliance analyst reviewing internal email for signs of expense fraud, collusion or policy evasion.

Judge only what the email itself supports. Respond with a single JSON object:
{"is_suspicious": boolean, "severity": integer 0-10, "reasoning": string, "evidence_quotes": [direct quotes from the email]}

Return only the JSON object, no Markdown, no commentary.`

var conspiracyKeys = []string{"is_suspicious", "severity", "reasoning"}

// ConspiracyFinding is the judgment for one analyzed email. A degraded
// finding means the model output never validated and the email was
// conservatively left unflagged.
type ConspiracyFinding struct {
	Email          email.Message
	Suspicious     bool
	Severity       int
	Reasoning      string
	EvidenceQuotes []string
	Degraded       bool
}

// Conspiracy sweeps a mail archive for messages involving a person of
// interest and asks the model to judge each one.
type Conspiracy struct {
	classifier *llm.Classifier
	person     string
	aliases    []string
}

// NewConspiracy builds the sweep. An empty person selects
// DefaultPersonOfInterest; nil aliases select DefaultAliases.
func NewConspiracy(client llm.Client, person string, aliases []string) *Conspiracy {
	if person == "" {
		person = DefaultPersonOfInterest
	}
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Conspiracy{
		classifier: llm.NewClassifier(client, llm.DefaultAttempts),
		person:     person,
		aliases:    aliases,
	}
}

// Analyze judges every archived email that involves the person of
// interest or mentions one of the aliases. One finding comes back per
// analyzed email, flagged or not.
func (c *Conspiracy) Analyze(ctx context.Context, messages []email.Message) []ConspiracyFinding {
	log := logger.FromContext(ctx)

	var findings []ConspiracyFinding
	for _, m := range messages {
		if !c.involves(m) {
			continue
		}

		req := llm.Request{
			System:      conspiracySystem,
			Prompt:      fmt.Sprintf("Analyze this email and return JSON:\n\n%s\n\nJSON:", m.Format()),
			Temperature: 0.1,
			MaxTokens:   1024,
		}
		j := c.classifier.Classify(ctx, req, conspiracyKeys)
		if j.Degraded {
			findings = append(findings, ConspiracyFinding{Email: m, Degraded: true})
			continue
		}
		findings = append(findings, ConspiracyFinding{
			Email:          m,
			Suspicious:     j.Bool("is_suspicious"),
			Severity:       j.Int("severity"),
			Reasoning:      j.Str("reasoning"),
			EvidenceQuotes: j.StrSlice("evidence_quotes"),
		})
	}

	suspicious := 0
	for _, f := range findings {
		if f.Suspicious {
			suspicious++
		}
	}
	log.Info().Int("analyzed", len(findings)).Int("suspicious", suspicious).Msg("Conspiracy sweep completed")
	return findings
}

// involves reports whether the email is from or to the person of interest
// or mentions an alias anywhere in its text.
func (c *Conspiracy) involves(m email.Message) bool {
	person := strings.ToLower(c.person)
	if strings.Contains(strings.ToLower(m.From), person) || strings.Contains(strings.ToLower(m.To), person) {
		return true
	}
	text := strings.ToLower(m.Subject + " " + m.Body)
	for _, alias := range c.aliases {
		if strings.Contains(text, alias) {
			return true
		}
	}
	return false
}
