package rules

import (
	"context"
	"sync"

	"github.com/dvloznov/expense-audit/internal/logger"
	"github.com/dvloznov/expense-audit/internal/transaction"
)

// Evaluator is one named policy check. Checks are pure functions over the
// transaction snapshot and share no state, so the engine is free to run
// them concurrently.
type Evaluator struct {
	Name  string
	Check func(Config, []transaction.Transaction) []Violation
}

// Engine runs the policy evaluators over a transaction snapshot.
type Engine struct {
	cfg        Config
	evaluators []Evaluator
}

// NewEngine builds an engine with the standard evaluator list. The list
// order fixes the concatenation order of findings, which keeps runs over
// the same input byte-for-byte reproducible.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg: cfg,
		evaluators: []Evaluator{
			{Name: "prohibited-item", Check: CheckProhibitedItems},
			{Name: "unauthorized-amount", Check: CheckUnauthorizedAmounts},
			{Name: "smurfing", Check: CheckSmurfing},
			{Name: "restricted-location", Check: CheckRestrictedLocations},
			{Name: "suspicious-category", Check: CheckSuspiciousCategories},
		},
	}
}

// Evaluate runs every evaluator concurrently and concatenates their
// findings in evaluator order.
func (e *Engine) Evaluate(ctx context.Context, txs []transaction.Transaction) []Violation {
	log := logger.FromContext(ctx)

	results := make([][]Violation, len(e.evaluators))
	var wg sync.WaitGroup
	for i, ev := range e.evaluators {
		wg.Add(1)
		go func(slot int, ev Evaluator) {
			defer wg.Done()
			results[slot] = ev.Check(e.cfg, txs)
		}(i, ev)
	}
	wg.Wait()

	var violations []Violation
	for i, ev := range e.evaluators {
		log.Debug().Str("evaluator", ev.Name).Int("violations", len(results[i])).Msg("Evaluator finished")
		violations = append(violations, results[i]...)
	}
	log.Info().Int("transactions", len(txs)).Int("violations", len(violations)).Msg("Rule evaluation completed")
	return violations
}
