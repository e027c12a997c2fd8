// Package audit wires the rule engine, the deduplicator and the report
// builder into the single entry point callers run.
package audit

import (
	"context"

	"github.com/dvloznov/expense-audit/internal/logger"
	"github.com/dvloznov/expense-audit/internal/report"
	"github.com/dvloznov/expense-audit/internal/rules"
	"github.com/dvloznov/expense-audit/internal/transaction"
)

// Auditor runs full audits over transaction snapshots.
type Auditor struct {
	engine *rules.Engine
}

// New builds an auditor for one policy configuration.
func New(cfg rules.Config) *Auditor {
	return &Auditor{engine: rules.NewEngine(cfg)}
}

// Evaluate runs every policy check over the snapshot, reduces overlapping
// findings to one per transaction (or pair), and summarizes the survivors.
// An empty snapshot is a valid input and yields a no-violations report.
func (a *Auditor) Evaluate(ctx context.Context, txs []transaction.Transaction) ([]rules.Violation, report.Report) {
	log := logger.FromContext(ctx)

	raw := a.engine.Evaluate(ctx, txs)
	violations := rules.Deduplicate(raw)
	if merged := len(raw) - len(violations); merged > 0 {
		log.Debug().Int("merged", merged).Msg("Overlapping findings merged")
	}

	rep := report.Build(len(txs), violations)
	log.Info().
		Str("run_id", rep.RunID).
		Int("transactions", rep.TransactionCount).
		Int("violations", rep.ViolationCount).
		Int("high_severity", rep.HighSeverity).
		Msg("Audit completed")
	return violations, rep
}
