// Package report aggregates deduplicated audit findings into a run summary
// and renders it for compliance reviewers.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/expense-audit/internal/rules"
)

// HighSeverityFloor is the severity at which a finding counts as high
// severity in the summary statistics.
const HighSeverityFloor = 8

// TopN bounds how many findings the rendered report lists in detail.
const TopN = 10

// reportWidth is the character width of the rendered header and dividers.
const reportWidth = 70

// TypeCount is the number of findings raised under one violation type.
type TypeCount struct {
	Type  rules.Type
	Count int
}

// Report is the aggregate view of one audit run.
type Report struct {
	RunID            string
	GeneratedAt      time.Time
	TransactionCount int
	ViolationCount   int
	HighSeverity     int

	// CountsByType lists types in first-appearance order over the
	// deduplicated findings.
	CountsByType []TypeCount

	// Top holds up to TopN findings ordered by severity, highest first.
	// Findings of equal severity keep their input order.
	Top []rules.Violation
}

// Build summarizes a deduplicated finding set. The empty set is a valid
// outcome and produces a report with no type counts rather than an error.
func Build(transactionCount int, violations []rules.Violation) Report {
	r := Report{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		TransactionCount: transactionCount,
		ViolationCount:   len(violations),
	}

	counts := make(map[rules.Type]int)
	for _, v := range violations {
		if counts[v.Type] == 0 {
			r.CountsByType = append(r.CountsByType, TypeCount{Type: v.Type})
		}
		counts[v.Type]++
		if v.Severity >= HighSeverityFloor {
			r.HighSeverity++
		}
	}
	for i := range r.CountsByType {
		r.CountsByType[i].Count = counts[r.CountsByType[i].Type]
	}

	top := append([]rules.Violation(nil), violations...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Severity > top[j].Severity })
	if len(top) > TopN {
		top = top[:TopN]
	}
	r.Top = top

	return r
}

// Render formats the report for terminal display.
func (r Report) Render() string {
	var b strings.Builder

	line := strings.Repeat("═", reportWidth-2)
	b.WriteString("╔" + line + "╗\n")
	b.WriteString("║" + center("COMPLIANCE AUDIT REPORT - TRANSACTIONS", reportWidth-2) + "║\n")
	b.WriteString("╚" + line + "╝\n\n")

	if r.ViolationCount == 0 {
		b.WriteString("STATUS: NO VIOLATIONS DETECTED\n\n")
		fmt.Fprintf(&b, "All %d transactions comply with the compliance policy.\n", r.TransactionCount)
		b.WriteString("Recommendation: no action required.\n")
		return b.String()
	}

	b.WriteString("STATISTICS:\n")
	fmt.Fprintf(&b, "  Transactions analyzed: %d\n", r.TransactionCount)
	fmt.Fprintf(&b, "  Violations found: %d\n", r.ViolationCount)
	fmt.Fprintf(&b, "  High severity (>= %d): %d\n\n", HighSeverityFloor, r.HighSeverity)

	b.WriteString("VIOLATIONS BY TYPE:\n")
	for _, tc := range r.CountsByType {
		fmt.Fprintf(&b, "  - %s: %d case(s)\n", tc.Type, tc.Count)
	}
	b.WriteString("\n" + strings.Repeat("─", reportWidth) + "\n\n")

	fmt.Fprintf(&b, "TOP %d MOST SEVERE VIOLATIONS:\n\n", TopN)
	for i, v := range r.Top {
		fmt.Fprintf(&b, "[%d] %s - Severity: %d/10\n", i+1, v.Type, v.Severity)
		fmt.Fprintf(&b, "    Rule: %s\n", v.Rule)
		fmt.Fprintf(&b, "    Reason: %s\n", v.Reason)
		fmt.Fprintf(&b, "    Evidence: %s\n", v.Evidence)
		if v.IsPair() {
			fmt.Fprintf(&b, "    IDs: %s | Employee: %s\n", strings.Join(v.TransactionIDs, " + "), v.Employee)
			fmt.Fprintf(&b, "    Similarity: %.1f%%\n", v.Similarity*100)
		} else {
			fmt.Fprintf(&b, "    ID: %s | Employee: %s\n", strings.Join(v.TransactionIDs, " + "), v.Employee)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", reportWidth) + "\n\n")
	b.WriteString("CONCLUSION:\n")
	fmt.Fprintf(&b, "  %d violation(s) flagged for compliance review.\n", r.ViolationCount)
	if r.HighSeverity > 0 {
		fmt.Fprintf(&b, "  %d high-severity case(s) need immediate attention.\n", r.HighSeverity)
	}
	return b.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
