package agents

import (
	"fmt"
	"sort"
	"strings"
)

// Rendering bounds for the agent reports.
const (
	reportWidth = 70

	// conspiracyHighFloor and conspiracyMediumFloor split conspiracy
	// findings into high, medium and low severity bands.
	conspiracyHighFloor   = 7
	conspiracyMediumFloor = 4

	// contextualHighFloor matches the audit report's high-severity floor.
	contextualHighFloor = 8

	// topEvidence bounds how many high-severity emails the conspiracy
	// report details; topCases bounds the contextual case listing.
	topEvidence = 5
	topCases    = 10

	// reportEvidenceLimit truncates evidence lines in the contextual report.
	reportEvidenceLimit = 100
)

// RenderConspiracyReport summarizes one conspiracy sweep for terminal
// display. findings covers every analyzed email, flagged or not.
func RenderConspiracyReport(findings []ConspiracyFinding) string {
	var b strings.Builder
	writeBanner(&b, "CONSPIRACY INVESTIGATION REPORT")

	var suspicious []ConspiracyFinding
	for _, f := range findings {
		if f.Suspicious {
			suspicious = append(suspicious, f)
		}
	}

	if len(suspicious) == 0 {
		b.WriteString("STATUS: NO CONSPIRACY DETECTED\n\n")
		fmt.Fprintf(&b, "Reviewed %d relevant email(s) without finding evidence of a plot\nagainst the person of interest.\n\n", len(findings))
		b.WriteString("Recommendation: no action required.\n")
		return b.String()
	}

	var high []ConspiracyFinding
	medium, low := 0, 0
	for _, f := range suspicious {
		switch {
		case f.Severity >= conspiracyHighFloor:
			high = append(high, f)
		case f.Severity >= conspiracyMediumFloor:
			medium++
		default:
			low++
		}
	}

	b.WriteString("STATUS: SUSPICIOUS ACTIVITY DETECTED\n\n")
	b.WriteString("STATISTICS:\n")
	fmt.Fprintf(&b, "  Emails analyzed: %d\n", len(findings))
	fmt.Fprintf(&b, "  Suspicious emails: %d\n", len(suspicious))
	fmt.Fprintf(&b, "  High severity (%d-10): %d\n", conspiracyHighFloor, len(high))
	fmt.Fprintf(&b, "  Medium severity (%d-%d): %d\n", conspiracyMediumFloor, conspiracyHighFloor-1, medium)
	fmt.Fprintf(&b, "  Low severity (1-%d): %d\n\n", conspiracyMediumFloor-1, low)

	if len(high) > 0 {
		b.WriteString("HIGH SEVERITY EVIDENCE:\n")
		b.WriteString(strings.Repeat("─", reportWidth) + "\n")
		if len(high) > topEvidence {
			high = high[:topEvidence]
		}
		for _, f := range high {
			fmt.Fprintf(&b, "\nFrom: %s\n", f.Email.From)
			fmt.Fprintf(&b, "To: %s\n", f.Email.To)
			fmt.Fprintf(&b, "Date: %s\n", f.Email.Date)
			fmt.Fprintf(&b, "Subject: %s\n", f.Email.Subject)
			fmt.Fprintf(&b, "Severity: %d/10\n", f.Severity)
			fmt.Fprintf(&b, "Analysis: %s\n", f.Reasoning)
			if len(f.EvidenceQuotes) > 0 {
				quotes := f.EvidenceQuotes
				if len(quotes) > 2 {
					quotes = quotes[:2]
				}
				fmt.Fprintf(&b, "Evidence: %s\n", strings.Join(quotes, ", "))
			}
			b.WriteString(strings.Repeat("─", reportWidth) + "\n")
		}
	}

	b.WriteString("\nCONCLUSION:\n")
	if len(high) > 0 {
		b.WriteString("  Evidence suggests coordinated behavior against the person of interest.\n")
		b.WriteString("  Recommendation: escalate to corporate HR.\n")
	} else {
		b.WriteString("  Suspicious behavior detected; continue monitoring.\n")
	}
	return b.String()
}

// RenderContextualReport summarizes one contextual fraud sweep. findings
// holds flagged cases only; the analyzed totals come from the caller.
func RenderContextualReport(findings []ContextualFinding, emails, transactions int) string {
	var b strings.Builder
	writeBanner(&b, "CONTEXTUAL FRAUD AUDIT REPORT")

	if len(findings) == 0 {
		b.WriteString("STATUS: NO CONTEXTUAL FRAUD DETECTED\n\n")
		fmt.Fprintf(&b, "Reviewed %d email(s) against %d ledger transaction(s) without\nfinding a coordinated fraud pattern.\n\n", emails, transactions)
		b.WriteString("Recommendation: no action required.\n")
		return b.String()
	}

	high := 0
	counts := make(map[string]int)
	var order []string
	for _, f := range findings {
		if counts[f.Type] == 0 {
			order = append(order, f.Type)
		}
		counts[f.Type]++
		if f.Severity >= contextualHighFloor {
			high++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	b.WriteString("STATUS: CONTEXTUAL FRAUD DETECTED\n\n")
	b.WriteString("STATISTICS:\n")
	fmt.Fprintf(&b, "  Emails analyzed: %d\n", emails)
	fmt.Fprintf(&b, "  Transactions analyzed: %d\n", transactions)
	fmt.Fprintf(&b, "  Contextual findings: %d\n", len(findings))
	fmt.Fprintf(&b, "  High severity (>= %d): %d\n\n", contextualHighFloor, high)

	b.WriteString("FINDINGS BY TYPE:\n")
	for _, t := range order {
		fmt.Fprintf(&b, "  - %s: %d case(s)\n", t, counts[t])
	}
	b.WriteString("\n" + strings.Repeat("─", reportWidth) + "\n\n")

	fmt.Fprintf(&b, "TOP %d MOST SEVERE CASES:\n\n", topCases)
	top := append([]ContextualFinding(nil), findings...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Severity > top[j].Severity })
	if len(top) > topCases {
		top = top[:topCases]
	}
	for i, f := range top {
		fmt.Fprintf(&b, "[%d] %s - Severity: %d/10\n", i+1, f.Type, f.Severity)
		fmt.Fprintf(&b, "    From: %s\n", f.Email.From)
		fmt.Fprintf(&b, "    To: %s\n", f.Email.To)
		fmt.Fprintf(&b, "    Subject: %s\n", f.Email.Subject)
		fmt.Fprintf(&b, "    Reason: %s\n", f.Reason)
		fmt.Fprintf(&b, "    Evidence: %s\n", truncate(f.Evidence, reportEvidenceLimit))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", reportWidth) + "\n\n")
	b.WriteString("CONCLUSION:\n")
	fmt.Fprintf(&b, "  %d contextual fraud case(s) need deeper investigation.\n", len(findings))
	if high > 0 {
		fmt.Fprintf(&b, "  %d high-severity case(s) may call for legal review.\n", high)
	}
	return b.String()
}

func writeBanner(b *strings.Builder, title string) {
	line := strings.Repeat("═", reportWidth-2)
	b.WriteString("╔" + line + "╗\n")
	b.WriteString("║" + centerTitle(title, reportWidth-2) + "║\n")
	b.WriteString("╚" + line + "╝\n\n")
}

func centerTitle(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
