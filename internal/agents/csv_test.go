package agents

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteConspiracyCSV(t *testing.T) {
	findings := []ConspiracyFinding{
		{
			Email: msg("michael.scott@dundermifflin.com", "dwight.schrute@dundermifflin.com",
				"festa, urgente", "2024-03-10", "body"),
			Suspicious:     true,
			Severity:       9,
			Reasoning:      "asks to split one purchase across receipts",
			EvidenceQuotes: []string{"Divide em duas notas", "Ninguém precisa saber"},
		},
	}

	var buf bytes.Buffer
	if err := WriteConspiracyCSV(&buf, findings); err != nil {
		t.Fatalf("WriteConspiracyCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading export back: %v", err)
	}
	if diff := cmp.Diff(conspiracyHeader, records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	want := []string{
		"michael.scott@dundermifflin.com",
		"dwight.schrute@dundermifflin.com",
		"2024-03-10",
		"festa, urgente",
		"true",
		"9",
		"asks to split one purchase across receipts",
		"Divide em duas notas; Ninguém precisa saber",
	}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteContextualCSVTruncatesEvidence(t *testing.T) {
	findings := []ContextualFinding{
		{
			Email: msg("kevin.malone@dundermifflin.com", "angela.martin@dundermifflin.com",
				"party", "2024-03-10", "body"),
			Type:     TypeCoordinatedFraud,
			Severity: 7,
			Reason:   "proposes splitting a purchase",
			Evidence: strings.Repeat("ã", evidenceLimit+50),
		},
	}

	var buf bytes.Buffer
	if err := WriteContextualCSV(&buf, findings); err != nil {
		t.Fatalf("WriteContextualCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading export back: %v", err)
	}
	evidence := records[1][7]
	if got := len([]rune(evidence)); got != evidenceLimit {
		t.Errorf("evidence length = %d runes, want %d", got, evidenceLimit)
	}
}
