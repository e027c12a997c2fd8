package agents

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dvloznov/expense-audit/internal/logger"
)

// evidenceLimit truncates the evidence column so one verbose model answer
// cannot dominate the export.
const evidenceLimit = 200

var conspiracyHeader = []string{
	"de", "para", "data", "assunto",
	"is_suspicious", "severity", "reasoning", "evidence_quotes",
}

// WriteConspiracyCSV writes one row per analyzed email.
func WriteConspiracyCSV(w io.Writer, findings []ConspiracyFinding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(conspiracyHeader); err != nil {
		return fmt.Errorf("WriteConspiracyCSV: header: %w", err)
	}
	for _, f := range findings {
		record := []string{
			f.Email.From,
			f.Email.To,
			f.Email.Date,
			f.Email.Subject,
			strconv.FormatBool(f.Suspicious),
			strconv.Itoa(f.Severity),
			f.Reasoning,
			strings.Join(f.EvidenceQuotes, "; "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteConspiracyCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteConspiracyCSV: flush: %w", err)
	}
	return nil
}

// WriteConspiracyCSVFile writes the conspiracy sweep export to disk.
func WriteConspiracyCSVFile(ctx context.Context, path string, findings []ConspiracyFinding) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteConspiracyCSVFile: %w", err)
	}
	defer f.Close()

	if err := WriteConspiracyCSV(f, findings); err != nil {
		return fmt.Errorf("WriteConspiracyCSVFile: %s: %w", path, err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Int("findings", len(findings)).Msg("Conspiracy export written")
	return nil
}

var contextualHeader = []string{
	"de", "para", "assunto", "data",
	"violation_type", "severity", "reason", "evidence",
}

// WriteContextualCSV writes one row per flagged email.
func WriteContextualCSV(w io.Writer, findings []ContextualFinding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contextualHeader); err != nil {
		return fmt.Errorf("WriteContextualCSV: header: %w", err)
	}
	for _, f := range findings {
		record := []string{
			f.Email.From,
			f.Email.To,
			f.Email.Subject,
			f.Email.Date,
			f.Type,
			strconv.Itoa(f.Severity),
			f.Reason,
			truncate(f.Evidence, evidenceLimit),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteContextualCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteContextualCSV: flush: %w", err)
	}
	return nil
}

// WriteContextualCSVFile writes the contextual sweep export to disk.
func WriteContextualCSVFile(ctx context.Context, path string, findings []ContextualFinding) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteContextualCSVFile: %w", err)
	}
	defer f.Close()

	if err := WriteContextualCSV(f, findings); err != nil {
		return fmt.Errorf("WriteContextualCSVFile: %s: %w", path, err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Int("findings", len(findings)).Msg("Contextual export written")
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
