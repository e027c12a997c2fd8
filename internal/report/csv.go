package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/expense-audit/internal/logger"
	"github.com/dvloznov/expense-audit/internal/rules"
)

// pairSeparator joins the two ids of a smurfing pair in the id column.
const pairSeparator = " + "

// csvHeader lays out the violations export. Evidence and similarity stay
// in the rendered report only.
var csvHeader = []string{
	"id_transacao", "funcionario", "data", "valor", "descricao",
	"violation_type", "severity", "rule", "reason",
}

// WriteCSV writes one row per finding.
func WriteCSV(w io.Writer, violations []rules.Violation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for _, v := range violations {
		record := []string{
			strings.Join(v.TransactionIDs, pairSeparator),
			v.Employee,
			v.Date.String(),
			v.Amount.StringFixed(2),
			v.Description,
			string(v.Type),
			strconv.Itoa(v.Severity),
			v.Rule,
			v.Reason,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}

// WriteCSVFile writes the violations export to disk.
func WriteCSVFile(ctx context.Context, path string, violations []rules.Violation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteCSVFile: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, violations); err != nil {
		return fmt.Errorf("WriteCSVFile: %s: %w", path, err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Int("violations", len(violations)).Msg("Violations export written")
	return nil
}

// ReadCSV parses a violations export back into findings. Fields the export
// does not serialize (evidence, similarity) come back zero valued.
func ReadCSV(r io.Reader) ([]rules.Violation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: read header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("ReadCSV: unexpected header column %d: got %q, want %q", i, header[i], want)
		}
	}

	var violations []rules.Violation
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: %w", line, err)
		}

		date, err := civil.ParseDate(record[2])
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: date: %w", line, err)
		}
		amount, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: amount: %w", line, err)
		}
		severity, err := strconv.Atoi(record[6])
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: severity: %w", line, err)
		}

		violations = append(violations, rules.Violation{
			TransactionIDs: strings.Split(record[0], pairSeparator),
			Employee:       record[1],
			Date:           date,
			Amount:         amount,
			Description:    record[4],
			Type:           rules.Type(record[5]),
			Severity:       severity,
			Rule:           record[7],
			Reason:         record[8],
		})
	}
	return violations, nil
}

// ReadCSVFile parses a violations export from disk.
func ReadCSVFile(ctx context.Context, path string) ([]rules.Violation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadCSVFile: %w", err)
	}
	defer f.Close()

	violations, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("ReadCSVFile: %s: %w", path, err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Int("violations", len(violations)).Msg("Violations export loaded")
	return violations, nil
}
