package transaction

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/expense-audit/internal/logger"
)

// Ledger export column names. The export comes from the finance system and
// keeps its original Portuguese headers.
const (
	ColumnID          = "id_transacao"
	ColumnEmployee    = "funcionario"
	ColumnDate        = "data"
	ColumnAmount      = "valor"
	ColumnDescription = "descricao"
	ColumnCategory    = "categoria" // optional
)

// requiredColumns lists the headers every export must carry.
var requiredColumns = []string{ColumnID, ColumnEmployee, ColumnDate, ColumnAmount, ColumnDescription}

// dateFormats are tried in order when parsing the date column.
var dateFormats = []string{"2006-01-02", "2006-01-02 15:04:05", "02/01/2006"}

// SchemaError reports an export that is missing required columns. It is
// fatal: analysis never proceeds over a partial schema.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("transaction export is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// LoadStats counts how many rows survived parsing.
type LoadStats struct {
	Parsed  int
	Dropped int
}

// LoadFile reads a ledger export from disk.
func LoadFile(ctx context.Context, path string) ([]Transaction, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("LoadFile: %w", err)
	}
	defer f.Close()

	txs, stats, err := Load(ctx, f)
	if err != nil {
		return nil, stats, fmt.Errorf("LoadFile: %s: %w", path, err)
	}
	return txs, stats, nil
}

// Load parses a ledger export. Rows whose amount or date cannot be parsed
// are dropped and counted; everything else comes back in input order.
func Load(ctx context.Context, r io.Reader) ([]Transaction, LoadStats, error) {
	log := logger.FromContext(ctx)

	reader := csv.NewReader(bufio.NewReader(r))
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, LoadStats{}, &SchemaError{Missing: append([]string(nil), requiredColumns...)}
	}
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("Load: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, LoadStats{}, &SchemaError{Missing: missing}
	}

	categoryIdx, hasCategory := index[ColumnCategory]

	var (
		txs   []Transaction
		stats LoadStats
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("Load: line %d: %w", line, err)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(field(record, index[ColumnAmount])))
		if err != nil {
			stats.Dropped++
			log.Debug().Int("line", line).Str("column", ColumnAmount).Msg("Dropping row with unparsable amount")
			continue
		}

		date, err := parseDate(field(record, index[ColumnDate]))
		if err != nil {
			stats.Dropped++
			log.Debug().Int("line", line).Str("column", ColumnDate).Msg("Dropping row with unparsable date")
			continue
		}

		tx := Transaction{
			ID:          strings.TrimSpace(field(record, index[ColumnID])),
			Employee:    strings.TrimSpace(field(record, index[ColumnEmployee])),
			Date:        date,
			Amount:      amount,
			Description: strings.TrimSpace(field(record, index[ColumnDescription])),
		}
		if hasCategory {
			tx.Category = strings.TrimSpace(field(record, categoryIdx))
		}
		txs = append(txs, tx)
		stats.Parsed++
	}

	log.Info().Int("parsed", stats.Parsed).Int("dropped", stats.Dropped).Msg("Transaction export loaded")
	return txs, stats, nil
}

// field guards against ragged rows shorter than the header.
func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseDate(raw string) (civil.Date, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date %q", raw)
}
