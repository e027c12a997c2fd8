// Package transaction loads the corporate ledger exports that audit runs
// operate over.
package transaction

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one expense row from the corporate ledger export. Records
// are a read-only snapshot for a single analysis run; duplicates are allowed
// and kept. Reconciliation happens at the violation stage, never here.
type Transaction struct {
	ID          string
	Employee    string
	Date        civil.Date
	Amount      decimal.Decimal
	Description string
	Category    string // empty when the export has no category column or the cell is blank
}
