package rules

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Type identifies the policy rule a violation was raised under.
type Type string

const (
	TypeProhibitedItem     Type = "PROHIBITED_ITEM"
	TypeUnauthorizedAmount Type = "UNAUTHORIZED_AMOUNT"
	TypeSmurfing           Type = "SMURFING"
	TypeRestrictedLocation Type = "RESTRICTED_LOCATION"
	TypeSuspiciousCategory Type = "SUSPICIOUS_CATEGORY"
)

// Fixed severities per rule on the 0-10 scale used for ranking.
const (
	SeverityProhibitedItem     = 9
	SeverityUnauthorizedAmount = 7
	SeveritySmurfing           = 10
	SeverityRestrictedLocation = 6
	SeveritySuspiciousCategory = 7
)

// Policy clause labels as printed in the compliance handbook.
const (
	RuleProhibitedItem     = "Seção 3 - Lista Negra de Itens"
	RuleUnauthorizedAmount = "Seção 1.3 - Grandes Despesas"
	RuleSmurfing           = "Seção 1.3 - Proibição de Smurfing"
	RuleRestrictedLocation = "Seção 2.1 - Locais Restritos"
	RuleSuspiciousCategory = "Seção 3.2 - Armamento e Defesa"
)

// Violation is one flagged finding. Smurfing findings reference a pair of
// transactions and carry their combined amount and joined descriptions;
// every other rule references exactly one transaction.
type Violation struct {
	TransactionIDs []string
	Employee       string
	Date           civil.Date
	Amount         decimal.Decimal
	Description    string
	Type           Type
	Severity       int
	Rule           string
	Reason         string
	Evidence       string

	// Similarity is the description overlap of a smurfing pair on a 0-1
	// scale. Zero for every other rule.
	Similarity float64
}

// IdentityKey merges findings that refer to the same transaction or pair.
// Pair keys are order independent.
func (v Violation) IdentityKey() string {
	ids := append([]string(nil), v.TransactionIDs...)
	sort.Strings(ids)
	return strings.Join(ids, "+")
}

// IsPair reports whether the finding references a transaction pair.
func (v Violation) IsPair() bool {
	return len(v.TransactionIDs) == 2
}
