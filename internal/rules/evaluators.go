package rules

import (
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dvloznov/expense-audit/internal/transaction"
)

// CheckProhibitedItems flags purchases whose description mentions a
// deny-listed item. The first matching keyword wins, so each transaction
// yields at most one finding from this rule.
func CheckProhibitedItems(cfg Config, txs []transaction.Transaction) []Violation {
	var violations []Violation
	for _, tx := range txs {
		desc := strings.ToLower(tx.Description)
		for _, keyword := range cfg.ProhibitedKeywords {
			if strings.Contains(desc, keyword) {
				violations = append(violations, Violation{
					TransactionIDs: []string{tx.ID},
					Employee:       tx.Employee,
					Date:           tx.Date,
					Amount:         tx.Amount,
					Description:    tx.Description,
					Type:           TypeProhibitedItem,
					Severity:       SeverityProhibitedItem,
					Rule:           RuleProhibitedItem,
					Reason:         fmt.Sprintf("Prohibited item purchase detected: %q", keyword),
					Evidence:       fmt.Sprintf("Description: %s", tx.Description),
				})
				break
			}
		}
	}
	return violations
}

// CheckUnauthorizedAmounts flags purchases above the high-value limit
// whose description carries no approval marker.
func CheckUnauthorizedAmounts(cfg Config, txs []transaction.Transaction) []Violation {
	var violations []Violation
	for _, tx := range txs {
		if !tx.Amount.GreaterThan(cfg.HighValueLimit) {
			continue
		}
		if hasApprovalMarker(cfg, tx.Description) {
			continue
		}
		violations = append(violations, Violation{
			TransactionIDs: []string{tx.ID},
			Employee:       tx.Employee,
			Date:           tx.Date,
			Amount:         tx.Amount,
			Description:    tx.Description,
			Type:           TypeUnauthorizedAmount,
			Severity:       SeverityUnauthorizedAmount,
			Rule:           RuleUnauthorizedAmount,
			Reason:         fmt.Sprintf("Amount above $%s without Purchase Order evidence", cfg.HighValueLimit.String()),
			Evidence:       fmt.Sprintf("Amount: $%s", tx.Amount.StringFixed(2)),
		})
	}
	return violations
}

func hasApprovalMarker(cfg Config, description string) bool {
	desc := strings.ToLower(description)
	for _, marker := range cfg.ApprovalMarkers {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

// CheckSmurfing flags pairs of same-day purchases by one employee that
// look like a single payment split to stay under the approval limit. A
// pair is flagged when both amounts sit inside the split band, the
// combined amount crosses the high-value limit, and the description
// overlap exceeds the similarity threshold. Each unordered pair is
// reported at most once, though one transaction may appear in several
// distinct pairs.
func CheckSmurfing(cfg Config, txs []transaction.Transaction) []Violation {
	groups, employees := groupByEmployeeDay(txs)

	var violations []Violation
	seen := make(map[string]struct{})
	for _, employee := range employees {
		days := groups[employee]
		dates := make([]civil.Date, 0, len(days))
		for date := range days {
			dates = append(dates, date)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		for _, date := range dates {
			day := days[date]
			sort.SliceStable(day, func(i, j int) bool { return day[i].Description < day[j].Description })

			for i := 0; i < len(day); i++ {
				for j := i + 1; j < len(day); j++ {
					a, b := day[i], day[j]
					key := pairKey(a.ID, b.ID)
					if _, ok := seen[key]; ok {
						continue
					}
					if !inSplitBand(cfg, a.Amount) || !inSplitBand(cfg, b.Amount) {
						continue
					}
					total := a.Amount.Add(b.Amount)
					if !total.GreaterThan(cfg.HighValueLimit) {
						continue
					}
					similarity := jaccard(tokenSet(a.Description), tokenSet(b.Description))
					if similarity <= cfg.SimilarityThreshold {
						continue
					}
					seen[key] = struct{}{}
					violations = append(violations, Violation{
						TransactionIDs: []string{a.ID, b.ID},
						Employee:       employee,
						Date:           date,
						Amount:         total,
						Description:    a.Description + " | " + b.Description,
						Type:           TypeSmurfing,
						Severity:       SeveritySmurfing,
						Rule:           RuleSmurfing,
						Reason: fmt.Sprintf(
							"Possible structuring: two similar purchases (%.0f%% similar) on the same day totaling $%s",
							similarity*100, total.StringFixed(2)),
						Evidence: fmt.Sprintf("TX1: %s ($%s) + TX2: %s ($%s)",
							a.ID, a.Amount.StringFixed(2), b.ID, b.Amount.StringFixed(2)),
						Similarity: similarity,
					})
				}
			}
		}
	}
	return violations
}

// groupByEmployeeDay buckets transactions per employee per calendar day.
// Employees come back in first-appearance order so results over the same
// input are reproducible.
func groupByEmployeeDay(txs []transaction.Transaction) (map[string]map[civil.Date][]transaction.Transaction, []string) {
	groups := make(map[string]map[civil.Date][]transaction.Transaction)
	var employees []string
	for _, tx := range txs {
		days, ok := groups[tx.Employee]
		if !ok {
			days = make(map[civil.Date][]transaction.Transaction)
			groups[tx.Employee] = days
			employees = append(employees, tx.Employee)
		}
		days[tx.Date] = append(days[tx.Date], tx)
	}
	return groups, employees
}

// pairKey builds an order-independent key for a transaction pair.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "+" + b
}

func inSplitBand(cfg Config, amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(cfg.SplitFloor) && amount.LessThanOrEqual(cfg.SplitCeiling)
}

// CheckRestrictedLocations flags spend at venues the reimbursement policy
// bans outright.
func CheckRestrictedLocations(cfg Config, txs []transaction.Transaction) []Violation {
	var violations []Violation
	for _, tx := range txs {
		desc := strings.ToLower(tx.Description)
		for _, venue := range cfg.RestrictedVenues {
			if strings.Contains(desc, venue) {
				violations = append(violations, Violation{
					TransactionIDs: []string{tx.ID},
					Employee:       tx.Employee,
					Date:           tx.Date,
					Amount:         tx.Amount,
					Description:    tx.Description,
					Type:           TypeRestrictedLocation,
					Severity:       SeverityRestrictedLocation,
					Rule:           RuleRestrictedLocation,
					Reason:         fmt.Sprintf("Meal at restricted venue: %s (banned from reimbursement)", titleCase(venue)),
					Evidence:       fmt.Sprintf("Description: %s", tx.Description),
				})
				break
			}
		}
	}
	return violations
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// CheckSuspiciousCategories flags transactions filed under a category the
// policy treats as a red flag. The comparison is exact, so a transaction
// without a category never matches.
func CheckSuspiciousCategories(cfg Config, txs []transaction.Transaction) []Violation {
	var violations []Violation
	for _, tx := range txs {
		if tx.Category == "" {
			continue
		}
		for _, category := range cfg.SuspiciousCategories {
			if tx.Category == category {
				violations = append(violations, Violation{
					TransactionIDs: []string{tx.ID},
					Employee:       tx.Employee,
					Date:           tx.Date,
					Amount:         tx.Amount,
					Description:    tx.Description,
					Type:           TypeSuspiciousCategory,
					Severity:       SeveritySuspiciousCategory,
					Rule:           RuleSuspiciousCategory,
					Reason:         fmt.Sprintf("Expense categorized as %q (possible weaponry)", tx.Category),
					Evidence:       fmt.Sprintf("Description: %s, Amount: $%s", tx.Description, tx.Amount.StringFixed(2)),
				})
				break
			}
		}
	}
	return violations
}
