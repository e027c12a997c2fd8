package rules

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/expense-audit/internal/transaction"
)

func testTx(id, employee, date, amount, description string) transaction.Transaction {
	d, err := civil.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return transaction.Transaction{
		ID:          id,
		Employee:    employee,
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
	}
}

func TestCheckProhibitedItems(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("flags deny-listed keyword", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-001", "dwight.schrute", "2024-03-01", "89.90", "Ninja throwing stars for desk defense"),
		}
		got := CheckProhibitedItems(cfg, txs)
		if len(got) != 1 {
			t.Fatalf("CheckProhibitedItems() returned %d violations, want 1", len(got))
		}
		v := got[0]
		if v.Type != TypeProhibitedItem || v.Severity != SeverityProhibitedItem {
			t.Errorf("violation = %+v, want type %s severity %d", v, TypeProhibitedItem, SeverityProhibitedItem)
		}
		if !strings.Contains(v.Reason, `"ninja"`) {
			t.Errorf("Reason = %q, want it to name the matched keyword", v.Reason)
		}
	})

	t.Run("first matching keyword wins", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-002", "michael.scott", "2024-03-01", "250.00", "Magic show with karaoke machine rental"),
		}
		got := CheckProhibitedItems(cfg, txs)
		if len(got) != 1 {
			t.Fatalf("CheckProhibitedItems() returned %d violations, want 1", len(got))
		}
		if !strings.Contains(got[0].Reason, `"magic"`) {
			t.Errorf("Reason = %q, want the earliest deny-list entry to win", got[0].Reason)
		}
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-003", "dwight.schrute", "2024-03-02", "310.00", "PEPPER SPRAY bulk order"),
		}
		if got := CheckProhibitedItems(cfg, txs); len(got) != 1 {
			t.Errorf("CheckProhibitedItems() returned %d violations, want 1", len(got))
		}
	})

	t.Run("clean description passes", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-004", "pam.beesly", "2024-03-02", "42.00", "Watercolor paint refills"),
		}
		if got := CheckProhibitedItems(cfg, txs); len(got) != 0 {
			t.Errorf("CheckProhibitedItems() returned %d violations, want 0", len(got))
		}
	})
}

func TestCheckUnauthorizedAmounts(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		amount      string
		description string
		want        int
	}{
		{name: "above limit without marker", amount: "750.00", description: "Conference registration fees", want: 1},
		{name: "exactly at limit", amount: "500.00", description: "Conference registration fees", want: 0},
		{name: "below limit", amount: "499.99", description: "Conference registration fees", want: 0},
		{name: "explicit purchase order", amount: "1200.00", description: "New chairs, purchase order attached", want: 0},
		{name: "po reference", amount: "899.00", description: "Laptop per PO #4521", want: 0},
		{name: "dotted marker", amount: "899.00", description: "Laptop per P.O. 4521", want: 0},
		{name: "marker matched inside word", amount: "750.00", description: "Deposit for venue rental", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []transaction.Transaction{
				testTx("TX-010", "jim.halpert", "2024-03-05", tt.amount, tt.description),
			}
			got := CheckUnauthorizedAmounts(cfg, txs)
			if len(got) != tt.want {
				t.Fatalf("CheckUnauthorizedAmounts() returned %d violations, want %d", len(got), tt.want)
			}
			if tt.want == 1 {
				v := got[0]
				if v.Severity != SeverityUnauthorizedAmount {
					t.Errorf("Severity = %d, want %d", v.Severity, SeverityUnauthorizedAmount)
				}
				if v.Reason != "Amount above $500 without Purchase Order evidence" {
					t.Errorf("Reason = %q", v.Reason)
				}
				if v.Evidence != "Amount: $750.00" {
					t.Errorf("Evidence = %q", v.Evidence)
				}
			}
		})
	}
}

func TestCheckSmurfing(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("flags same-day split pair", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-020", "kevin.malone", "2024-03-10", "350.00", "Office party supplies batch one"),
			testTx("TX-021", "kevin.malone", "2024-03-10", "400.00", "Office party supplies batch two"),
		}
		got := CheckSmurfing(cfg, txs)
		if len(got) != 1 {
			t.Fatalf("CheckSmurfing() returned %d violations, want 1", len(got))
		}
		v := got[0]
		if v.Type != TypeSmurfing || v.Severity != SeveritySmurfing {
			t.Errorf("violation = %+v, want type %s severity %d", v, TypeSmurfing, SeveritySmurfing)
		}
		if v.IdentityKey() != "TX-020+TX-021" {
			t.Errorf("IdentityKey() = %q, want TX-020+TX-021", v.IdentityKey())
		}
		if !v.Amount.Equal(decimal.RequireFromString("750.00")) {
			t.Errorf("Amount = %s, want 750.00", v.Amount)
		}
		if v.Similarity <= cfg.SimilarityThreshold {
			t.Errorf("Similarity = %v, want above %v", v.Similarity, cfg.SimilarityThreshold)
		}
		if !strings.Contains(v.Evidence, "TX-020") || !strings.Contains(v.Evidence, "TX-021") {
			t.Errorf("Evidence = %q, want both transaction ids", v.Evidence)
		}
	})

	t.Run("amount below band floor passes", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-022", "kevin.malone", "2024-03-10", "200.00", "Office party supplies batch one"),
			testTx("TX-023", "kevin.malone", "2024-03-10", "400.00", "Office party supplies batch one"),
		}
		if got := CheckSmurfing(cfg, txs); len(got) != 0 {
			t.Errorf("CheckSmurfing() returned %d violations, want 0", len(got))
		}
	})

	t.Run("different days pass", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-024", "kevin.malone", "2024-03-10", "350.00", "Office party supplies batch one"),
			testTx("TX-025", "kevin.malone", "2024-03-11", "400.00", "Office party supplies batch two"),
		}
		if got := CheckSmurfing(cfg, txs); len(got) != 0 {
			t.Errorf("CheckSmurfing() returned %d violations, want 0", len(got))
		}
	})

	t.Run("different employees pass", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-026", "kevin.malone", "2024-03-10", "350.00", "Office party supplies batch one"),
			testTx("TX-027", "oscar.martinez", "2024-03-10", "400.00", "Office party supplies batch two"),
		}
		if got := CheckSmurfing(cfg, txs); len(got) != 0 {
			t.Errorf("CheckSmurfing() returned %d violations, want 0", len(got))
		}
	})

	t.Run("dissimilar descriptions pass", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-028", "kevin.malone", "2024-03-10", "350.00", "Team lunch downtown"),
			testTx("TX-029", "kevin.malone", "2024-03-10", "400.00", "Printer ink cartridges"),
		}
		if got := CheckSmurfing(cfg, txs); len(got) != 0 {
			t.Errorf("CheckSmurfing() returned %d violations, want 0", len(got))
		}
	})

	t.Run("one transaction may appear in several pairs", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-030", "kevin.malone", "2024-03-10", "310.00", "Catering deposit for holiday party installment one"),
			testTx("TX-031", "kevin.malone", "2024-03-10", "320.00", "Catering deposit for holiday party installment two"),
			testTx("TX-032", "kevin.malone", "2024-03-10", "330.00", "Catering deposit for holiday party installment three"),
		}
		got := CheckSmurfing(cfg, txs)
		if len(got) != 3 {
			t.Fatalf("CheckSmurfing() returned %d violations, want 3 pairs", len(got))
		}
	})

	t.Run("each pair reported once", func(t *testing.T) {
		dup := testTx("TX-033", "kevin.malone", "2024-03-10", "350.00", "Office party supplies batch one")
		txs := []transaction.Transaction{
			dup,
			testTx("TX-034", "kevin.malone", "2024-03-10", "400.00", "Office party supplies batch two"),
			dup,
		}
		got := CheckSmurfing(cfg, txs)
		pairs := 0
		for _, v := range got {
			if v.IdentityKey() == "TX-033+TX-034" {
				pairs++
			}
		}
		if pairs != 1 {
			t.Errorf("pair TX-033+TX-034 reported %d times, want 1", pairs)
		}
	})

	t.Run("combined amount must cross the limit", func(t *testing.T) {
		low := cfg
		low.SplitFloor = decimal.NewFromInt(100)
		txs := []transaction.Transaction{
			testTx("TX-035", "kevin.malone", "2024-03-10", "150.00", "Office party supplies batch one"),
			testTx("TX-036", "kevin.malone", "2024-03-10", "200.00", "Office party supplies batch two"),
		}
		if got := CheckSmurfing(low, txs); got != nil {
			t.Errorf("CheckSmurfing() = %+v, want none when the pair totals under the limit", got)
		}
	})
}

func TestCheckRestrictedLocations(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("flags restricted venue", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-040", "michael.scott", "2024-03-12", "145.80", "Team dinner at HOOTERS Scranton"),
		}
		got := CheckRestrictedLocations(cfg, txs)
		if len(got) != 1 {
			t.Fatalf("CheckRestrictedLocations() returned %d violations, want 1", len(got))
		}
		v := got[0]
		if v.Severity != SeverityRestrictedLocation {
			t.Errorf("Severity = %d, want %d", v.Severity, SeverityRestrictedLocation)
		}
		if v.Reason != "Meal at restricted venue: Hooters (banned from reimbursement)" {
			t.Errorf("Reason = %q", v.Reason)
		}
	})

	t.Run("ordinary venue passes", func(t *testing.T) {
		txs := []transaction.Transaction{
			testTx("TX-041", "michael.scott", "2024-03-12", "62.30", "Team dinner at Cooper's Seafood"),
		}
		if got := CheckRestrictedLocations(cfg, txs); len(got) != 0 {
			t.Errorf("CheckRestrictedLocations() returned %d violations, want 0", len(got))
		}
	})
}

func TestCheckSuspiciousCategories(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		category string
		want     int
	}{
		{name: "portuguese sentinel", category: "Segurança", want: 1},
		{name: "english sentinel", category: "Security", want: 1},
		{name: "comparison is exact", category: "security", want: 0},
		{name: "unrelated category", category: "Office", want: 0},
		{name: "empty category never matches", category: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := testTx("TX-050", "dwight.schrute", "2024-03-14", "210.00", "Motion sensor floodlights")
			tx.Category = tt.category
			got := CheckSuspiciousCategories(cfg, []transaction.Transaction{tx})
			if len(got) != tt.want {
				t.Fatalf("CheckSuspiciousCategories() returned %d violations, want %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Reason != `Expense categorized as "`+tt.category+`" (possible weaponry)` {
				t.Errorf("Reason = %q", got[0].Reason)
			}
		})
	}
}
