// Package rules implements the deterministic policy checks that scan a
// transaction snapshot for compliance violations.
package rules

import "github.com/shopspring/decimal"

// Config carries the thresholds and deny-lists the evaluators run against.
// Keyword and venue entries are lowercase and matched as substrings of the
// lowercased description; category entries are compared verbatim.
type Config struct {
	ProhibitedKeywords   []string
	RestrictedVenues     []string
	SuspiciousCategories []string

	// ApprovalMarkers exempt a high-value purchase when any of them
	// appears in the description. Matching is substring based, so a short
	// marker like "po" also matches inside longer words.
	ApprovalMarkers []string

	// HighValueLimit is the amount above which a purchase needs recorded
	// approval.
	HighValueLimit decimal.Decimal

	// SplitFloor and SplitCeiling bound the per-purchase amount band in
	// which payment structuring is suspected.
	SplitFloor   decimal.Decimal
	SplitCeiling decimal.Decimal

	// SimilarityThreshold is the description overlap two same-day purchases
	// must exceed to count as a split payment.
	SimilarityThreshold float64
}

// DefaultConfig returns the policy as published in the compliance handbook.
// Deny-lists carry both Portuguese and English forms where the handbook
// names both.
func DefaultConfig() Config {
	return Config{
		ProhibitedKeywords: []string{
			"mágica", "magic", "karaokê", "karaoke",
			"algema", "handcuff", "corrente", "chain",
			"fumaça", "smoke", "pombo", "pigeon",
			"stripper", "baralho marcado", "discoteca", "disco",
			"arma", "weapon", "gun", "airsoft",
			"espada", "sword", "katana", "ninja", "nunchaku",
			"spray de pimenta", "pepper spray",
			"camuflagem", "camouflage", "armadilha", "trap",
			"vela artesanal", "candle",
			"startup", "rede social", "social network",
			"beterraba", "beet",
			"binóculo", "binocular", "vigilância", "surveillance",
			"walkie talkie", "walkie-talkie",
		},
		RestrictedVenues:     []string{"hooters", "hooter"},
		SuspiciousCategories: []string{"Segurança", "Security"},
		ApprovalMarkers:      []string{"po", "purchase order", "p.o."},
		HighValueLimit:       decimal.NewFromInt(500),
		SplitFloor:           decimal.NewFromInt(300),
		SplitCeiling:         decimal.NewFromInt(500),
		SimilarityThreshold:  0.6,
	}
}
