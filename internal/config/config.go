// Package config resolves runtime settings for an audit run: data file
// locations and the model name come from the environment, and rule
// parameters can be overridden through an optional YAML rulebook.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/expense-audit/internal/rules"
)

// Environment variables recognized by Load.
const (
	// EnvTransactions overrides the transaction export path.
	EnvTransactions = "AUDIT_TRANSACTIONS"

	// EnvEmails overrides the email archive path.
	EnvEmails = "AUDIT_EMAILS"

	// EnvPolicy overrides the compliance policy document path.
	EnvPolicy = "AUDIT_POLICY"

	// EnvOutputDir overrides the directory where result CSVs are written.
	EnvOutputDir = "AUDIT_OUTPUT_DIR"

	// EnvModel overrides the Gemini model name.
	EnvModel = "AUDIT_MODEL"

	// EnvRulebook points at an optional YAML file with rule overrides.
	EnvRulebook = "AUDIT_RULEBOOK"
)

// Config holds the file locations and model settings for one audit run.
type Config struct {
	TransactionsPath string
	EmailsPath       string
	PolicyPath       string
	OutputDir        string
	Model            string
	RulebookPath     string
}

// Load reads settings from the environment, merging a .env file first
// when one exists. Unset variables fall back to the standard data layout.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		TransactionsPath: getEnv(EnvTransactions, "data/transacoes_bancarias.csv"),
		EmailsPath:       getEnv(EnvEmails, "data/emails.txt"),
		PolicyPath:       getEnv(EnvPolicy, "data/politica_compliance.txt"),
		OutputDir:        getEnv(EnvOutputDir, "output"),
		Model:            getEnv(EnvModel, ""),
		RulebookPath:     getEnv(EnvRulebook, ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// rulebook mirrors the YAML layout of a rule override file. Nil fields
// mean "keep the default", so zero values can still be set explicitly.
type rulebook struct {
	ProhibitedKeywords   []string `yaml:"prohibited_keywords"`
	RestrictedVenues     []string `yaml:"restricted_venues"`
	SuspiciousCategories []string `yaml:"suspicious_categories"`
	ApprovalMarkers      []string `yaml:"approval_markers"`
	HighValueLimit       *float64 `yaml:"high_value_limit"`
	SplitFloor           *float64 `yaml:"split_floor"`
	SplitCeiling         *float64 `yaml:"split_ceiling"`
	SimilarityThreshold  *float64 `yaml:"similarity_threshold"`
}

// LoadRulebook returns the default rule configuration overlaid with any
// values set in the YAML file at path. An empty path keeps the defaults.
func LoadRulebook(path string) (rules.Config, error) {
	cfg := rules.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules.Config{}, fmt.Errorf("LoadRulebook: reading %s: %w", path, err)
	}

	var rb rulebook
	if err := yaml.Unmarshal(data, &rb); err != nil {
		return rules.Config{}, fmt.Errorf("LoadRulebook: parsing %s: %w", path, err)
	}

	if rb.ProhibitedKeywords != nil {
		cfg.ProhibitedKeywords = rb.ProhibitedKeywords
	}
	if rb.RestrictedVenues != nil {
		cfg.RestrictedVenues = rb.RestrictedVenues
	}
	if rb.SuspiciousCategories != nil {
		cfg.SuspiciousCategories = rb.SuspiciousCategories
	}
	if rb.ApprovalMarkers != nil {
		cfg.ApprovalMarkers = rb.ApprovalMarkers
	}
	if rb.HighValueLimit != nil {
		cfg.HighValueLimit = decimal.NewFromFloat(*rb.HighValueLimit)
	}
	if rb.SplitFloor != nil {
		cfg.SplitFloor = decimal.NewFromFloat(*rb.SplitFloor)
	}
	if rb.SplitCeiling != nil {
		cfg.SplitCeiling = decimal.NewFromFloat(*rb.SplitCeiling)
	}
	if rb.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *rb.SimilarityThreshold
	}

	return cfg, nil
}
