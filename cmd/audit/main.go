package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-audit/internal/agents"
	"github.com/dvloznov/expense-audit/internal/audit"
	"github.com/dvloznov/expense-audit/internal/config"
	"github.com/dvloznov/expense-audit/internal/email"
	"github.com/dvloznov/expense-audit/internal/llm"
	"github.com/dvloznov/expense-audit/internal/logger"
	"github.com/dvloznov/expense-audit/internal/policy"
	"github.com/dvloznov/expense-audit/internal/report"
	"github.com/dvloznov/expense-audit/internal/transaction"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		runMenu(log)
		return
	}

	switch os.Args[1] {
	case "scan":
		runScan(log)
	case "conspiracy":
		runConspiracy(log)
	case "contextual":
		runContextual(log)
	case "chat":
		runChat(log)
	case "menu":
		runMenu(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Expense Audit CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  audit <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  scan         Run the rule engine over the transaction export")
	fmt.Println("  conspiracy   Flag suspicious emails involving the person of interest")
	fmt.Println("  contextual   Cross-check emails against the transaction ledger")
	fmt.Println("  chat         Ask questions about the compliance policy")
	fmt.Println("  menu         Interactive menu over all tools (default)")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'audit <command> -h' for more information on a command.")
}

func runScan(log zerolog.Logger) {
	cfg := config.Load()

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	transactionsPath := fs.String("transactions", cfg.TransactionsPath, "Path to the transaction export CSV")
	rulebookPath := fs.String("rulebook", cfg.RulebookPath, "Optional YAML file with rule overrides")
	outputDir := fs.String("output", cfg.OutputDir, "Directory for result CSVs")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	if err := scanLedger(ctx, *transactionsPath, *rulebookPath, *outputDir); err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}
}

func runConspiracy(log zerolog.Logger) {
	cfg := config.Load()

	fs := flag.NewFlagSet("conspiracy", flag.ExitOnError)
	emailsPath := fs.String("emails", cfg.EmailsPath, "Path to the email archive")
	person := fs.String("person", agents.DefaultPersonOfInterest, "Email address of the person of interest")
	outputDir := fs.String("output", cfg.OutputDir, "Directory for result CSVs")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client, err := llm.NewGeminiClient(ctx, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	if err := detectConspiracies(ctx, client, *emailsPath, *person, *outputDir); err != nil {
		log.Fatal().Err(err).Msg("Conspiracy detection failed")
	}
}

func runContextual(log zerolog.Logger) {
	cfg := config.Load()

	fs := flag.NewFlagSet("contextual", flag.ExitOnError)
	emailsPath := fs.String("emails", cfg.EmailsPath, "Path to the email archive")
	transactionsPath := fs.String("transactions", cfg.TransactionsPath, "Path to the transaction export CSV")
	outputDir := fs.String("output", cfg.OutputDir, "Directory for result CSVs")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client, err := llm.NewGeminiClient(ctx, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	if err := detectContextualFrauds(ctx, client, *emailsPath, *transactionsPath, *outputDir); err != nil {
		log.Fatal().Err(err).Msg("Contextual fraud detection failed")
	}
}

func runChat(log zerolog.Logger) {
	cfg := config.Load()

	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	policyPath := fs.String("policy", cfg.PolicyPath, "Path to the compliance policy document")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	client, err := llm.NewGeminiClient(ctx, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	if err := chatLoop(ctx, client, *policyPath, bufio.NewScanner(os.Stdin)); err != nil {
		log.Fatal().Err(err).Msg("Policy chat failed")
	}
}

func runMenu(log zerolog.Logger) {
	cfg := config.Load()

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	printBanner()
	if err := checkDataFiles(cfg); err != nil {
		log.Fatal().Err(err).Msg("Data files missing")
	}
	fmt.Println("All data files found.")
	fmt.Println()

	in := bufio.NewScanner(os.Stdin)
	for {
		printMenu()
		fmt.Print("Choose an option [0-5]: ")
		if !in.Scan() {
			fmt.Println()
			return
		}
		choice := strings.TrimSpace(in.Text())

		switch {
		case choice == "0" || isExitWord(choice):
			fmt.Println("\nShutting down.")
			return

		case choice == "1":
			client, err := llm.NewGeminiClient(ctx, cfg.Model)
			if err != nil {
				log.Error().Err(err).Msg("Failed to create Gemini client")
				continue
			}
			if err := chatLoop(ctx, client, cfg.PolicyPath, in); err != nil {
				log.Error().Err(err).Msg("Policy chat failed")
			}

		case choice == "2":
			client, err := llm.NewGeminiClient(ctx, cfg.Model)
			if err != nil {
				log.Error().Err(err).Msg("Failed to create Gemini client")
				continue
			}
			if err := detectConspiracies(ctx, client, cfg.EmailsPath, agents.DefaultPersonOfInterest, cfg.OutputDir); err != nil {
				log.Error().Err(err).Msg("Conspiracy detection failed")
			}

		case choice == "3":
			if err := scanLedger(ctx, cfg.TransactionsPath, cfg.RulebookPath, cfg.OutputDir); err != nil {
				log.Error().Err(err).Msg("Scan failed")
			}

		case choice == "4":
			client, err := llm.NewGeminiClient(ctx, cfg.Model)
			if err != nil {
				log.Error().Err(err).Msg("Failed to create Gemini client")
				continue
			}
			if err := detectContextualFrauds(ctx, client, cfg.EmailsPath, cfg.TransactionsPath, cfg.OutputDir); err != nil {
				log.Error().Err(err).Msg("Contextual fraud detection failed")
			}

		case choice == "5":
			runEverything(ctx, log, cfg)

		default:
			fmt.Println("\nInvalid option. Choose a number from 0 to 5.")
			fmt.Println()
		}
	}
}

func printBanner() {
	line := strings.Repeat("=", 80)
	fmt.Println(line)
	fmt.Println(strings.Repeat(" ", 30) + "EXPENSE AUDIT SYSTEM")
	fmt.Println(line)
	fmt.Println()
}

func printMenu() {
	fmt.Println("Choose a tool to run:")
	fmt.Println()
	fmt.Println("  [1] Policy chat: ask questions about the compliance policy")
	fmt.Println("  [2] Conspiracy detector: flag suspicious emails")
	fmt.Println("  [3] Rule scan: audit the transaction export")
	fmt.Println("  [4] Contextual fraud detector: cross-check emails against the ledger")
	fmt.Println("  [5] Run the scan and both detectors")
	fmt.Println("  [0] Exit")
	fmt.Println()
}

// runEverything mirrors the original sweep order and keeps going past
// individual failures so one broken input does not mask the others.
func runEverything(ctx context.Context, log zerolog.Logger, cfg config.Config) {
	client, err := llm.NewGeminiClient(ctx, cfg.Model)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client")
		return
	}

	fmt.Println("\n[1/3] Conspiracy detector...")
	if err := detectConspiracies(ctx, client, cfg.EmailsPath, agents.DefaultPersonOfInterest, cfg.OutputDir); err != nil {
		log.Error().Err(err).Msg("Conspiracy detection failed")
	}

	fmt.Println("\n[2/3] Rule scan...")
	if err := scanLedger(ctx, cfg.TransactionsPath, cfg.RulebookPath, cfg.OutputDir); err != nil {
		log.Error().Err(err).Msg("Scan failed")
	}

	fmt.Println("\n[3/3] Contextual fraud detector...")
	if err := detectContextualFrauds(ctx, client, cfg.EmailsPath, cfg.TransactionsPath, cfg.OutputDir); err != nil {
		log.Error().Err(err).Msg("Contextual fraud detection failed")
	}

	fmt.Println("\nGenerated files:")
	fmt.Printf("  - %s\n", filepath.Join(cfg.OutputDir, suspiciousEmailsCSV))
	fmt.Printf("  - %s\n", filepath.Join(cfg.OutputDir, violationsCSV))
	fmt.Printf("  - %s\n", filepath.Join(cfg.OutputDir, contextualFraudsCSV))
	fmt.Println()
}

// Result file names inside the output directory.
const (
	violationsCSV       = "violations.csv"
	suspiciousEmailsCSV = "suspicious_emails.csv"
	contextualFraudsCSV = "contextual_frauds.csv"
)

func scanLedger(ctx context.Context, transactionsPath, rulebookPath, outputDir string) error {
	ruleCfg, err := config.LoadRulebook(rulebookPath)
	if err != nil {
		return err
	}

	txs, stats, err := transaction.LoadFile(ctx, transactionsPath)
	if err != nil {
		return err
	}
	if stats.Dropped > 0 {
		fmt.Printf("Skipped %d malformed row(s) in %s\n", stats.Dropped, transactionsPath)
	}

	violations, rep := audit.New(ruleCfg).Evaluate(ctx, txs)
	fmt.Println(rep.Render())

	if err := ensureDir(outputDir); err != nil {
		return err
	}
	outPath := filepath.Join(outputDir, violationsCSV)
	if err := report.WriteCSVFile(ctx, outPath, violations); err != nil {
		return err
	}
	fmt.Printf("Saved %d violation(s) to %s\n", len(violations), outPath)
	return nil
}

func detectConspiracies(ctx context.Context, client llm.Client, emailsPath, person, outputDir string) error {
	messages, err := email.ParseFile(ctx, emailsPath)
	if err != nil {
		return err
	}

	findings := agents.NewConspiracy(client, person, nil).Analyze(ctx, messages)
	fmt.Println(agents.RenderConspiracyReport(findings))

	var suspicious []agents.ConspiracyFinding
	for _, f := range findings {
		if f.Suspicious {
			suspicious = append(suspicious, f)
		}
	}

	if err := ensureDir(outputDir); err != nil {
		return err
	}
	outPath := filepath.Join(outputDir, suspiciousEmailsCSV)
	if err := agents.WriteConspiracyCSVFile(ctx, outPath, suspicious); err != nil {
		return err
	}
	fmt.Printf("Saved %d suspicious email(s) to %s\n", len(suspicious), outPath)
	return nil
}

func detectContextualFrauds(ctx context.Context, client llm.Client, emailsPath, transactionsPath, outputDir string) error {
	messages, err := email.ParseFile(ctx, emailsPath)
	if err != nil {
		return err
	}
	txs, _, err := transaction.LoadFile(ctx, transactionsPath)
	if err != nil {
		return err
	}

	findings := agents.NewContextualFraud(client).Analyze(ctx, messages, txs)
	fmt.Println(agents.RenderContextualReport(findings, len(messages), len(txs)))

	if err := ensureDir(outputDir); err != nil {
		return err
	}
	outPath := filepath.Join(outputDir, contextualFraudsCSV)
	if err := agents.WriteContextualCSVFile(ctx, outPath, findings); err != nil {
		return err
	}
	fmt.Printf("Saved findings to %s\n", outPath)
	return nil
}

func chatLoop(ctx context.Context, client llm.Client, policyPath string, in *bufio.Scanner) error {
	store, err := policy.LoadStore(ctx, policyPath, policy.DefaultChunkSize, policy.DefaultChunkOverlap)
	if err != nil {
		return err
	}

	chat := agents.NewPolicyChat(client, store)

	fmt.Println("\nCompliance policy chat. Ask a question, or type 'exit' to leave.")
	fmt.Println()
	for {
		fmt.Print("You: ")
		if !in.Scan() {
			fmt.Println()
			return in.Err()
		}
		question := strings.TrimSpace(in.Text())
		if question == "" {
			continue
		}
		if isExitWord(question) {
			fmt.Println()
			return nil
		}

		answer, err := chat.Ask(ctx, question)
		if err != nil {
			fmt.Printf("\nAssistant: the request failed (%v), please try again.\n\n", err)
			continue
		}
		fmt.Printf("\nAssistant: %s\n\n", answer)
	}
}

func isExitWord(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "q", "sair":
		return true
	}
	return false
}

func checkDataFiles(cfg config.Config) error {
	for _, path := range []string{cfg.TransactionsPath, cfg.EmailsPath, cfg.PolicyPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("checkDataFiles: %w", err)
		}
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensureDir: %w", err)
	}
	return nil
}
