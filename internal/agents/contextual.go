package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/expense-audit/internal/email"
	"github.com/dvloznov/expense-audit/internal/llm"
	"github.com/dvloznov/expense-audit/internal/logger"
	"github.com/dvloznov/expense-audit/internal/transaction"
)

// AnalysisCap bounds how many emails one strategy sends to the model.
const AnalysisCap = 20

// RelatedTransactionCap bounds how many ledger rows accompany one email.
const RelatedTransactionCap = 10

// Violation types raised by the contextual strategies.
const (
	TypeCoordinatedFraud   = "COORDINATED_FRAUD"
	TypeFalseJustification = "FALSE_JUSTIFICATION"
	TypeInformationHiding  = "INFORMATION_HIDING"
)

const contextualSystem = `You are a corporate compliance analyst cross-checking internal email against the expense ledger.

Judge only what the provided material supports. Return only the requested JSON object, no Markdown, no commentary.`

// ContextualFinding is one flagged email from the contextual sweep.
type ContextualFinding struct {
	Email    email.Message
	Type     string
	Severity int
	Reason   string
	Evidence string
}

// strategy is one themed pass over the mail archive.
type strategy struct {
	name            string
	violationType   string
	keywords        []string
	flagKey         string
	defaultSeverity int
	includeLedger   bool
	instructions    string
}

func strategies() []strategy {
	return []strategy{
		{
			name:          "coordination",
			violationType: TypeCoordinatedFraud,
			keywords: []string{
				"compra", "purchase", "aprovação", "approval",
				"autorização", "authorization", "valor", "amount",
				"despesa", "expense", "reembolso", "reimbursement",
				"dividir", "split", "juntos", "together", "combinar", "combine",
			},
			flagKey:         "is_fraud",
			defaultSeverity: 5,
			includeLedger:   true,
			instructions: "Decide whether the participants coordinate purchases to evade approval limits. " +
				`Respond with JSON: {"is_fraud": boolean, "severity": 0-10, "reason": string, "evidence": string}.`,
		},
		{
			name:          "justification",
			violationType: TypeFalseJustification,
			keywords: []string{
				"cliente", "client", "reunião", "meeting", "necessário", "necessary",
				"emergência", "emergency", "urgente", "urgent", "projeto", "project",
			},
			flagKey:         "is_false",
			defaultSeverity: 6,
			instructions: "Decide whether the business justification given for an expense is fabricated or implausible. " +
				`Respond with JSON: {"is_false": boolean, "severity": 0-10, "reason": string, "evidence": string}.`,
		},
		{
			name:          "hiding",
			violationType: TypeInformationHiding,
			keywords: []string{
				"não mencione", "don't mention", "segredo", "secret",
				"confidencial", "confidential", "entre nós", "between us",
				"só você", "just you", "discreto", "discreet",
			},
			flagKey:         "is_hiding",
			defaultSeverity: 8,
			instructions: "Decide whether the participants deliberately hide expense information from the company. " +
				`Respond with JSON: {"is_hiding": boolean, "severity": 0-10, "reason": string, "evidence": string}.`,
		},
	}
}

// ContextualFraud cross-references the mail archive with the transaction
// ledger, one themed strategy at a time.
type ContextualFraud struct {
	classifier *llm.Classifier
}

func NewContextualFraud(client llm.Client) *ContextualFraud {
	return &ContextualFraud{classifier: llm.NewClassifier(client, llm.DefaultAttempts)}
}

// Analyze runs every strategy over the archive. Each strategy pre-filters
// emails by keyword, caps the candidate set, and sends the survivors to
// the model. Only flagged emails come back; degraded judgments count as
// not flagged.
func (a *ContextualFraud) Analyze(ctx context.Context, messages []email.Message, txs []transaction.Transaction) []ContextualFinding {
	log := logger.FromContext(ctx)

	var findings []ContextualFinding
	for _, st := range strategies() {
		candidates := filterByKeywords(messages, st.keywords)
		if len(candidates) > AnalysisCap {
			candidates = candidates[:AnalysisCap]
		}
		log.Debug().Str("strategy", st.name).Int("candidates", len(candidates)).Msg("Strategy candidates selected")

		required := []string{st.flagKey, "severity", "reason", "evidence"}
		for _, m := range candidates {
			j := a.classifier.Classify(ctx, llm.Request{
				System:      contextualSystem,
				Prompt:      buildContextualPrompt(st, m, txs),
				Temperature: 0.1,
				MaxTokens:   500,
			}, required)
			if j.Degraded || !j.Bool(st.flagKey) {
				continue
			}

			severity := j.Int("severity")
			if severity == 0 {
				severity = st.defaultSeverity
			}
			findings = append(findings, ContextualFinding{
				Email:    m,
				Type:     st.violationType,
				Severity: severity,
				Reason:   j.Str("reason"),
				Evidence: j.Str("evidence"),
			})
		}
	}

	log.Info().Int("findings", len(findings)).Msg("Contextual sweep completed")
	return findings
}

func filterByKeywords(messages []email.Message, keywords []string) []email.Message {
	var out []email.Message
	for _, m := range messages {
		text := strings.ToLower(m.Subject + " " + m.Body)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func buildContextualPrompt(st strategy, m email.Message, txs []transaction.Transaction) string {
	var b strings.Builder
	b.WriteString(st.instructions)
	b.WriteString("\n\nEMAIL:\n")
	b.WriteString(m.Format())
	if st.includeLedger {
		if related := relatedTransactions(m, txs); len(related) > 0 {
			b.WriteString("\n\nLEDGER ENTRIES FOR THE PARTICIPANTS:\n")
			for _, tx := range related {
				fmt.Fprintf(&b, "- %s | %s | %s | $%s | %s\n",
					tx.ID, tx.Employee, tx.Date, tx.Amount.StringFixed(2), tx.Description)
			}
		}
	}
	b.WriteString("\nJSON:")
	return b.String()
}

// relatedTransactions picks ledger rows whose employee matches an email
// participant. Participants match by mailbox local part with dots read as
// spaces, so "kevin.malone@..." matches the employee "Kevin Malone".
func relatedTransactions(m email.Message, txs []transaction.Transaction) []transaction.Transaction {
	needles := participantNeedles(m)

	var related []transaction.Transaction
	for _, tx := range txs {
		employee := strings.ToLower(tx.Employee)
		for _, needle := range needles {
			if needle != "" && strings.Contains(employee, needle) {
				related = append(related, tx)
				break
			}
		}
		if len(related) == RelatedTransactionCap {
			break
		}
	}
	return related
}

func participantNeedles(m email.Message) []string {
	var needles []string
	for _, addr := range []string{m.From, m.To} {
		local := addr
		if at := strings.Index(addr, "@"); at != -1 {
			local = addr[:at]
		}
		needles = append(needles, strings.ToLower(strings.ReplaceAll(local, ".", " ")))
	}
	return needles
}
