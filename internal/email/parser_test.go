package email

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dvloznov/expense-audit/internal/logger"
)

func testContext() context.Context {
	return logger.WithContext(context.Background(), logger.NewWithWriter(io.Discard))
}

func TestParse(t *testing.T) {
	archive := strings.Join([]string{
		"=== ARQUIVO DE EMAILS ===",
		"De: michael.scott@dundermifflin.com",
		"Para: dwight.schrute@dundermifflin.com",
		"Assunto: festa surpresa",
		"Data: 2024-03-10",
		"Mensagem: Compra os suprimentos hoje.",
		"Divide em duas notas, combinado?",
		"--------------------------------",
		"From: dwight.schrute@dundermifflin.com",
		"To: michael.scott@dundermifflin.com",
		"Subject: Re: festa surpresa",
		"Date: 2024-03-10",
		"",
		"Done. Two receipts, both under the limit.",
		"Nobody will notice.",
		"--------------------------------",
	}, "\n")

	got, err := Parse(testContext(), strings.NewReader(archive))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Message{
		{
			From:    "michael.scott@dundermifflin.com",
			To:      "dwight.schrute@dundermifflin.com",
			Subject: "festa surpresa",
			Date:    "2024-03-10",
			Body:    "Compra os suprimentos hoje.\nDivide em duas notas, combinado?",
		},
		{
			From:    "dwight.schrute@dundermifflin.com",
			To:      "michael.scott@dundermifflin.com",
			Subject: "Re: festa surpresa",
			Date:    "2024-03-10",
			Body:    "Done. Two receipts, both under the limit.\nNobody will notice.",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSkipsEmptyBodies(t *testing.T) {
	archive := strings.Join([]string{
		"De: a@dundermifflin.com",
		"Para: b@dundermifflin.com",
		"Assunto: vazio",
		"Data: 2024-03-11",
		"",
		"---",
		"De: c@dundermifflin.com",
		"Para: d@dundermifflin.com",
		"Assunto: real",
		"Data: 2024-03-11",
		"",
		"This one has content.",
	}, "\n")

	got, err := Parse(testContext(), strings.NewReader(archive))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d messages, want 1", len(got))
	}
	if got[0].Subject != "real" {
		t.Errorf("kept message subject = %q, want %q", got[0].Subject, "real")
	}
}

func TestParseBodyWithoutMarker(t *testing.T) {
	archive := strings.Join([]string{
		"De: a@dundermifflin.com",
		"Para: b@dundermifflin.com",
		"Assunto: direto",
		"Data: 2024-03-12",
		"Body starts right here without a marker or blank line.",
	}, "\n")

	got, err := Parse(testContext(), strings.NewReader(archive))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d messages, want 1", len(got))
	}
	if got[0].Body != "Body starts right here without a marker or blank line." {
		t.Errorf("Body = %q", got[0].Body)
	}
}

func TestParseEmptyArchive(t *testing.T) {
	got, err := Parse(testContext(), strings.NewReader("=== ARQUIVO ===\n\n---\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Parse() returned %d messages, want 0", len(got))
	}
}

func TestMessageFormat(t *testing.T) {
	m := Message{
		From:    "a@dundermifflin.com",
		To:      "b@dundermifflin.com",
		Subject: "reembolso",
		Date:    "2024-03-10",
		Body:    "Segue a nota.",
	}
	want := "De: a@dundermifflin.com\nPara: b@dundermifflin.com\nAssunto: reembolso\nData: 2024-03-10\n\nSegue a nota."
	if got := m.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}
