package email

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dvloznov/expense-audit/internal/logger"
)

// Parse reads a plain-text mail archive. Messages are separated by lines
// starting with "---" or "===". Headers may be Portuguese or English;
// "Mensagem:"/"Message:" opens the body, as does the first blank line
// after the headers. Messages with an empty body are skipped.
func Parse(ctx context.Context, r io.Reader) ([]Message, error) {
	var (
		messages  []Message
		cur       Message
		bodyLines []string
		inBody    bool
	)

	flush := func() {
		body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
		if body != "" {
			cur.Body = body
			messages = append(messages, cur)
		}
		cur = Message{}
		bodyLines = nil
		inBody = false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if isSeparator(trimmed) {
			flush()
			continue
		}
		if inBody {
			bodyLines = append(bodyLines, line)
			continue
		}

		if v, ok := headerValue(trimmed, "De:", "From:"); ok {
			cur.From = v
		} else if v, ok := headerValue(trimmed, "Para:", "To:"); ok {
			cur.To = v
		} else if v, ok := headerValue(trimmed, "Assunto:", "Subject:"); ok {
			cur.Subject = v
		} else if v, ok := headerValue(trimmed, "Data:", "Date:"); ok {
			cur.Date = v
		} else if v, ok := headerValue(trimmed, "Mensagem:", "Message:"); ok {
			inBody = true
			if v != "" {
				bodyLines = append(bodyLines, v)
			}
		} else if trimmed == "" {
			if hasHeaders(cur) {
				inBody = true
			}
		} else if hasHeaders(cur) {
			inBody = true
			bodyLines = append(bodyLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Parse: %w", err)
	}
	flush()

	log := logger.FromContext(ctx)
	log.Debug().Int("messages", len(messages)).Msg("Mail archive parsed")
	return messages, nil
}

// ParseFile reads a mail archive from disk.
func ParseFile(ctx context.Context, path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ParseFile: %w", err)
	}
	defer f.Close()

	messages, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ParseFile: %s: %w", path, err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Int("messages", len(messages)).Msg("Mail archive loaded")
	return messages, nil
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, "---") || strings.HasPrefix(line, "===")
}

// headerValue matches a header line against its Portuguese and English
// prefixes and returns the trimmed remainder.
func headerValue(line, pt, en string) (string, bool) {
	for _, prefix := range []string{pt, en} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func hasHeaders(m Message) bool {
	return m.From != "" || m.To != "" || m.Subject != "" || m.Date != ""
}
