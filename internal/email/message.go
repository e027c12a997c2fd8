// Package email parses the plain-text corporate mail archives that the
// LLM-backed auditors analyze.
package email

import "fmt"

// Message is one email from an archive export.
type Message struct {
	From    string
	To      string
	Subject string
	Date    string
	Body    string
}

// Format renders the message the way agent prompts embed it. Header names
// stay in the archive's Portuguese form.
func (m Message) Format() string {
	return fmt.Sprintf("De: %s\nPara: %s\nAssunto: %s\nData: %s\n\n%s",
		m.From, m.To, m.Subject, m.Date, m.Body)
}
