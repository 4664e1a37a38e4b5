// Package mailer renders report summaries into emails and delivers them,
// either directly over SMTP or through the mail worker queue.
package mailer

import (
	"context"
	"strings"
)

// Message is a rendered report email
type Message struct {
	Kind       string
	EmployeeID string
	To         []string
	Subject    string
	HTML       string
	Text       string
}

// Delivery sends a rendered message
type Delivery interface {
	Deliver(ctx context.Context, msg *Message) error
}

// Recipients returns the HR recipients followed by extra, skipping blanks
// and addresses already present.
func Recipients(hr []string, extra string) []string {
	out := make([]string, 0, len(hr)+1)
	seen := make(map[string]bool, len(hr)+1)

	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, addr)
	}

	for _, addr := range hr {
		add(addr)
	}
	add(extra)
	return out
}
