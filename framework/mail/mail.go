package mail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Message is an outbound mail — the Go shape of Laravel's Mailable after
// rendering.
type Message struct {
	To      []string
	From    string
	Subject string
	Body    string
	Headers map[string]string
}

// Mailer sends messages — mirrors Illuminate\Contracts\Mail\Mailer.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var errNoRecipients = errors.New("mail: message has no recipients")

// ── log driver ───────────────────────────────────────────────────────────────

// LogMailer writes messages to the structured log instead of delivering them,
// Laravel's MAIL_MAILER=log.
type LogMailer struct {
	log *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger uses slog.Default.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errNoRecipients
	}
	m.log.Info("mail sent",
		"to", msg.To,
		"from", msg.From,
		"subject", msg.Subject,
		"bytes", len(msg.Body),
	)
	return nil
}

// ── array driver ─────────────────────────────────────────────────────────────

// ArrayMailer records messages in memory for assertions, Laravel's
// MAIL_MAILER=array used by Mail::fake.
type ArrayMailer struct {
	mu   sync.Mutex
	sent []Message
}

// NewArrayMailer creates an empty recording mailer.
func NewArrayMailer() *ArrayMailer {
	return &ArrayMailer{}
}

func (m *ArrayMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errNoRecipients
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of every recorded message.
func (m *ArrayMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns messages addressed to the given recipient.
func (m *ArrayMailer) SentTo(addr string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Message
	for _, msg := range m.sent {
		for _, to := range msg.To {
			if to == addr {
				out = append(out, msg)
				break
			}
		}
	}
	return out
}

// Reset drops every recorded message.
func (m *ArrayMailer) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
