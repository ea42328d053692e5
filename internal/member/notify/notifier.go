// Package notify delivers invitation email. Delivery is best-effort by
// contract: the lifecycle manager logs failures and never rolls back an
// invitation because an email bounced.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// New selects a notifier implementation by name: "ses", "smtp", or "log"
// (dev default). Backend configuration comes from the environment.
func New(kind string, logger *slog.Logger) (Notifier, error) {
	switch kind {
	case "ses":
		return NewSESNotifier()
	case "smtp":
		return NewSMTPNotifier()
	case "log", "":
		return &LogNotifier{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("notify: unknown notifier %q", kind)
	}
}

// LogNotifier writes the message to the log instead of sending it. Used in
// dev and in tests of the surrounding wiring.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.Logger.Info("email suppressed (log notifier)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
