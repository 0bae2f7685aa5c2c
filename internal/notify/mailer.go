package notify

import (
	"context"
	"log/slog"
)

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	from   string
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(from string, logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{from: from, logger: logger}
}

// Send implements domain.Mailer.
func (m *LogMailer) Send(ctx context.Context, recipient, subject, body string) error {
	m.logger.InfoContext(ctx, "mail",
		slog.String("from", m.from),
		slog.String("to", recipient),
		slog.String("subject", subject),
		slog.Int("body_len", len(body)),
	)
	return nil
}
