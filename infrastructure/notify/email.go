package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogEmailSender writes outbound mail to the log instead of a provider. It
// backs local development and environments without mail credentials; the
// production sender is wired in through the same interface.
type LogEmailSender struct {
	logger *zap.Logger
}

// NewLogEmailSender creates a log-only email sender.
func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEmailSender{logger: logger}
}

func (l *LogEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	l.logger.Info("email send (log only)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
