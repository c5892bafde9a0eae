// Package channels delivers persisted notifications beyond the in-app inbox.
package channels

import (
	"context"
	"log/slog"

	"civiclink/internal/notifications/models"
	"civiclink/pkg/requestcontext"
)

// LogChannel stands in for an external provider (push, email, SMS). It only
// records what would have been sent.
type LogChannel struct {
	name   string
	logger *slog.Logger
}

func NewPush(logger *slog.Logger) *LogChannel  { return &LogChannel{name: "push", logger: logger} }
func NewEmail(logger *slog.Logger) *LogChannel { return &LogChannel{name: "email", logger: logger} }
func NewSMS(logger *slog.Logger) *LogChannel   { return &LogChannel{name: "sms", logger: logger} }

func (c *LogChannel) Name() string { return c.name }

func (c *LogChannel) Deliver(ctx context.Context, n *models.Notification) error {
	c.logger.DebugContext(ctx, "notification delivered",
		"channel", c.name,
		"request_id", requestcontext.RequestID(ctx),
		"notification_id", n.ID,
		"user_id", n.UserID,
		"type", n.Type,
	)
	return nil
}
