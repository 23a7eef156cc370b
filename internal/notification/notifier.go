package notification

import (
	"context"

	"github.com/rs/zerolog"
)

type Notifier interface {
	SendNotification(ctx context.Context, notification Notification) error
}

type logNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) SendNotification(_ context.Context, notification Notification) error {
	n.log.Info().
		Str("type", notification.Type).
		Int64("task_id", notification.TaskID).
		Str("recipient", notification.RecipientID).
		Time("created_at", notification.CreatedAt).
		Msg(notification.Message)
	return nil
}
