package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyTaskID      = errors.New("taskId is required")
	ErrUnknownEventType = errors.New("unknown event type")
)

type eventHandler struct {
	notifier Notifier
	log      zerolog.Logger
}

func NewEventHandler(notifier Notifier, log zerolog.Logger) EventHandler {
	return &eventHandler{
		notifier: notifier,
		log:      log,
	}
}

func (h *eventHandler) HandleEvent(ctx context.Context, event TaskEvent) error {
	if event.TaskID <= 0 {
		return ErrEmptyTaskID
	}
	switch event.Type {
	case eventTaskCreated, eventTaskUpdated, eventTaskDeleted:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}
	if event.Type == eventTaskDeleted {
		h.log.Info().Int64("task_id", event.TaskID).Msg("task deleted")
		return nil
	}
	if !event.NeedsNotification() {
		return nil
	}

	if strings.TrimSpace(event.AssignedTo) == "" {
		h.log.Info().Int64("task_id", event.TaskID).Msg("task has no assignee, skip notification")
		return nil
	}

	if err := h.notifier.SendNotification(ctx, NewNotificationFromEvent(event)); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
