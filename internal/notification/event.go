package notification

import (
	"fmt"
	"strings"
	"time"
)

const (
	eventTaskCreated = "task.created"
	eventTaskUpdated = "task.updated"
	eventTaskDeleted = "task.deleted"

	statusCompleted = "COMPLETED"
)

// TaskEvent mirrors the payload written by internal/task/kafka.go.
type TaskEvent struct {
	EventID        string    `json:"eventId"`
	Type           string    `json:"type"`
	TaskID         int64     `json:"taskId"`
	Title          string    `json:"title,omitempty"`
	AssignedTo     string    `json:"assignedTo,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type Notification struct {
	Type        string
	TaskID      int64
	RecipientID string
	Message     string
	CreatedAt   time.Time
}

// NeedsNotification reports whether the assignee should hear about the event:
// a new task, or a task that moved into COMPLETED. Re-saving an already
// completed task stays silent.
func (e TaskEvent) NeedsNotification() bool {
	switch e.Type {
	case eventTaskCreated:
		return true
	case eventTaskUpdated:
		return strings.EqualFold(e.Status, statusCompleted) &&
			!strings.EqualFold(e.PreviousStatus, statusCompleted)
	default:
		return false
	}
}

func NewNotificationFromEvent(event TaskEvent) Notification {
	notification := Notification{
		TaskID:      event.TaskID,
		RecipientID: event.AssignedTo,
		CreatedAt:   time.Now(),
	}

	switch event.Type {
	case eventTaskCreated:
		notification.Type = "task_assigned"
		notification.Message = fmt.Sprintf("Task #%d %q was assigned to you", event.TaskID, event.Title)
	default:
		notification.Type = "task_completed"
		notification.Message = fmt.Sprintf("Task #%d %q was marked completed", event.TaskID, event.Title)
	}
	return notification
}
