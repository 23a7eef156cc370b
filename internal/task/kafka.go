package task

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// TaskEvent is the Kafka payload for a task change. PreviousStatus is only
// set on task.updated.
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

func newTaskEvent(eventType string, t Task) TaskEvent {
	event := TaskEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		TaskID:    t.ID,
		Status:    string(t.Status),
		Timestamp: time.Now(),
	}
	if t.Title != nil {
		event.Title = *t.Title
	}
	if t.AssignedTo != nil {
		event.AssignedTo = *t.AssignedTo
	}
	return event
}

type KafkaProducer interface {
	SendTaskEvent(ctx context.Context, event TaskEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	return &kafkaProducer{writer: writer}
}

// SendTaskEvent keys messages by task id so events of one task stay ordered.
func (p *kafkaProducer) SendTaskEvent(ctx context.Context, event TaskEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.TaskID, 10)),
		Value: eventJSON,
		Time:  event.Timestamp,
	}

	return p.writer.WriteMessages(ctx, message)
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}
