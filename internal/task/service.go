package task

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type TaskService interface {
	TaskList(ctx context.Context) ([]Task, error)
	GetTask(ctx context.Context, id int64) (Task, error)
	CreateTask(ctx context.Context, fields Fields) (Task, error)
	UpdateTask(ctx context.Context, id int64, fields Fields) (Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

const eventPublishTimeout = 5 * time.Second

type taskService struct {
	repo          TaskRepository
	kafkaProducer KafkaProducer
	log           zerolog.Logger
}

// NewTaskService wires the service. kafkaProducer may be nil, in which case
// no events are published.
func NewTaskService(repo TaskRepository, kafkaProducer KafkaProducer, log zerolog.Logger) TaskService {
	return &taskService{
		repo:          repo,
		kafkaProducer: kafkaProducer,
		log:           log,
	}
}

func (s *taskService) TaskList(ctx context.Context) ([]Task, error) {
	return s.repo.TaskList(ctx)
}

func (s *taskService) GetTask(ctx context.Context, id int64) (Task, error) {
	return s.repo.GetTask(ctx, id)
}

func (s *taskService) CreateTask(ctx context.Context, fields Fields) (Task, error) {
	task := Task{
		Title:       fields.Title,
		Description: fields.Description,
		AssignedTo:  fields.AssignedTo,
		Status:      fields.Status,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateTask(ctx, &task); err != nil {
		s.log.Error().Err(err).Msg("failed to insert task")
		return Task{}, err
	}
	s.log.Info().Int64("task_id", task.ID).Msg("created task")

	s.publish(newTaskEvent(EventTaskCreated, task))
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id int64, fields Fields) (Task, error) {
	existing, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if err := s.repo.UpdateTask(ctx, id, fields); err != nil {
		s.log.Error().Err(err).Int64("task_id", id).Msg("failed to update task")
		return Task{}, err
	}

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	s.log.Info().Int64("task_id", id).Msg("updated task")

	event := newTaskEvent(EventTaskUpdated, task)
	event.PreviousStatus = string(existing.Status)
	s.publish(event)
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id int64) error {
	exists, err := s.repo.TaskExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTaskNotFound
	}

	if err := s.repo.DeleteTask(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("task_id", id).Msg("failed to delete task")
		return err
	}
	s.log.Info().Int64("task_id", id).Msg("deleted task")

	s.publish(newTaskEvent(EventTaskDeleted, Task{ID: id}))
	return nil
}

// publish sends the event in the background; the request never waits on Kafka.
func (s *taskService) publish(event TaskEvent) {
	if s.kafkaProducer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()

		if err := s.kafkaProducer.SendTaskEvent(ctx, event); err != nil {
			s.log.Warn().
				Err(err).
				Str("event", event.Type).
				Int64("task_id", event.TaskID).
				Msg("failed to send task event to kafka")
		}
	}()
}
