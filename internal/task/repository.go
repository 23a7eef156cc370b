package task

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type TaskRepository interface {
	TaskList(ctx context.Context) ([]Task, error)
	GetTask(ctx context.Context, id int64) (Task, error)
	CreateTask(ctx context.Context, t *Task) error
	UpdateTask(ctx context.Context, id int64, fields Fields) error
	TaskExists(ctx context.Context, id int64) (bool, error)
	DeleteTask(ctx context.Context, id int64) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Migrate creates or updates the tasks table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Task{})
}

func (r *taskRepository) TaskList(ctx context.Context) ([]Task, error) {
	tasks := make([]Task, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) GetTask(ctx context.Context, id int64) (Task, error) {
	var task Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Task{}, ErrTaskNotFound
	}
	return task, err
}

func (r *taskRepository) CreateTask(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// UpdateTask overwrites the mutable columns, NULLs included. A map is used
// because struct updates skip zero values.
func (r *taskRepository) UpdateTask(ctx context.Context, id int64, fields Fields) error {
	return r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Updates(fields.columns()).Error
}

func (r *taskRepository) TaskExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *taskRepository) DeleteTask(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Task{}).Error
}
