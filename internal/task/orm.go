package task

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid status: must be PENDING, IN_PROGRESS or COMPLETED")
)

// ParseStatus accepts only the exact enum literals.
func ParseStatus(value string) (Status, error) {
	switch s := Status(value); s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
}

// Value stores an unset status as NULL.
func (s Status) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = Status(v)
	case []byte:
		*s = Status(v)
	default:
		return fmt.Errorf("cannot scan %T into task status", src)
	}
	return nil
}

// Task is a row of the tasks table. Title and AssignedTo are pointers so a
// missing value reaches the database as NULL and trips the NOT NULL constraint.
type Task struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       *string   `json:"title" gorm:"type:text;not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	AssignedTo  *string   `json:"assignedTo" gorm:"type:text;not null"`
	Status      Status    `json:"status,omitempty" gorm:"type:text;check:status IN ('PENDING','IN_PROGRESS','COMPLETED')"`
	CreatedAt   time.Time `json:"createdAt" gorm:"<-:create;not null"`
}

// Fields are the mutable columns of a task. Create and update always write
// all four of them.
type Fields struct {
	Title       *string
	Description *string
	AssignedTo  *string
	Status      Status
}

func (f Fields) columns() map[string]interface{} {
	return map[string]interface{}{
		"title":       f.Title,
		"description": f.Description,
		"assigned_to": f.AssignedTo,
		"status":      f.Status,
	}
}
