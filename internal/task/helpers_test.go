package task

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bingshan1999/TaskManager/internal/cfg"
	"github.com/bingshan1999/TaskManager/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(cfg.DatabaseConfig{
		Driver: cfg.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "tasks.db"),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string {
	return &s
}

type fakeProducer struct {
	events chan TaskEvent
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{events: make(chan TaskEvent, 16)}
}

func (p *fakeProducer) SendTaskEvent(_ context.Context, event TaskEvent) error {
	p.events <- event
	return nil
}

func (p *fakeProducer) Close() error {
	return nil
}

// countingRepository counts GetTask calls that reach the wrapped repository.
type countingRepository struct {
	TaskRepository

	mu   sync.Mutex
	gets int
}

func (r *countingRepository) GetTask(ctx context.Context, id int64) (Task, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	return r.TaskRepository.GetTask(ctx, id)
}

func (r *countingRepository) getCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}
