package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newCachedTestRepo(t *testing.T) (TaskRepository, *countingRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	counting := &countingRepository{TaskRepository: NewRepository(newTestDB(t))}
	return NewCachedRepository(counting, rdb, time.Minute, zerolog.Nop()), counting, mr
}

func TestCachedRepositoryGet(t *testing.T) {
	ctx := context.Background()
	repo, counting, mr := newCachedTestRepo(t)

	task := Task{Title: strPtr("T"), AssignedTo: strPtr("A"), Status: StatusPending, CreatedAt: time.Now()}
	if err := repo.CreateTask(ctx, &task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	first, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	second, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("cached GetTask() error = %v", err)
	}

	if calls := counting.getCalls(); calls != 1 {
		t.Errorf("database reads = %d, want 1", calls)
	}
	if !mr.Exists(cacheKey(task.ID)) {
		t.Error("expected cache entry")
	}
	if mr.TTL(cacheKey(task.ID)) != time.Minute {
		t.Errorf("ttl = %v, want 1m", mr.TTL(cacheKey(task.ID)))
	}
	if *second.Title != *first.Title || second.Status != first.Status || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("cached task = %+v, want %+v", second, first)
	}
}

func TestCachedRepositoryInvalidation(t *testing.T) {
	ctx := context.Background()
	repo, _, mr := newCachedTestRepo(t)

	task := Task{Title: strPtr("T"), AssignedTo: strPtr("A"), CreatedAt: time.Now()}
	if err := repo.CreateTask(ctx, &task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := repo.GetTask(ctx, task.ID); err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}

	if err := repo.UpdateTask(ctx, task.ID, Fields{Title: strPtr("T2"), AssignedTo: strPtr("A")}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if mr.Exists(cacheKey(task.ID)) {
		t.Error("cache entry survived update")
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if *got.Title != "T2" {
		t.Errorf("title = %q, want T2", *got.Title)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if mr.Exists(cacheKey(task.ID)) {
		t.Error("cache entry survived delete")
	}
	if _, err := repo.GetTask(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask() after delete error = %v, want ErrTaskNotFound", err)
	}
}

func TestCachedRepositoryRedisDown(t *testing.T) {
	ctx := context.Background()
	repo, counting, mr := newCachedTestRepo(t)

	task := Task{Title: strPtr("T"), AssignedTo: strPtr("A"), CreatedAt: time.Now()}
	if err := repo.CreateTask(ctx, &task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	mr.Close()

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() with redis down error = %v", err)
	}
	if *got.Title != "T" {
		t.Errorf("title = %q, want T", *got.Title)
	}
	if calls := counting.getCalls(); calls != 1 {
		t.Errorf("database reads = %d, want 1", calls)
	}
}

func TestCachedRepositoryMissIsNotCached(t *testing.T) {
	repo, _, mr := newCachedTestRepo(t)

	if _, err := repo.GetTask(context.Background(), 404); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("GetTask() error = %v, want ErrTaskNotFound", err)
	}
	if mr.Exists(cacheKey(404)) {
		t.Error("not found result was cached")
	}
}

// gatedRepository pauses the first GetTask after the database read until
// release is closed.
type gatedRepository struct {
	TaskRepository

	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *gatedRepository) GetTask(ctx context.Context, id int64) (Task, error) {
	task, err := r.TaskRepository.GetTask(ctx, id)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return task, err
}

func TestCachedRepositoryStaleFillAfterUpdate(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	base := NewRepository(newTestDB(t))
	task := Task{Title: strPtr("old"), AssignedTo: strPtr("A"), CreatedAt: time.Now()}
	if err := base.CreateTask(ctx, &task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	gated := &gatedRepository{TaskRepository: base, read: make(chan struct{}), release: make(chan struct{})}
	repo := NewCachedRepository(gated, rdb, time.Minute, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := repo.GetTask(ctx, task.ID)
		done <- err
	}()

	<-gated.read
	if err := repo.UpdateTask(ctx, task.ID, Fields{Title: strPtr("new"), AssignedTo: strPtr("A")}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("racing GetTask() error = %v", err)
	}

	if mr.Exists(cacheKey(task.ID)) {
		t.Error("read that started before the update filled the cache")
	}
	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if *got.Title != "new" {
		t.Errorf("title = %q, want new", *got.Title)
	}
}
