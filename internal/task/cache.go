package task

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const taskCachePrefix = "task:cache:"

type cachedRepository struct {
	next TaskRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedRepository puts a Redis cache-aside layer in front of GetTask.
// Writes go to next and then drop the cached entry. Redis errors are logged
// and the call falls through to next.
func NewCachedRepository(next TaskRepository, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) TaskRepository {
	return &cachedRepository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "task_cache").Logger(),
	}
}

func cacheKey(id int64) string {
	return taskCachePrefix + strconv.FormatInt(id, 10)
}

func versionKey(id int64) string {
	return taskCachePrefix + "ver:" + strconv.FormatInt(id, 10)
}

func (r *cachedRepository) TaskList(ctx context.Context) ([]Task, error) {
	return r.next.TaskList(ctx)
}

func (r *cachedRepository) GetTask(ctx context.Context, id int64) (Task, error) {
	key := cacheKey(id)

	data, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var task Task
		if err := json.Unmarshal(data, &task); err == nil {
			return task, nil
		}
		r.log.Warn().Int64("task_id", id).Msg("dropping undecodable cache entry")
		r.invalidate(ctx, id)
	case !errors.Is(err, redis.Nil):
		r.log.Warn().Err(err).Int64("task_id", id).Msg("cache read failed")
	}

	return r.load(ctx, id)
}

// load reads the task from next and fills the cache. The fill runs under
// WATCH on the task's version key, so a write that lands between the read
// and the SET aborts the fill instead of caching the old row.
func (r *cachedRepository) load(ctx context.Context, id int64) (Task, error) {
	var (
		task    Task
		readErr error
		loaded  bool
	)

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		task, readErr = r.next.GetTask(ctx, id)
		loaded = true
		if readErr != nil {
			return nil
		}

		data, err := json.Marshal(task)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(id), data, r.ttl)
			return nil
		})
		return err
	}, versionKey(id))

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		r.log.Debug().Int64("task_id", id).Msg("task changed during read, cache not filled")
	default:
		r.log.Warn().Err(err).Int64("task_id", id).Msg("cache write failed")
	}

	if !loaded {
		return r.next.GetTask(ctx, id)
	}
	if readErr != nil {
		return Task{}, readErr
	}
	return task, nil
}

func (r *cachedRepository) CreateTask(ctx context.Context, t *Task) error {
	return r.next.CreateTask(ctx, t)
}

func (r *cachedRepository) UpdateTask(ctx context.Context, id int64, fields Fields) error {
	err := r.next.UpdateTask(ctx, id, fields)
	r.invalidate(ctx, id)
	return err
}

func (r *cachedRepository) TaskExists(ctx context.Context, id int64) (bool, error) {
	return r.next.TaskExists(ctx, id)
}

func (r *cachedRepository) DeleteTask(ctx context.Context, id int64) error {
	err := r.next.DeleteTask(ctx, id)
	r.invalidate(ctx, id)
	return err
}

// invalidate drops the cached row and bumps the version key, which aborts
// any fill that started before this write.
func (r *cachedRepository) invalidate(ctx context.Context, id int64) {
	_, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey(id))
		pipe.Incr(ctx, versionKey(id))
		if r.ttl > 0 {
			pipe.Expire(ctx, versionKey(id), r.ttl)
		}
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Int64("task_id", id).Msg("cache invalidation failed")
	}
}
