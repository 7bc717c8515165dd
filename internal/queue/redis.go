// Package queue feeds documents to the processor from a Redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/async"
	"github.com/joseph-ayodele/docparse/internal/common"
)

const DefaultKey = "docparse:jobs"

type RedisQueue struct {
	client *redis.Client
	key    string
}

func New(url, key string) (*RedisQueue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{client: redis.NewClient(opt), key: key}, nil
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

type payload struct {
	Path    string `json:"path"`
	Class   string `json:"class,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// Encode renders a job as the list payload.
func Encode(job async.Job) (string, error) {
	b, err := json.Marshal(payload{Path: job.Path, Class: string(job.Class), TraceID: job.TraceID})
	return string(b), err
}

// Decode parses a list payload. A payload that is not a JSON object is taken
// as a bare file path.
func Decode(s string) (async.Job, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return async.Job{}, errors.New("empty job payload")
	}
	if !strings.HasPrefix(s, "{") {
		return async.Job{Path: s, Class: constants.ClassAuto}, nil
	}
	var p payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return async.Job{}, fmt.Errorf("decode job: %w", err)
	}
	v := common.NewValidator().
		Field("path", p.Path, common.Required, common.DocumentPath).
		Field("class", p.Class, common.Class).
		Field("trace_id", p.TraceID, common.TraceID)
	if err := v.Error(); err != nil {
		return async.Job{}, fmt.Errorf("job payload: %w", err)
	}
	class, _ := constants.Canonicalize(p.Class)
	return async.Job{Path: p.Path, Class: class, TraceID: p.TraceID}, nil
}

func (q *RedisQueue) Push(ctx context.Context, job async.Job) error {
	s, err := Encode(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, s).Err()
}

// Pop waits up to timeout for a job. ok is false when none arrived.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (job async.Job, ok bool, err error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return async.Job{}, false, nil
	}
	if err != nil {
		return async.Job{}, false, err
	}
	if len(res) < 2 {
		return async.Job{}, false, nil
	}
	job, err = Decode(res[1])
	if err != nil {
		return async.Job{}, false, err
	}
	return job, true, nil
}

func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Forward moves jobs from the list into sink until ctx ends. Malformed
// payloads are logged and dropped.
func (q *RedisQueue) Forward(ctx context.Context, sink async.Queue, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("redis intake started", "key", q.key)
	for ctx.Err() == nil {
		job, ok, err := q.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn("redis intake error", "key", q.key, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if !ok {
			continue
		}
		job.SubmittedAt = time.Now()
		if err := sink.Enqueue(ctx, job); err != nil {
			logger.Warn("redis intake enqueue failed", "path", job.Path, "error", err)
		}
	}
	logger.Info("redis intake stopped", "key", q.key)
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
