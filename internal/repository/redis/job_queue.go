package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/OliverWarwick/terminal-bot/internal/repository"
)

// matchQueueKey is the single list backing the self-play job queue.
// Unlike the teacher's per-game keyspace (game:<id>:state, ...), a job
// queue has one well-known key: there is no per-match Redis state once
// a job has been handed to a worker.
const matchQueueKey = "arena:match_queue"

// Enqueue pushes a match job onto the queue.
func (c *Client) Enqueue(ctx context.Context, job repository.MatchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal match job: %w", err)
	}
	if err := c.rdb.RPush(ctx, matchQueueKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue match job: %w", err)
	}
	return nil
}

// Dequeue blocks until a match job is available, or ctx is done.
func (c *Client) Dequeue(ctx context.Context) (*repository.MatchJob, error) {
	res, err := c.rdb.BLPop(ctx, 0, matchQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue match job: %w", err)
	}
	if len(res) < 2 {
		return nil, fmt.Errorf("dequeue match job: malformed BLPOP reply")
	}
	var job repository.MatchJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal match job: %w", err)
	}
	return &job, nil
}

// Len reports how many match jobs are currently queued.
func (c *Client) Len(ctx context.Context) (int64, error) {
	n, err := c.rdb.LLen(ctx, matchQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
