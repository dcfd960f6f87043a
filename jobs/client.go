package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// Client enqueues console tasks.
type Client struct {
	client *asynq.Client
}

// NewClient connects a task client to the queue's Redis.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueWarmup queues a warmup run. An identical payload enqueued within a
// minute is rejected with asynq.ErrDuplicateTask.
func (c *Client) EnqueueWarmup(ctx context.Context, payload WarmupPayload) (*asynq.TaskInfo, error) {
	task, err := NewWarmupTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.Unique(time.Minute), asynq.MaxRetry(3))
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
