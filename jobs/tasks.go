package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCacheWarmup refreshes the first list pages of each entity.
	TaskCacheWarmup = "console:cache_warmup"
)

// WarmupPayload selects what a warmup run fetches. Empty Entities means all.
type WarmupPayload struct {
	Entities []string `json:"entities,omitempty"`
	Pages    int      `json:"pages,omitempty"`
}

// NewWarmupTask constructs a cache warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheWarmup, data), nil
}
