package jobs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerRejectsIncompleteRegistrations(t *testing.T) {
	_, err := NewWorker(WorkerConfig{Handlers: []TaskHandler{{Type: TaskCacheWarmup}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), TaskCacheWarmup)

	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	_, err = NewWorker(WorkerConfig{Cron: []CronRegistration{{Spec: "", Task: task}}})
	assert.Error(t, err)

	_, err = NewWorker(WorkerConfig{Cron: []CronRegistration{{Spec: "every tuesday", Task: task}}})
	assert.ErrorContains(t, err, "every tuesday")
}

func TestTaskFailureLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handle := taskFailureLogger(logger)
	task := asynq.NewTask(TaskCacheWarmup, nil)

	// Outside a worker there is no retry budget left, so any failure is final.
	handle(context.Background(), task, fmt.Errorf("decode: %w", asynq.SkipRetry))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "task failed permanently")
	assert.Contains(t, buf.String(), "task="+TaskCacheWarmup)
}

func TestAsynqLoggerForwardsToSlog(t *testing.T) {
	var buf bytes.Buffer
	l := asynqLogger{logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Info("scheduler ", "started")
	l.Fatal("redis gone")

	out := buf.String()
	assert.Contains(t, out, `msg="scheduler started"`)
	assert.Contains(t, out, `msg="redis gone" fatal=true`)
}
