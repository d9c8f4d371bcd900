package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// UploadRemover deletes a stored upload by its public URL.
type UploadRemover interface {
	Remove(url string) error
}

// DiscardUploadTask removes an upload that no record references anymore.
type DiscardUploadTask struct {
	URL string `json:"url"`
}

// Config returns the queue configuration for discard tasks.
func (t DiscardUploadTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "discard_upload",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// DiscardUploadProcessor creates a processor function for DiscardUploadTask.
func DiscardUploadProcessor(remover UploadRemover) backlite.QueueProcessor[DiscardUploadTask] {
	return func(ctx context.Context, task DiscardUploadTask) error {
		if remover == nil {
			return fmt.Errorf("upload remover not configured")
		}
		if err := remover.Remove(task.URL); err != nil {
			return fmt.Errorf("discard upload %s: %w", task.URL, err)
		}
		log.Debug().Str("url", task.URL).Msg("discarded upload")
		return nil
	}
}

// NewDiscardUploadQueue creates a backlite queue for discard tasks.
func NewDiscardUploadQueue(remover UploadRemover) backlite.Queue {
	return backlite.NewQueue(DiscardUploadProcessor(remover))
}

// Enqueuer adds tasks to the queue.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// QueuedDiscarder hands stale uploads to the task queue. If enqueueing
// fails the files are removed inline instead.
type QueuedDiscarder struct {
	queue   Enqueuer
	remover UploadRemover
}

func NewQueuedDiscarder(queue Enqueuer, remover UploadRemover) *QueuedDiscarder {
	return &QueuedDiscarder{queue: queue, remover: remover}
}

func (d *QueuedDiscarder) Discard(ctx context.Context, urls ...string) {
	batch := make([]backlite.Task, 0, len(urls))
	for _, url := range urls {
		if url != "" {
			batch = append(batch, DiscardUploadTask{URL: url})
		}
	}
	if len(batch) == 0 {
		return
	}

	if _, err := d.queue.Add(batch...).Ctx(ctx).Save(); err != nil {
		log.Warn().Err(err).Int("count", len(batch)).Msg("failed to enqueue upload discard, removing inline")
		for _, task := range batch {
			url := task.(DiscardUploadTask).URL
			if err := d.remover.Remove(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("failed to discard upload")
			}
		}
	}
}
