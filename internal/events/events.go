package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/taskhive/apiserver/types"
)

// Event types emitted on the task feed.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskEvent is the JSON payload published for every task mutation.
type TaskEvent struct {
	Type       string    `json:"type"`
	TaskID     int       `json:"task_id"`
	OwnerID    int       `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskEvent builds an event for the given task.
func NewTaskEvent(eventType string, task types.Task) TaskEvent {
	return TaskEvent{
		Type:       eventType,
		TaskID:     task.ID,
		OwnerID:    task.OwnerID,
		OccurredAt: time.Now(),
	}
}

// Backend defines the broker-agnostic publish operations used by the feed.
// This server only emits; consumers live in other processes.
type Backend interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Feed publishes task events to a configured backend.
type Feed struct {
	backend Backend
	topic   string
}

// NewFeed constructs a Feed publishing to the named topic.
func NewFeed(backend Backend, topic string) *Feed {
	return &Feed{backend: backend, topic: topic}
}

// Publish serializes the event and sends it to the feed topic.
func (f *Feed) Publish(ctx context.Context, event TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = f.backend.Publish(ctx, f.topic, data, map[string]string{"type": event.Type})
	return err
}

// Close closes the underlying backend.
func (f *Feed) Close() error {
	return f.backend.Close()
}
