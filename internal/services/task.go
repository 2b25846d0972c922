package services

import (
	"context"
	"log"
	"strings"

	"github.com/taskhive/apiserver/internal/events"
	"github.com/taskhive/apiserver/types"
)

// TaskRepository defines persistence operations for tasks. Every operation
// is scoped by owner id; a task owned by someone else behaves exactly like
// a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task types.Task) (types.Task, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error)
	GetForOwner(ctx context.Context, ownerID, taskID int) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, ownerID, taskID int) error
}

// EventPublisher emits task lifecycle events to the feed.
type EventPublisher interface {
	Publish(ctx context.Context, event events.TaskEvent) error
}

// TaskArchiver stores a tombstone for a task about to be deleted.
type TaskArchiver interface {
	Archive(ctx context.Context, task types.Task) error
}

// TaskService encapsulates task use-cases. The owner id always comes from
// the caller's verified identity, never from request input.
type TaskService struct {
	repo     TaskRepository
	feed     EventPublisher
	archiver TaskArchiver
}

// NewTaskService constructs a TaskService. feed and archiver may be nil,
// in which case publishing and archival are skipped.
func NewTaskService(repo TaskRepository, feed EventPublisher, archiver TaskArchiver) *TaskService {
	return &TaskService{repo: repo, feed: feed, archiver: archiver}
}

// Create validates and stores a new task for ownerID. A zero priority
// means "unset" and defaults to 5; values outside [1,10] are rejected.
func (s *TaskService) Create(ctx context.Context, ownerID int, title, description string, priority int) (types.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.Task{}, ErrInvalidInput
	}
	priority, err := normalizePriority(priority)
	if err != nil {
		return types.Task{}, err
	}

	task, err := s.repo.Create(ctx, types.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Priority:    priority,
	})
	if err != nil {
		return types.Task{}, err
	}

	s.publish(ctx, events.TaskCreated, task)
	return task, nil
}

// List returns all tasks owned by ownerID, newest first.
func (s *TaskService) List(ctx context.Context, ownerID int) ([]types.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update applies the non-nil patch fields to the task. Returns
// store.ErrNotFound when the task is missing or owned by someone else.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID int, patch types.TaskPatch) (types.Task, error) {
	task, err := s.repo.GetForOwner(ctx, ownerID, taskID)
	if err != nil {
		return types.Task{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return types.Task{}, ErrInvalidInput
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		priority, err := normalizePriority(*patch.Priority)
		if err != nil {
			return types.Task{}, err
		}
		task.Priority = priority
	}

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return types.Task{}, err
	}

	s.publish(ctx, events.TaskUpdated, updated)
	return updated, nil
}

// Remove deletes the task under the same ownership rule as Update. The
// task is archived first when an archiver is configured.
func (s *TaskService) Remove(ctx context.Context, ownerID, taskID int) error {
	task, err := s.repo.GetForOwner(ctx, ownerID, taskID)
	if err != nil {
		return err
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, task); err != nil {
			log.Printf("task archive failed for task %d: %v", task.ID, err)
		}
	}

	if err := s.repo.Delete(ctx, ownerID, taskID); err != nil {
		return err
	}

	s.publish(ctx, events.TaskDeleted, task)
	return nil
}

// publish is best effort: a broker outage must not fail the request.
func (s *TaskService) publish(ctx context.Context, eventType string, task types.Task) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, events.NewTaskEvent(eventType, task)); err != nil {
		log.Printf("task event publish failed for task %d: %v", task.ID, err)
	}
}

func normalizePriority(priority int) (int, error) {
	if priority == 0 {
		return types.DefaultPriority, nil
	}
	if priority < types.MinPriority || priority > types.MaxPriority {
		return 0, ErrInvalidInput
	}
	return priority, nil
}
