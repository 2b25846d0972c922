// Package archive writes tombstones for deleted tasks to object storage so
// an operator can recover data removed by mistake.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/taskhive/apiserver/types"
)

// ObjectStore defines common object operations across backends.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Bucket() string
}

// Archiver stores deleted tasks as JSON objects.
type Archiver struct {
	store ObjectStore
}

// NewArchiver constructs an Archiver over the provided backend.
func NewArchiver(store ObjectStore) *Archiver {
	return &Archiver{store: store}
}

// EnsureBucket ensures the archive bucket exists.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	return a.store.EnsureBucket(ctx)
}

// Archive writes the task under tasks/{owner}/{id}.json.
func (a *Archiver) Archive(ctx context.Context, task types.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	key := objectKey(task)
	return a.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json")
}

// Fetch reads a previously archived task back.
func (a *Archiver) Fetch(ctx context.Context, task types.Task) (types.Task, error) {
	reader, err := a.store.Get(ctx, objectKey(task))
	if err != nil {
		return types.Task{}, err
	}
	defer reader.Close()

	var archived types.Task
	if err := json.NewDecoder(reader).Decode(&archived); err != nil {
		return types.Task{}, err
	}
	return archived, nil
}

func objectKey(task types.Task) string {
	return fmt.Sprintf("tasks/%d/%d.json", task.OwnerID, task.ID)
}
