package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"taskboard/internal/models"
)

// DefaultKey is the storage key holding the task collection.
const DefaultKey = "task_management_system_tasks"

// Backend is a string key-value store with whole-value reads and writes.
type Backend interface {
	// GetItem returns the value stored under key. ok is false when the key is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	// SetItem replaces the value stored under key.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// DeserializationError reports a persisted value that is not a valid task collection.
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to decode tasks under %q: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// StorageWriteError reports a write rejected by the backend.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write tasks under %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// TaskStore keeps the whole task collection as one JSON array under a
// single key. Every mutation reads the full collection, changes it and
// writes it back.
//
// GetAll, SaveAll, Add, Update and Delete never return errors: read
// failures yield an empty collection and write failures leave the
// persisted value untouched, both logged. A mutation never writes over a
// value it could not read, unless that value is corrupt. Load, Save,
// Replace, AddTask, UpdateTask and DeleteTask expose the underlying errors.
type TaskStore struct {
	backend Backend
	key     string
	logger  *slog.Logger

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *TaskStore) { s.key = key }
}

// WithLogger sets the logger used for recovered storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *TaskStore) { s.logger = logger }
}

// NewTaskStore creates a task store on top of the given backend.
func NewTaskStore(backend Backend, opts ...Option) *TaskStore {
	s := &TaskStore{
		backend: backend,
		key:     DefaultKey,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key in use.
func (s *TaskStore) Key() string {
	return s.key
}

// Load reads the collection. An absent value is an empty collection.
// A value that does not decode returns a *DeserializationError.
func (s *TaskStore) Load(ctx context.Context) ([]models.Task, error) {
	raw, ok, err := s.backend.GetItem(ctx, s.key)
	if err != nil {
		return []models.Task{}, fmt.Errorf("failed to read tasks: %w", err)
	}
	if !ok {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return []models.Task{}, &DeserializationError{Key: s.key, Err: err}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Save serializes the collection and replaces the stored value.
// A rejected write returns a *StorageWriteError.
func (s *TaskStore) Save(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := s.backend.SetItem(ctx, s.key, string(data)); err != nil {
		return &StorageWriteError{Key: s.key, Err: err}
	}
	return nil
}

// GetAll returns every task, or an empty collection if the stored value
// is missing or unreadable.
func (s *TaskStore) GetAll(ctx context.Context) []models.Task {
	tasks, err := s.Load(ctx)
	if err != nil {
		s.logger.Error("failed to read tasks", "key", s.key, "error", err)
	}
	return tasks
}

// SaveAll replaces the stored collection. Write failures are logged.
func (s *TaskStore) SaveAll(ctx context.Context, tasks []models.Task) {
	if err := s.Replace(ctx, tasks); err != nil {
		s.logger.Error("failed to save tasks", "key", s.key, "count", len(tasks), "error", err)
	}
}

// Replace is SaveAll with the write error returned.
func (s *TaskStore) Replace(ctx context.Context, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Save(ctx, tasks)
}

// Get returns the first task with the given id.
func (s *TaskStore) Get(ctx context.Context, id string) (models.Task, bool) {
	for _, task := range s.GetAll(ctx) {
		if task.ID() == id {
			return task, true
		}
	}
	return nil, false
}

// Add appends task to the collection. Ids are not checked for uniqueness.
func (s *TaskStore) Add(ctx context.Context, task models.Task) []models.Task {
	tasks, _ := s.AddTask(ctx, task)
	return tasks
}

// Update shallow-merges updates into the first task with the given id.
// Fields missing from updates are kept. An unknown id leaves the
// collection unchanged; it is written back either way.
func (s *TaskStore) Update(ctx context.Context, id string, updates models.Task) []models.Task {
	tasks, _ := s.UpdateTask(ctx, id, updates)
	return tasks
}

// Delete removes every task with the given id, keeping the order of the rest.
func (s *TaskStore) Delete(ctx context.Context, id string) []models.Task {
	tasks, _ := s.DeleteTask(ctx, id)
	return tasks
}

// AddTask is Add with storage errors returned.
func (s *TaskStore) AddTask(ctx context.Context, task models.Task) ([]models.Task, error) {
	return s.mutate(ctx, func(tasks []models.Task) []models.Task {
		return append(tasks, task)
	})
}

// UpdateTask is Update with storage errors returned.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, updates models.Task) ([]models.Task, error) {
	return s.mutate(ctx, func(tasks []models.Task) []models.Task {
		for i := range tasks {
			if tasks[i].ID() == id {
				tasks[i] = tasks[i].Merge(updates)
				break
			}
		}
		return tasks
	})
}

// DeleteTask is Delete with storage errors returned.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) ([]models.Task, error) {
	return s.mutate(ctx, func(tasks []models.Task) []models.Task {
		kept := make([]models.Task, 0, len(tasks))
		for _, task := range tasks {
			if task.ID() != id {
				kept = append(kept, task)
			}
		}
		return kept
	})
}

// mutate runs one read-modify-write cycle under the lock. A corrupt value
// is replaced as if it were empty. Any other read failure aborts before
// writing so an unreadable collection is never overwritten. Errors are
// logged and returned; the returned slice is what was written, or
// attempted.
func (s *TaskStore) mutate(ctx context.Context, change func([]models.Task) []models.Task) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.Load(ctx)
	if err != nil {
		s.logger.Error("failed to read tasks", "key", s.key, "error", err)
		var derr *DeserializationError
		if !errors.As(err, &derr) {
			return tasks, err
		}
	}

	tasks = change(tasks)
	if err := s.Save(ctx, tasks); err != nil {
		s.logger.Error("failed to save tasks", "key", s.key, "count", len(tasks), "error", err)
		return tasks, err
	}
	return tasks, nil
}
