package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// typedTask is the structural shape a task must have: a stable name and
// a handler taking its payload type. No interface import is required on
// the task side.
type typedTask[P any] interface {
	Name() string
	Handle(context.Context, P) error
}

// taskExecutor erases the payload type so tasks with different argument
// shapes share one registry.
type taskExecutor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type taskRegistry struct {
	executors map[string]taskExecutor
	mu        sync.RWMutex
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{executors: make(map[string]taskExecutor)}
}

func (r *taskRegistry) register(name string, executor taskExecutor) {
	r.mu.Lock()
	r.executors[name] = executor
	r.mu.Unlock()
}

func (r *taskRegistry) get(name string) (taskExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[name]
	return executor, ok
}

func (r *taskRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Collect(maps.Keys(r.executors))
}

// taskWrapper bridges a typed handler into the type-erased registry by
// unmarshaling the raw payload into P before dispatch.
type taskWrapper[P any, T typedTask[P]] struct {
	task T
}

func newTaskWrapper[P any, T typedTask[P]](task T) *taskWrapper[P, T] {
	return &taskWrapper[P, T]{task: task}
}

func (w *taskWrapper[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return w.task.Handle(ctx, payload)
}
