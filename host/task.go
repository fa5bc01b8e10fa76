package host

import (
	"context"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/errors"
)

// Task is a load running on its own goroutine.
type Task struct {
	done   chan struct{}
	result *entities.LoadResult
	err    error
	name   string
}

// Launch starts Load on a new goroutine and returns immediately. A failed
// load is logged at error level whether or not anyone waits on the Task.
func (l *Loader) Launch(ctx context.Context, bridge ImportObject, name string) *Task {
	t := &Task{done: make(chan struct{}), name: name}
	go func() {
		defer close(t.done)
		t.result, t.err = l.Load(ctx, bridge, name)
		if t.err != nil {
			stage := "unknown"
			if s, ok := errors.StageOf(t.err); ok {
				stage = s.String()
			}
			l.config.logger.ErrorContext(ctx, "program load failed",
				"program", name, "stage", stage, "error", t.err)
		}
	}()
	return t
}

// Name returns the program name of the task.
func (t *Task) Name() string {
	return t.name
}

// Done is closed when the load has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the load finishes or ctx is done. Giving up on ctx
// does not stop the load.
func (t *Task) Wait(ctx context.Context) (*entities.LoadResult, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns the load error once the task is done, nil before that.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Result returns the load result once the task succeeded, nil otherwise.
func (t *Task) Result() *entities.LoadResult {
	select {
	case <-t.done:
		return t.result
	default:
		return nil
	}
}
