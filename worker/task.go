package worker

import (
	"fmt"
	"sync"
	"time"

	"github.com/kostaleonard/leocoin/exception"
)

// Task is a long-running goroutine with a stop signal and a completion
// signal. The function receives the task so it can poll ShouldStop.
type Task struct {
	name     string
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	err      error
}

// Start runs fn on its own goroutine. Panics are recovered and reported as
// the task's error.
func Start(name string, fn func(t *Task) error) *Task {
	t := &Task{
		name:   name,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	exception.SafeGo(name, func() {
		finished := false
		defer func() {
			if !finished {
				t.err = fmt.Errorf("task %s panicked", name)
			}
			close(t.done)
		}()
		t.err = fn(t)
		finished = true
	})
	return t
}

func (t *Task) Name() string {
	return t.name
}

// Stop asks the task to finish. It does not wait.
func (t *Task) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}

func (t *Task) ShouldStop() bool {
	select {
	case <-t.stopCh:
		return true
	default:
		return false
	}
}

// Done is closed when the task function has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Sleep waits for d or until the task is stopped. It reports whether the
// full duration elapsed.
func (t *Task) Sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-t.stopCh:
		return false
	}
}

// Join waits up to timeout for the task to finish and returns its error.
// ok is false if the task was still running when the timeout expired.
func (t *Task) Join(timeout time.Duration) (err error, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.err, true
	case <-timer.C:
		return nil, false
	}
}

// StopAndJoin stops the task and waits for it.
func (t *Task) StopAndJoin(timeout time.Duration) (error, bool) {
	t.Stop()
	return t.Join(timeout)
}
