package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/reusedev/autowriter-client/internal/modules/logs"
)

var (
	ErrClosed     = errors.New("task queue closed")
	errNotStarted = errors.New("task not started")
)

type Task interface {
	Execute(ctx context.Context) error
}

type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

type TaskQueue chan Task

func NewTaskQueue(size int) TaskQueue {
	return make(TaskQueue, size)
}

// Pool runs queued tasks on a fixed number of workers. Tasks dequeued after ctx
// is done are not executed.
type Pool struct {
	ctx    context.Context
	queue  TaskQueue
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewPool(ctx context.Context, workers, size int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{ctx: ctx, queue: NewTaskQueue(size)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.queue {
		if p.ctx.Err() != nil {
			continue
		}
		if err := task.Execute(p.ctx); err != nil {
			logs.Logger.Debug().Err(err).Msg("task failed")
		}
	}
}

// Submit blocks while the queue is full.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- task:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
		logs.Logger.Debug().Msg("task queue closed")
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Run executes tasks concurrently and returns their errors by position. A task
// that never started because ctx ended reports ctx.Err().
func Run(ctx context.Context, workers int, tasks ...Task) []error {
	errs := make([]error, len(tasks))
	p := NewPool(ctx, workers, len(tasks))
	for i, task := range tasks {
		errs[i] = errNotStarted
		_ = p.Submit(TaskFunc(func(ctx context.Context) error {
			errs[i] = task.Execute(ctx)
			return errs[i]
		}))
	}
	p.Close()
	for i, err := range errs {
		if err == errNotStarted {
			errs[i] = ctx.Err()
		}
	}
	return errs
}
