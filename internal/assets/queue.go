package assets

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// Request is one background fetch. Its result is safe to read from any
// goroutine once Done reports true.
type Request struct {
	Path string

	done   chan struct{}
	cancel context.CancelFunc
	data   []byte
	err    error

	onSuccess func([]byte)
	onFail    func(error)
}

// Done reports whether the fetch finished, successfully or not.
func (r *Request) Done() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the fetch finished.
func (r *Request) Wait() {
	<-r.done
}

// Result returns the payload or error. Only meaningful once Done.
func (r *Request) Result() ([]byte, error) {
	return r.data, r.err
}

// Cancel aborts the fetch. A cancelled request finishes with
// context.Canceled unless it already completed.
func (r *Request) Cancel() {
	r.cancel()
}

// Queue runs fetches in the background with bounded concurrency.
// Callbacks registered through AddFunc run on the goroutine calling
// Update.
type Queue struct {
	manager *Manager
	sem     *semaphore.Weighted
	timeout time.Duration
	ctx     context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
	log     *zap.Logger

	mu      sync.Mutex
	pending []*Request
}

// NewQueue creates a queue running at most workers fetches at once. A
// positive timeout bounds each fetch.
func NewQueue(m *Manager, workers int, timeout time.Duration) *Queue {
	ctx, stop := context.WithCancel(context.Background())
	return &Queue{
		manager: m,
		sem:     semaphore.NewWeighted(int64(max(workers, 1))),
		timeout: timeout,
		ctx:     ctx,
		stop:    stop,
		log:     logger.Named("assets.queue"),
	}
}

// Add starts fetching path.
func (q *Queue) Add(path string) *Request {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if q.timeout > 0 {
		ctx, cancel = context.WithTimeout(q.ctx, q.timeout)
	} else {
		ctx, cancel = context.WithCancel(q.ctx)
	}
	req := &Request{Path: path, done: make(chan struct{}), cancel: cancel}

	q.wg.Add(1)
	go q.run(ctx, req)
	return req
}

// AddFunc starts fetching path and calls exactly one of onSuccess or
// onFail from a later Update. Either callback may be nil.
func (q *Queue) AddFunc(path string, onSuccess func([]byte), onFail func(error)) *Request {
	req := q.Add(path)
	req.onSuccess = onSuccess
	req.onFail = onFail

	q.mu.Lock()
	q.pending = append(q.pending, req)
	q.mu.Unlock()
	return req
}

func (q *Queue) run(ctx context.Context, req *Request) {
	defer q.wg.Done()
	defer close(req.done)
	defer req.cancel()

	if err := q.sem.Acquire(ctx, 1); err != nil {
		req.err = err
		return
	}
	defer q.sem.Release(1)

	req.data, req.err = q.manager.Load(ctx, req.Path)
	if req.err != nil {
		q.log.Debug("fetch failed", zap.String("path", req.Path), zap.Error(req.err))
	}
}

// Update dispatches callbacks of finished AddFunc requests.
func (q *Queue) Update() {
	q.mu.Lock()
	var finished []*Request
	kept := q.pending[:0]
	for _, req := range q.pending {
		if req.Done() {
			finished = append(finished, req)
		} else {
			kept = append(kept, req)
		}
	}
	clear(q.pending[len(kept):])
	q.pending = kept
	q.mu.Unlock()

	for _, req := range finished {
		data, err := req.Result()
		switch {
		case err != nil && req.onFail != nil:
			req.onFail(err)
		case err == nil && req.onSuccess != nil:
			req.onSuccess(data)
		}
	}
}

// NumPending returns the number of AddFunc requests awaiting dispatch.
func (q *Queue) NumPending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close cancels outstanding fetches and waits for them to exit. Pending
// callbacks are dropped.
func (q *Queue) Close() {
	q.stop()
	q.wg.Wait()
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
}
