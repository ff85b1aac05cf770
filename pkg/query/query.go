// Package query keeps the state of a remote fetch keyed by coordinates.
package query

import (
	"context"
	"log/slog"
	"sync"

	"github.com/manzanit0/skydash/pkg/location"
	"github.com/manzanit0/skydash/pkg/logger"
	"github.com/manzanit0/skydash/pkg/watch"
)

type Fetcher[T any] func(ctx context.Context, c location.Coordinates) (*T, error)

// State is a snapshot of a query. A nil Key means the query is disabled.
type State[T any] struct {
	Data       *T
	Err        error
	IsFetching bool
	Key        *location.Coordinates
}

type Source[T any] interface {
	State() State[T]
	SetKey(c *location.Coordinates)
	Refetch()
	Subscribe() (<-chan struct{}, func())
	Close()
}

type Query[T any] struct {
	name   string
	fetch  Fetcher[T]
	logger *slog.Logger
	hub    watch.Hub

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State[T]
	gen      uint64
	closed   bool
	inflight context.CancelFunc
}

var _ Source[struct{}] = (*Query[struct{}])(nil)

func New[T any](name string, fetch Fetcher[T], l *slog.Logger) *Query[T] {
	if l == nil {
		l = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Query[T]{
		name:   name,
		fetch:  fetch,
		logger: l.With("component", "query", "query", name),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Query[T]) Subscribe() (<-chan struct{}, func()) {
	return q.hub.Subscribe()
}

// SetKey points the query at c. A nil c disables it and clears its state,
// the current key is a no-op and any other key drops the data and fetches.
func (q *Query[T]) SetKey(c *location.Coordinates) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}

	switch {
	case c == nil && q.state.Key == nil:
		q.mu.Unlock()
		return
	case c == nil:
		q.stop()
		q.state = State[T]{}
		q.mu.Unlock()
	case q.state.Key != nil && *q.state.Key == *c:
		q.mu.Unlock()
		return
	default:
		key := *c
		q.state = State[T]{Key: &key, IsFetching: true}
		q.start(key)
		q.mu.Unlock()
	}

	q.hub.Publish()
}

// Refetch reruns the fetch for the current key while leaving data and error
// in place until it settles.
func (q *Query[T]) Refetch() {
	q.mu.Lock()
	if q.closed || q.state.Key == nil {
		q.mu.Unlock()
		return
	}

	q.state.IsFetching = true
	q.start(*q.state.Key)
	q.mu.Unlock()

	q.hub.Publish()
}

// stop cancels the running fetch, if any. Callers hold q.mu.
func (q *Query[T]) stop() {
	q.gen++
	if q.inflight != nil {
		q.inflight()
		q.inflight = nil
	}
}

// start supersedes the running fetch with a new one for key. Callers hold q.mu.
func (q *Query[T]) start(key location.Coordinates) {
	q.stop()
	gen := q.gen

	ctx, cancel := context.WithCancel(logger.WithTraceID(q.ctx))
	q.inflight = cancel
	q.wg.Add(1)

	go func() {
		defer q.wg.Done()
		defer cancel()

		q.logger.DebugContext(ctx, "fetching", "coordinates", key.String())
		data, err := q.fetch(ctx, key)
		q.settle(ctx, gen, data, err)
	}()
}

func (q *Query[T]) settle(ctx context.Context, gen uint64, data *T, err error) {
	q.mu.Lock()
	if q.closed || gen != q.gen {
		q.mu.Unlock()
		q.logger.DebugContext(ctx, "discarding superseded result")
		return
	}

	q.inflight = nil
	q.state.IsFetching = false
	if err != nil {
		q.state.Err = err
	} else {
		q.state.Data = data
		q.state.Err = nil
	}
	q.mu.Unlock()

	if err != nil {
		q.logger.ErrorContext(ctx, "fetch failed", "error", err.Error())
	}

	q.hub.Publish()
}

// Close cancels the running fetch and waits for it to return. Late results
// are discarded.
func (q *Query[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
}
