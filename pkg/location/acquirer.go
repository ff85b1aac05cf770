package location

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/manzanit0/skydash/pkg/logger"
	"github.com/manzanit0/skydash/pkg/watch"
)

// Acquirer owns the location state. Only the latest GetLocation call may
// settle it.
type Acquirer struct {
	locator Locator
	opts    Options
	logger  *slog.Logger
	hub     watch.Hub

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State
	gen      uint64
	closed   bool
	inflight context.CancelFunc
}

type AcquirerOption func(*Acquirer)

func WithOptions(opts Options) AcquirerOption {
	return func(a *Acquirer) { a.opts = opts }
}

func WithLogger(l *slog.Logger) AcquirerOption {
	return func(a *Acquirer) { a.logger = l }
}

// NewAcquirer builds an acquirer over locator. A nil locator stands for a
// host without any location capability.
func NewAcquirer(locator Locator, options ...AcquirerOption) *Acquirer {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Acquirer{
		locator: locator,
		opts:    DefaultOptions(),
		logger:  slog.Default(),
		ctx:     ctx,
		cancel:  cancel,
		state:   State{IsLoading: true},
	}

	for _, o := range options {
		o(a)
	}
	a.logger = a.logger.With("component", "location_acquirer")

	return a
}

func (a *Acquirer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Acquirer) Subscribe() (<-chan struct{}, func()) {
	return a.hub.Subscribe()
}

// GetLocation starts a new acquisition. Coordinates from an earlier success
// stay visible while it runs.
func (a *Acquirer) GetLocation() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}

	a.gen++
	gen := a.gen
	if a.inflight != nil {
		a.inflight()
		a.inflight = nil
	}

	if a.locator == nil {
		a.state = State{Error: MsgUnsupported, Code: Unsupported}
		a.mu.Unlock()
		a.logger.Warn("location capability unavailable")
		a.hub.Publish()
		return
	}

	a.state = State{Coordinates: a.state.Coordinates, IsLoading: true}

	ctx, cancel := context.WithCancel(logger.WithTraceID(a.ctx))
	a.inflight = cancel
	a.wg.Add(1)
	a.mu.Unlock()

	a.hub.Publish()

	go func() {
		defer a.wg.Done()
		defer cancel()

		pos, err := a.locator.Locate(ctx, a.opts)
		a.settle(ctx, gen, pos, err)
	}()
}

func (a *Acquirer) settle(ctx context.Context, gen uint64, pos *Position, err error) {
	a.mu.Lock()
	if a.closed || gen != a.gen {
		a.mu.Unlock()
		a.logger.DebugContext(ctx, "discarding stale location result", "generation", gen)
		return
	}

	a.inflight = nil
	if err == nil && pos == nil {
		err = &PositionError{Code: PositionUnavailable, Err: errors.New("no position reported")}
	}

	if err != nil {
		a.state = State{Error: Message(err), Code: CodeOf(err)}
	} else {
		c := pos.Coordinates
		a.state = State{Coordinates: &c}
	}
	state := a.state
	a.mu.Unlock()

	if err != nil {
		a.logger.WarnContext(ctx, "unable to acquire location", "error", err.Error(), "code", state.Code.String())
	} else if state.Coordinates != nil {
		a.logger.InfoContext(ctx, "location acquired", "coordinates", state.Coordinates.String())
	}

	a.hub.Publish()
}

// Close cancels pending acquisitions. Results that arrive afterwards are
// dropped and further GetLocation calls do nothing.
func (a *Acquirer) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.cancel()
	a.mu.Unlock()

	a.wg.Wait()
}
