package location

import (
	"context"
	"time"
)

type Locator interface {
	Locate(ctx context.Context, opts Options) (*Position, error)
}

const DefaultMockDelay = 500 * time.Millisecond

// MockLocator resolves to a fixed pair after Delay. It ignores Options and
// never fails unless ctx is cancelled first.
type MockLocator struct {
	Coordinates Coordinates
	Delay       time.Duration
}

var _ Locator = (*MockLocator)(nil)

func NewMockLocator(c Coordinates, delay time.Duration) *MockLocator {
	return &MockLocator{Coordinates: c, Delay: delay}
}

func (m *MockLocator) Locate(ctx context.Context, _ Options) (*Position, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &Position{Coordinates: m.Coordinates, Timestamp: time.Now()}, nil
}
