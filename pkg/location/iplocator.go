package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// IPLocator resolves the host position through an ip-api.com compatible
// lookup endpoint.
type IPLocator struct {
	h         *http.Client
	lookupURL string
	logger    *slog.Logger

	mu   sync.Mutex
	last *Position
	now  func() time.Time
}

var _ Locator = (*IPLocator)(nil)

func NewIPLocator(h *http.Client, lookupURL string, logger *slog.Logger) *IPLocator {
	if logger == nil {
		logger = slog.Default()
	}

	return &IPLocator{
		h:         h,
		lookupURL: lookupURL,
		logger:    logger.With("component", "ip_locator"),
		now:       time.Now,
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (l *IPLocator) Locate(ctx context.Context, opts Options) (*Position, error) {
	if pos := l.cached(opts.MaximumAge); pos != nil {
		l.logger.DebugContext(ctx, "reusing cached position", "coordinates", pos.Coordinates.String())
		return pos, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	u, err := url.Parse(l.lookupURL)
	if err != nil {
		return nil, &PositionError{Code: CodeUnknown, Err: fmt.Errorf("parse lookup url: %w", err)}
	}

	q := u.Query()
	q.Set("fields", "status,message,lat,lon")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &PositionError{Code: CodeUnknown, Err: fmt.Errorf("create request: %w", err)}
	}

	l.logger.DebugContext(ctx, "looking up position", "high_accuracy", opts.HighAccuracy)

	res, err := l.h.Do(req)
	if err != nil {
		return nil, &PositionError{Code: transportCode(err), Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, &PositionError{Code: PermissionDenied, Err: fmt.Errorf("lookup returned status %d", res.StatusCode)}
	case res.StatusCode >= 500:
		return nil, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("lookup returned status %d", res.StatusCode)}
	case res.StatusCode != http.StatusOK:
		return nil, &PositionError{Code: CodeUnknown, Err: fmt.Errorf("lookup returned status %d", res.StatusCode)}
	}

	var body ipLookupResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		if ctx.Err() != nil {
			return nil, &PositionError{Code: transportCode(err), Err: err}
		}
		return nil, &PositionError{Code: CodeUnknown, Err: fmt.Errorf("decode response: %w", err)}
	}

	if body.Status != "success" {
		return nil, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("lookup failed: %s", body.Message)}
	}

	c, err := NewCoordinates(body.Lat, body.Lon)
	if err != nil {
		return nil, &PositionError{Code: PositionUnavailable, Err: err}
	}

	pos := &Position{Coordinates: c, Timestamp: l.now()}

	l.mu.Lock()
	l.last = pos
	l.mu.Unlock()

	return pos, nil
}

func (l *IPLocator) cached(maxAge time.Duration) *Position {
	if maxAge <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last == nil || l.now().Sub(l.last.Timestamp) > maxAge {
		return nil
	}

	pos := *l.last
	return &pos
}

func transportCode(err error) ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	return PositionUnavailable
}
