package whttp

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Query params which must never reach the logs.
var secretParams = []string{"appid", "key", "access_key", "api_key"}

type LoggingRoundTripper struct {
	Proxied http.RoundTripper
	Logger  *slog.Logger
}

func (lrt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := lrt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	proxied := lrt.Proxied
	if proxied == nil {
		proxied = http.DefaultTransport
	}

	ctx := req.Context()
	t0 := time.Now()

	res, err := proxied.RoundTrip(req)
	if err != nil {
		logger.ErrorContext(ctx, "outbound request failed",
			"method", req.Method,
			"url", RedactURL(req.URL),
			"duration_ms", time.Since(t0).Milliseconds(),
			"error", err.Error())
		return res, err
	}

	// Only debug logging needs the body, so leave the stream untouched otherwise.
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return res, nil
	}

	body, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if err != nil {
		logger.ErrorContext(ctx, "reading outbound response body failed",
			"method", req.Method,
			"url", RedactURL(req.URL),
			"status", res.StatusCode,
			"duration_ms", time.Since(t0).Milliseconds(),
			"error", err.Error())
		return nil, fmt.Errorf("read response body: %w", err)
	}

	logger.DebugContext(ctx, "outbound request",
		"method", req.Method,
		"url", RedactURL(req.URL),
		"status", res.StatusCode,
		"duration_ms", time.Since(t0).Milliseconds(),
		"body", string(body))

	res.Body = io.NopCloser(bytes.NewReader(body))

	return res, nil
}

// RedactURL renders u with every secret query param masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	redacted := *u
	q := redacted.Query()
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "*****")
		}
	}
	redacted.RawQuery = q.Encode()

	return redacted.String()
}

func NewLoggingClient(timeout time.Duration, logger *slog.Logger) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Transport: LoggingRoundTripper{Proxied: http.DefaultTransport, Logger: logger},
		Timeout:   timeout,
	}
}
