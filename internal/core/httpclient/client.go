package httpclient

import (
	"net/http"
	"time"

	"order-tracker/internal/core/logger"
	"order-tracker/internal/core/proxy"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures an outbound HTTP client.
type Options struct {
	// Timeout bounds the whole request, including reading the body.
	Timeout time.Duration
	// RatePerSecond paces requests through a token bucket. Zero disables pacing.
	RatePerSecond float64
	// Burst is the token bucket size. Defaults to 1 when pacing is enabled.
	Burst int
	// Proxy optionally routes requests through an HTTP proxy.
	Proxy proxy.Settings
}

// LoggingRoundTripper captures request details for debugging and paces requests when a limiter is set.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Limiter, when set, is waited on before each request.
	Limiter *rate.Limiter
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if lrt.Limiter != nil {
		if err := lrt.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	start := time.Now()

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Warn("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return New(Options{Timeout: timeout})
}

// New returns an http.Client with logging middleware, optional pacing and optional proxy.
func New(opts Options) *http.Client {
	base := http.DefaultTransport
	if u := opts.Proxy.URL(); u != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(u)
		base = transport
	}

	rt := &LoggingRoundTripper{Proxied: base}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		rt.Limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
	}
}
