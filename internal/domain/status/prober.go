package status

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/resilience"
)

// DefaultProbeTimeout bounds a single probe, retries included
const DefaultProbeTimeout = 6 * time.Second

// Prober reports whether a URL answers at all
type Prober interface {
	Probe(ctx context.Context, rawURL string) bool
}

// ProberConfig configures an HTTPProber
type ProberConfig struct {
	Timeout   time.Duration
	RPS       float64 // <= 0 disables rate limiting
	Retries   int
	RetryWait time.Duration
	UserAgent string
	Breaker   resilience.Settings
}

// DefaultProberConfig returns the probe settings used in production
func DefaultProberConfig() ProberConfig {
	return ProberConfig{
		Timeout:   DefaultProbeTimeout,
		RPS:       10,
		Retries:   1,
		RetryWait: 250 * time.Millisecond,
		UserAgent: "GMLPortal-Status/1.0",
		Breaker: resilience.Settings{
			MaxRequests: 1,
			Interval:    5 * time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		},
	}
}

// HTTPProber probes with a GET request. Any HTTP response counts as
// reachable, whatever its status code; only transport failures and
// timeouts count as unreachable.
type HTTPProber struct {
	client   *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
	timeout  time.Duration
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHTTPProber creates a prober
func NewHTTPProber(cfg ProberConfig) *HTTPProber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Cache-Control", "no-store").
		SetDoNotParseResponse(true)
	client.SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &HTTPProber{
		client:   client,
		limiter:  limiter,
		breakers: resilience.NewGroup(cfg.Breaker),
		timeout:  cfg.Timeout,
		logger:   zap.NewNop(),
	}
}

// WithMetrics records probe outcomes and durations
func (p *HTTPProber) WithMetrics(metrics *monitoring.Metrics) *HTTPProber {
	p.metrics = metrics
	return p
}

// WithLogger sets the logger
func (p *HTTPProber) WithLogger(logger *zap.Logger) *HTTPProber {
	if logger != nil {
		p.logger = logger.Named("prober")
	}
	return p
}

// Breakers exposes the per-host breakers
func (p *HTTPProber) Breakers() *resilience.Group {
	return p.breakers
}

// Probe implements Prober
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) bool {
	timer := monitoring.NewTimer(p.metrics)

	err := p.probe(ctx, rawURL)
	timer.Stop(err == nil)
	if err != nil {
		p.logger.Debug("probe failed", zap.String("url", rawURL), zap.Error(err))
	}
	return err == nil
}

func (p *HTTPProber) probe(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q", rawURL)
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, p.timeout)
	err = p.limiter.Wait(waitCtx)
	cancelWait()
	if err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	// The deadline is applied inside the breaker so a timeout counts as a
	// failure while cancellation of ctx does not
	err = p.breakers.Do(ctx, u.Host, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		resp, err := p.client.R().SetContext(ctx).Get(u.String())
		if err != nil {
			return err
		}
		if body := resp.RawBody(); body != nil {
			body.Close()
		}
		return nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", u.Host, err)
	}
	return err
}
