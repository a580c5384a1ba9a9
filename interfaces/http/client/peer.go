// Package client calls the other services over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/pkg/common"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

const maxResponseBytes = 1 << 20

// BreakerConfig holds configuration for a peer's circuit breaker
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used for every peer
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Options configures a peer client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Breaker    BreakerConfig
	HTTPClient *http.Client
}

// peer performs JSON requests against one service. Transport failures and
// 5xx answers count against the breaker; 4xx answers are the peer's
// verdict and are relayed, not counted.
type peer struct {
	name    string
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	metrics *observability.Collector
}

type response struct {
	status int
	body   []byte
}

// errPeerFailure marks a 5xx answer for the breaker
var errPeerFailure = errors.New("peer answered with a server error")

func newPeer(name string, opts Options, logger *zap.Logger, metrics *observability.Collector) *peer {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg := opts.Breaker
	if cfg.MinRequests == 0 {
		cfg = DefaultBreakerConfig()
	}

	p := &peer{
		name:    name,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		http:    httpClient,
		logger:  logger.With(zap.String("peer", name)),
		metrics: metrics,
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			p.logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return p
}

// do sends method to the path built from segments. A non-2xx answer
// becomes an AppError carrying the peer's status; out receives a 2xx body.
func (p *peer) do(ctx context.Context, method string, segments []string, body, out interface{}) error {
	target := p.url(segments)

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s request: %w", p.name, err)
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	v, err := p.breaker.Execute(func() (interface{}, error) {
		resp, err := p.send(ctx, method, target, payload)
		if err != nil {
			return nil, err
		}
		if resp.status >= http.StatusInternalServerError {
			return resp, errPeerFailure
		}
		return resp, nil
	})

	resp, _ := v.(*response)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		p.metrics.PeerRequest(p.name, 0)
		return pkgerrors.NewUnavailableError(p.name).WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		p.metrics.PeerRequest(p.name, 0)
		return pkgerrors.NewTimeoutError(p.name).WithCause(err)
	case err != nil && resp == nil:
		p.metrics.PeerRequest(p.name, 0)
		p.logger.Warn("Peer request failed", zap.String("method", method), zap.Error(err))
		return pkgerrors.NewUnavailableError(p.name).WithCause(err)
	}

	p.metrics.PeerRequest(p.name, resp.status)
	if resp.status < 200 || resp.status > 299 {
		return pkgerrors.NewStatusError(resp.status, peerMessage(resp.body))
	}

	if out != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return pkgerrors.NewExternalError(p.name, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func (p *peer) send(ctx context.Context, method, target string, payload []byte) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	// the peer rate limits per client, not per calling service
	if ip, ok := common.GetClientIP(ctx); ok {
		req.Header.Set("X-Real-IP", ip)
	}

	res, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &response{status: res.StatusCode, body: data}, nil
}

func (p *peer) url(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return p.baseURL + "/" + strings.Join(escaped, "/")
}

// peerMessage extracts the message of an error body written by the
// peer's error handler, if there is one.
func peerMessage(body []byte) string {
	var e pkgerrors.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return ""
}
