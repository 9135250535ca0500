package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/i474232898/park-explorer/internal/common"
	"github.com/i474232898/park-explorer/internal/obs"
	"github.com/i474232898/park-explorer/internal/park"
)

const (
	maxBodyBytes      = 10 << 20
	maxErrorBodyBytes = 4 << 10
	noResponseBody    = "No response body"
)

// ErrCircuitOpen is wrapped by failures rejected by an open circuit breaker.
var ErrCircuitOpen = errors.New("circuit breaker open")

var tracer = otel.Tracer("github.com/i474232898/park-explorer/internal/park/providers")

// FetchConfig controls the per-attempt timeout and exponential backoff.
type FetchConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultFetchConfig returns the stock settings: 8s timeout, 2 retries, 800ms initial backoff.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:        8 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 800 * time.Millisecond,
	}
}

func (c FetchConfig) normalized() FetchConfig {
	def := DefaultFetchConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff < 0 {
		c.InitialBackoff = 0
	}
	return c
}

// RequestOptions describe a single outbound call.
type RequestOptions struct {
	Method   string
	Header   http.Header
	Upstream string // label used in logs and metrics

	// Breaker is optional. When set, transient failures count against it and
	// an open breaker fails the call without touching the network.
	Breaker *gobreaker.CircuitBreaker
}

// Fetcher executes upstream requests with timeout, retry and backoff.
// It knows nothing about the individual upstreams.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher around client.
func NewFetcher(client *http.Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: client,
		logger: logger.With(zap.String("component", "fetcher")),
		sleep:  sleepContext,
	}
}

// Fetch requests rawURL and returns the JSON body.
//
// Client errors (4xx, including 429) and malformed bodies fail at once.
// Server errors, timeouts and network failures are retried up to
// cfg.MaxRetries times, waiting InitialBackoff * 2^attempt between attempts.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts RequestOptions, cfg FetchConfig) (json.RawMessage, error) {
	upstream := opts.Upstream
	if upstream == "" {
		upstream = "upstream"
	}
	safeURL := common.RedactURL(rawURL)
	if f.client == nil {
		return nil, &park.Error{Kind: park.KindConfiguration, Op: "fetch", Message: "http client not configured", URL: safeURL}
	}
	cfg = cfg.normalized()

	ctx, span := tracer.Start(ctx, "fetch "+upstream)
	defer span.End()
	span.SetAttributes(attribute.String("upstream", upstream), attribute.String("url", safeURL))

	retriesLeft := cfg.MaxRetries
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		body, err := f.attempt(ctx, rawURL, safeURL, opts, cfg.Timeout)
		obs.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.Int("attempts", attempt+1))

		if err == nil {
			obs.UpstreamRequests.WithLabelValues(upstream, "success").Inc()
			return body, nil
		}
		obs.UpstreamRequests.WithLabelValues(upstream, outcome(err)).Inc()

		// The caller gave up; nothing left to retry for.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var pe *park.Error
		if !errors.As(err, &pe) || !pe.Retryable() || errors.Is(err, ErrCircuitOpen) {
			f.fail(span, upstream, safeURL, attempt, err)
			return nil, err
		}
		if retriesLeft == 0 {
			f.fail(span, upstream, safeURL, attempt, err)
			return nil, err
		}

		delay := cfg.InitialBackoff * time.Duration(math.Pow(2, float64(attempt)))
		f.logger.Warn("upstream request failed; retrying",
			zap.String("upstream", upstream),
			zap.String("url", safeURL),
			zap.Int("attempt", attempt+1),
			zap.Int("retries_left", retriesLeft),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		obs.UpstreamRetries.WithLabelValues(upstream).Inc()
		span.AddEvent("retry", trace.WithAttributes(
			attribute.Int("attempt", attempt+1),
			attribute.Int64("backoff_ms", delay.Milliseconds()),
		))

		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
		retriesLeft--
	}
}

func (f *Fetcher) fail(span trace.Span, upstream, safeURL string, attempt int, err error) {
	f.logger.Error("upstream request failed",
		zap.String("upstream", upstream),
		zap.String("url", safeURL),
		zap.Int("attempts", attempt+1),
		zap.String("kind", string(park.KindOf(err))),
		zap.Error(err),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(park.KindOf(err)))
}

// attempt performs one request under its own timeout.
func (f *Fetcher) attempt(ctx context.Context, rawURL, safeURL string, opts RequestOptions, timeout time.Duration) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, rawURL, nil)
	if err != nil {
		return nil, &park.Error{Kind: park.KindConfiguration, Op: "fetch", Message: "invalid request", URL: safeURL, Err: unwrapURLError(err)}
	}
	for k, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	exec := func() (interface{}, error) {
		return f.do(attemptCtx, req, safeURL)
	}
	var result interface{}
	if opts.Breaker != nil {
		result, err = opts.Breaker.Execute(exec)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &park.Error{
				Kind:    park.KindTransientUpstream,
				Op:      "fetch",
				Message: ErrCircuitOpen.Error(),
				URL:     safeURL,
				Err:     errors.Join(ErrCircuitOpen, err),
			}
		}
	} else {
		result, err = exec()
	}
	if err != nil {
		return nil, err
	}
	body, ok := result.(json.RawMessage)
	if !ok {
		return nil, &park.Error{Kind: park.KindMalformedResponse, Op: "fetch", Message: "unexpected result type", URL: safeURL}
	}
	return body, nil
}

func (f *Fetcher) do(attemptCtx context.Context, req *http.Request, safeURL string) (json.RawMessage, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		msg := "network error"
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			msg = "request timed out"
		}
		return nil, &park.Error{Kind: park.KindTransientUpstream, Op: "fetch", Message: msg, URL: safeURL, Err: unwrapURLError(err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := park.KindClientRequest
		if resp.StatusCode >= 500 {
			kind = park.KindTransientUpstream
		}
		return nil, &park.Error{
			Kind:   kind,
			Op:     "fetch",
			URL:    safeURL,
			Status: resp.StatusCode,
			Reason: reasonPhrase(resp),
			Body:   readErrorBody(resp.Body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		msg := "reading response body"
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			msg = "request timed out"
		}
		return nil, &park.Error{Kind: park.KindTransientUpstream, Op: "fetch", Message: msg, URL: safeURL, Err: err}
	}
	if !json.Valid(body) {
		return nil, &park.Error{Kind: park.KindMalformedResponse, Op: "fetch", Message: "response is not valid JSON", URL: safeURL}
	}
	return json.RawMessage(body), nil
}

func readErrorBody(r io.Reader) string {
	payload, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return noResponseBody
	}
	return string(payload)
}

func reasonPhrase(resp *http.Response) string {
	if reason := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); reason != "" && reason != resp.Status {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

// unwrapURLError drops the *url.Error wrapper, whose message repeats the
// full URL including credentials.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func outcome(err error) string {
	if kind := park.KindOf(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
