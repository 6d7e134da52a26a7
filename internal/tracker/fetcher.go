package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/constants"
	"valorant-match-scraper/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// Fetcher downloads match pages from the configured provider. All goroutines
// sharing a Fetcher share one request throttle.
type Fetcher struct {
	urls        MatchURLs
	client      *fasthttp.Client
	userAgent   string
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	limiter     *rate.Limiter
	logger      zerolog.Logger

	statusMu sync.RWMutex
	status   UpstreamStatus
}

// UpstreamStatus describes the most recent request sent to the provider.
type UpstreamStatus struct {
	Requests      int64     `json:"requests"`
	LastStatus    int       `json:"last_status"`
	LastRequestAt time.Time `json:"last_request_at"`
}

type Option func(*Fetcher)

// WithDial replaces the network dialer, mostly for tests.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(f *Fetcher) {
		f.client.Dial = dial
	}
}

// WithMaxBodySize caps the size of a page the fetcher will accept.
func WithMaxBodySize(n int) Option {
	return func(f *Fetcher) {
		f.client.MaxResponseBodySize = n
	}
}

func NewFetcher(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		urls:      NewMatchURLs(cfg.ParsedBaseURL()),
		userAgent: cfg.UserAgent,
		client: &fasthttp.Client{
			MaxConnsPerHost:           cfg.MaxConcurrency,
			MaxConnWaitTimeout:        cfg.RequestTimeout,
			ReadTimeout:               cfg.RequestTimeout,
			WriteTimeout:              cfg.RequestTimeout,
			MaxIdleConnDuration:       1 * time.Minute,
			MaxResponseBodySize:       constants.MaxBodySize,
			MaxIdemponentCallAttempts: 1,
		},
		timeout:     cfg.RequestTimeout,
		maxAttempts: cfg.MaxRetries,
		backoff:     cfg.RetryBackoff,
		limiter:     rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		logger:      logger.With().Str("component", "fetcher").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) URLs() MatchURLs {
	return f.urls
}

func (f *Fetcher) Status() UpstreamStatus {
	f.statusMu.RLock()
	defer f.statusMu.RUnlock()
	return f.status
}

func (f *Fetcher) recordAttempt(statusCode int) {
	f.statusMu.Lock()
	defer f.statusMu.Unlock()

	f.status.Requests++
	f.status.LastStatus = statusCode
	f.status.LastRequestAt = time.Now()
}

// statusError is a completed request with a non-2xx status.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.code)
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == fasthttp.StatusTooManyRequests
}

// terminal reports whether another attempt cannot change the outcome.
func terminal(err error) bool {
	if errors.Is(err, fasthttp.ErrBodyTooLarge) {
		return true
	}
	var se *statusError
	return errors.As(err, &se) && !se.retryable()
}

// Fetch returns the raw markup of a match page. Caller cancellation is
// ignored; each attempt is bounded by the configured request timeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := f.urls.Validate(rawURL)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.KindInvalidURL, URL: rawURL, Err: err}
	}
	target := u.String()
	ctx = context.WithoutCancel(ctx)

	var (
		body     []byte
		attempts int
		lastErr  error
	)

	err = retry.Do(ctx, f.newBackoff(), func(ctx context.Context) error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		attempts++

		b, err := f.get(target)
		if err == nil {
			body = b
			return nil
		}
		lastErr = err

		if terminal(err) {
			return err
		}
		f.logger.Warn().
			Err(err).
			Str("url", target).
			Int("attempt", attempts).
			Int("max_attempts", f.maxAttempts).
			Msg("fetch attempt failed")
		return retry.RetryableError(err)
	})
	if err == nil {
		f.logger.Debug().Str("url", target).Int("attempts", attempts).Int("bytes", len(body)).Msg("page fetched")
		return body, nil
	}
	if lastErr == nil {
		lastErr = err
	}

	if errors.Is(lastErr, fasthttp.ErrBodyTooLarge) {
		return nil, &domain.FetchError{
			Kind:     domain.KindMalformedDocument,
			URL:      target,
			Attempts: attempts,
			Err:      lastErr,
		}
	}

	var se *statusError
	if errors.As(lastErr, &se) && !se.retryable() {
		return nil, &domain.FetchError{
			Kind:       domain.KindNotFound,
			URL:        target,
			StatusCode: se.code,
			Attempts:   attempts,
			Err:        lastErr,
		}
	}

	f.logger.Error().Err(lastErr).Str("url", target).Int("attempts", attempts).Msg("all fetch attempts failed")
	fe := &domain.FetchError{Kind: domain.KindUnreachable, URL: target, Attempts: attempts, Err: lastErr}
	if errors.As(lastErr, &se) {
		fe.StatusCode = se.code
	}
	return nil, fe
}

func (f *Fetcher) newBackoff() retry.Backoff {
	var b retry.Backoff
	if f.backoff > 0 {
		b = retry.WithCappedDuration(constants.MaxRetryBackoff, retry.NewExponential(f.backoff))
	} else {
		b = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	return retry.WithMaxRetries(uint64(f.maxAttempts-1), b)
}

func (f *Fetcher) get(target string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if err := f.client.DoTimeout(req, resp, f.timeout); err != nil {
		f.recordAttempt(0)
		return nil, err
	}
	f.recordAttempt(resp.StatusCode())

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &statusError{code: code}
	}
	return append([]byte(nil), resp.Body()...), nil
}
