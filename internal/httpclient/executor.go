package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/internal/rate"
)

const (
	maxAttempts   = 5
	backoffBase   = 250 * time.Millisecond
	jitterCeiling = 200 * time.Millisecond
)

// retryableStatuses are upstream responses worth another attempt. Everything
// else in the 4xx/5xx range fails immediately.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// StatusError is a non-2xx upstream response, carrying enough context for
// callers to distinguish recoverable conditions (the day-ago 404) from fatal
// ones.
type StatusError struct {
	Status int
	Body   string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.URL)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Backoff returns the retry sleep duration for the given 1-based attempt
// number: base*2^(attempt-1) plus up to 200ms of jitter.
func Backoff(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	return delay + time.Duration(rand.Int63n(int64(jitterCeiling)))
}

// Executor handles rate-limited, retrying HTTP GET execution with JSON decoding.
// It holds no per-request state; the same instance is shared by every upstream
// client.
type Executor struct {
	logger   *zap.Logger
	rateMgr  *rate.Manager
	http     *http.Client
	tag      string
	sleep    func(time.Duration)
	observer func(endpoint string, status int, elapsed time.Duration)
}

// New creates an Executor. observer, when non-nil, is called once per HTTP
// attempt with the rate-limit key, response status (0 for transport failures)
// and latency.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	tag string,
	observer func(endpoint string, status int, elapsed time.Duration),
) *Executor {
	return &Executor{
		logger:   logger,
		rateMgr:  rateMgr,
		http:     httpClient,
		tag:      tag,
		sleep:    time.Sleep,
		observer: observer,
	}
}

// GetJSON fetches url with retries and decodes the response body into out.
// Transient failures (429/5xx listed above, transport errors) are retried up to
// five attempts with exponential backoff; other statuses surface immediately as
// a *StatusError. The response body is read exactly once per attempt.
func (e *Executor) GetJSON(ctx context.Context, url, rateLimitKey string, out any) error {
	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, rateLimitKey); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := e.http.Do(req)
		elapsed := time.Since(start)
		if err != nil {
			if e.observer != nil {
				e.observer(rateLimitKey, 0, elapsed)
			}
			lastErr = err
			e.logger.Warn(e.tag+".http_failed",
				zap.String("url", url),
				zap.Error(err),
				zap.Int("attempt", attempt))
			if attempt == maxAttempts {
				break
			}
			e.sleep(Backoff(attempt))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if e.observer != nil {
			e.observer(rateLimitKey, resp.StatusCode, elapsed)
		}
		if readErr != nil {
			lastErr = readErr
			if attempt == maxAttempts {
				break
			}
			e.sleep(Backoff(attempt))
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out != nil && len(body) > 0 {
				if err := json.Unmarshal(body, out); err != nil {
					e.logger.Warn(e.tag+".decode_failed",
						zap.Error(err),
						zap.String("url", url))
					return fmt.Errorf("decode failed: %w", err)
				}
			}
			e.logger.Debug(e.tag+".http_success",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Duration("elapsed", elapsed))
			return nil
		}

		statusErr := &StatusError{Status: resp.StatusCode, Body: string(body), URL: url}
		if !retryableStatuses[resp.StatusCode] || attempt == maxAttempts {
			return statusErr
		}

		lastErr = statusErr
		e.logger.Warn(e.tag+".retryable_status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("latency", elapsed))
		e.sleep(Backoff(attempt))
	}

	return fmt.Errorf("%s request failed after %d attempts: %w", e.tag, maxAttempts, lastErr)
}
