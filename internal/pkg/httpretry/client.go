// Package httpretry wraps an HTTP client with exponential backoff and
// jitter. The engine uses it for outbound feed fetches, where publisher
// endpoints rate-limit and flake routinely.
package httpretry

import (
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// HTTPDoer executes one HTTP request. Both *http.Client and *RetryClient
// satisfy it, so callers can layer or skip retries.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient retries transient failures with exponential backoff and full
// jitter.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryClient wraps client with retry behavior. A nil client gets a
// default with a 30s timeout; maxRetries <= 0 means 3 retries after the
// initial attempt.
func NewRetryClient(client HTTPDoer, maxRetries int) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  1 * time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Do executes the request, retrying rate-limit and server-error statuses
// plus transport errors. Client errors return immediately, and the final
// attempt's response comes back as-is so the caller can read the status and
// body. Context cancellation stops the retry loop.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if err := req.Context().Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		if attempt > 0 {
			delay := rc.backoff(attempt)
			log.Printf("[httpretry] attempt %d/%d for %s %s%s in %s",
				attempt, rc.maxRetries, req.Method, req.URL.Host, req.URL.Path, delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			// Transport-level failure, worth another attempt.
			lastErr = err
			continue
		}

		if !retryableStatus(resp.StatusCode) || attempt == rc.maxRetries {
			return resp, nil
		}

		// Drain so the connection can be reused for the retry.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = &StatusError{Code: resp.StatusCode}
	}

	return nil, lastErr
}

// StatusError reports a retryable status that persisted through every
// attempt without a final response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "retryable status " + http.StatusText(e.Code)
}

// backoff doubles the delay per attempt, caps it, then draws a uniform
// jitter below the cap. A 100ms floor keeps retries off the hot path.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	delay := float64(rc.baseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(rc.maxDelay) {
		delay = float64(rc.maxDelay)
	}
	jittered := time.Duration(rand.Float64() * delay)
	if jittered < 100*time.Millisecond {
		jittered = 100 * time.Millisecond
	}
	return jittered
}

// retryableStatus holds for 429 and the transient 5xx family. Other client
// errors mean the feed URL itself is wrong and retrying cannot help.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
