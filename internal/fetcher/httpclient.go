package fetcher

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"resty.dev/v3"
)

const (
	// Default retry configuration
	defaultRetryCount       = 3
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
	defaultRequestTimeout   = 30 * time.Second
)

// NewHTTPClient creates an HTTP client with retry logic and exponential backoff
// for use by the data fetch tool
func NewHTTPClient(baseURL string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultRequestTimeout).
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook)

	return client
}

// retryCondition determines whether a request should be retried based on the response and error
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	switch code := r.StatusCode(); {
	case code >= 500, code == 429, code == 408:
		return true
	default:
		return false
	}
}

// retryHook logs retry attempts. The URL is left out since it carries the API key.
func retryHook(r *resty.Response, err error) {
	if err != nil {
		slog.Debug("retrying request due to error",
			"attempt", r.Request.Attempt,
			"error", StripURL(err).Error())
		return
	}

	slog.Debug("retrying request due to status code",
		"attempt", r.Request.Attempt,
		"status_code", r.StatusCode())
}

// StripURL drops the request URL from a transport error. Request URLs carry
// the API key as a query parameter and must not reach logs or stderr.
func StripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
