package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

const (
	httpTimeout      = 10 * time.Second
	httpMaxRetries   = 3
	httpRetryInitial = 200 * time.Millisecond
)

// HTTPStore reads and writes the document at a fixed URL (GET/PUT), the way
// a hosted JSON blob service is consumed. Transient failures (network
// errors, 5xx) are retried with bounded backoff; every round trip carries
// the caller's context plus the client timeout, so nothing hangs.
type HTTPStore struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

func NewHTTPStore(url string, logger *logrus.Logger) *HTTPStore {
	return &HTTPStore{
		url:    url,
		client: &http.Client{Timeout: httpTimeout},
		log:    logger,
	}
}

func (s *HTTPStore) backoff() retry.Backoff {
	return retry.WithMaxRetries(httpMaxRetries, retry.NewFibonacci(httpRetryInitial))
}

func (s *HTTPStore) Load(ctx context.Context, v any) error {
	var body []byte
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			s.log.Warnf("blob: GET %s failed, will retry: %v", s.url, err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode >= 500:
			s.log.Warnf("blob: GET %s returned %d, will retry", s.url, resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("blob service returned %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("blob service returned %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("read blob body: %w", err))
		}
		return nil
	})
	if err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("load blob %s: %w", s.url, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode blob %s: %w", s.url, err)
	}
	return nil
}

func (s *HTTPStore) Save(ctx context.Context, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode blob %s: %w", s.url, err)
	}
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.log.Warnf("blob: PUT %s failed, will retry: %v", s.url, err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			s.log.Warnf("blob: PUT %s returned %d, will retry", s.url, resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("blob service returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("blob service returned %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save blob %s: %w", s.url, err)
	}
	return nil
}
