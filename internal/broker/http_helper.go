package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// UserAgent is the User-Agent header value used for all HTTP requests
	UserAgent = "klaxon/1.0"
	// DefaultHTTPTimeout is the default timeout for HTTP clients
	DefaultHTTPTimeout = 30 * time.Second
)

// HTTPBroker provides common functionality for HTTP-based brokers
type HTTPBroker struct {
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewHTTPBroker creates a new HTTP broker with an optional HTTP client
func NewHTTPBroker(httpClient *http.Client, logger *logrus.Entry) *HTTPBroker {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultHTTPTimeout,
		}
	}

	return &HTTPBroker{
		httpClient: httpClient,
		logger:     logger,
	}
}

// PostJSON sends a JSON payload to the given URL
func (b *HTTPBroker) PostJSON(ctx context.Context, url string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	b.logger.Debug("Posting notification payload")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			b.logger.WithError(err).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to publish message: status %d", resp.StatusCode)
	}

	return nil
}
