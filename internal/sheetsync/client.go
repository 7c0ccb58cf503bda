package sheetsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kwoncho1001/Jomath/internal/events"
	"github.com/kwoncho1001/Jomath/internal/models"
)

const (
	defaultRetries    = 2
	defaultRetryDelay = 500 * time.Millisecond
)

// Client talks to the shared response sheet's web endpoint. The endpoint
// returns rows either as a bare JSON array or wrapped in {"data": [...]};
// appends go back as a POST with a rows payload.
type Client struct {
	endpoint   string
	httpClient *http.Client
	publisher  events.EventPublisher
	logger     *slog.Logger

	retries    int
	retryDelay time.Duration
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry overrides the retry count and base delay.
func WithRetry(retries int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.retryDelay = delay
	}
}

func NewClient(endpoint string, publisher events.EventPublisher, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		publisher:  publisher,
		logger:     logger,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wrappedRows struct {
	Data []models.RawRow `json:"data"`
}

// FetchRows pulls every row from the sheet endpoint.
func (c *Client) FetchRows(ctx context.Context) ([]models.RawRow, error) {
	body, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("sheet fetch failed: %w", err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, err
	}

	c.publishSync(ctx, "fetch", len(rows))
	c.logger.Info("Fetched sheet rows", "endpoint", c.endpoint, "rows", len(rows))
	return rows, nil
}

// AppendRows posts new rows to the sheet endpoint.
func (c *Client) AppendRows(ctx context.Context, rows []models.RawRow) error {
	if len(rows) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	_, err = c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("sheet append failed: %w", err)
	}

	c.publishSync(ctx, "append", len(rows))
	c.logger.Info("Appended sheet rows", "endpoint", c.endpoint, "rows", len(rows))
	return nil
}

// doWithRetry runs a request, retrying transport errors and 5xx responses
// with a doubling delay. Requests are rebuilt per attempt since a consumed
// body cannot be resent.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying sheet request",
				"endpoint", c.endpoint,
				"attempt", attempt,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("server rejected request with %d", resp.StatusCode)
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.retries+1, lastErr)
}

// decodeRows accepts a bare array or a {"data": []} wrapper.
func decodeRows(body []byte) ([]models.RawRow, error) {
	var rows []models.RawRow
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var wrapped wrappedRows
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	return nil, fmt.Errorf("unrecognized sheet response shape")
}

func (c *Client) publishSync(ctx context.Context, direction string, rowCount int) {
	if c.publisher == nil {
		return
	}
	event := events.NewAnalysisEvent(events.EventSheetSynced, events.SheetSyncedEvent{
		Direction: direction,
		RowCount:  rowCount,
		Endpoint:  c.endpoint,
	})
	if err := c.publisher.PublishAnalysisEvent(ctx, event); err != nil {
		c.logger.Error("Failed to publish sheet sync event", "error", err)
	}
}
