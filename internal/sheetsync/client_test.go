package sheetsync

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwoncho1001/Jomath/internal/events"
	"github.com/kwoncho1001/Jomath/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchRows(t *testing.T) {
	t.Run("bare array response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.Write([]byte(`[{"이름":"김민준","학년":"고1"},{"이름":"박서연","학년":"고2"}]`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger())
		rows, err := client.FetchRows(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "김민준", rows[0]["이름"])
	})

	t.Run("wrapped data response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"이름":"김민준"}]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger())
		rows, err := client.FetchRows(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "김민준", rows[0]["이름"])
	})

	t.Run("unrecognized shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`"just a string"`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger())
		_, err := client.FetchRows(context.Background())
		assert.Error(t, err)
	})

	t.Run("retries transient server errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger(), WithRetry(2, time.Millisecond))
		rows, err := client.FetchRows(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after retries exhausted", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger(), WithRetry(2, time.Millisecond))
		_, err := client.FetchRows(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "giving up after 3 attempts")
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger(), WithRetry(2, time.Millisecond))
		_, err := client.FetchRows(context.Background())
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("publishes sync event", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"이름":"김민준"}]`))
		}))
		defer server.Close()

		publisher := events.NewMockEventPublisher(testLogger())
		client := NewClient(server.URL, publisher, testLogger())
		_, err := client.FetchRows(context.Background())
		require.NoError(t, err)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSheetSynced, published[0].Type)
		data, ok := published[0].Data.(events.SheetSyncedEvent)
		require.True(t, ok)
		assert.Equal(t, "fetch", data.Direction)
		assert.Equal(t, 1, data.RowCount)
	})
}

func TestAppendRows(t *testing.T) {
	t.Run("posts rows payload", func(t *testing.T) {
		var received map[string][]models.RawRow
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger())
		rows := []models.RawRow{{"이름": "김민준", "학년": "고1"}}
		require.NoError(t, client.AppendRows(context.Background(), rows))
		require.Len(t, received["rows"], 1)
		assert.Equal(t, "김민준", received["rows"][0]["이름"])
	})

	t.Run("empty batch skips the request", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger())
		require.NoError(t, client.AppendRows(context.Background(), nil))
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("rebuilds body on retry", func(t *testing.T) {
		var calls atomic.Int32
		var lastBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			lastBody = body
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, testLogger(), WithRetry(1, time.Millisecond))
		rows := []models.RawRow{{"이름": "박서연"}}
		require.NoError(t, client.AppendRows(context.Background(), rows))
		assert.Equal(t, int32(2), calls.Load())
		assert.Contains(t, string(lastBody), "박서연")
	})
}
