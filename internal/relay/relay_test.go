package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farxc/portal_tramites/internal/logger"
	"github.com/farxc/portal_tramites/internal/store"
	"github.com/stretchr/testify/require"
)

type staticConfig struct {
	cfg *store.WebhookConfig
	err error
}

func (s staticConfig) GetCurrent(context.Context) (*store.WebhookConfig, error) {
	return s.cfg, s.err
}

func newRelay(t *testing.T, cfg *store.WebhookConfig) *Relay {
	t.Helper()
	return New(staticConfig{cfg: cfg}, http.DefaultClient, logger.Nop(), "portal_tramites",
		WithBackoff(time.Millisecond, 5*time.Millisecond))
}

func webhook(url string, maxRetries int) *store.WebhookConfig {
	return &store.WebhookConfig{
		URL:            url,
		Activo:         true,
		TimeoutSeconds: 10,
		MaxRetries:     maxRetries,
		SystemPrompt:   "Eres el asistente de trámites",
	}
}

func requireFailure(t *testing.T, err error) *Failure {
	t.Helper()
	var failure *Failure
	require.True(t, errors.As(err, &failure), "expected *Failure, got %v", err)
	return failure
}

func TestSendRetriesServerErrorsUntilExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 4 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	reply, err := newRelay(t, webhook(srv.URL, 3)).Send(context.Background(), Message{Message: "hola"})
	require.Nil(t, reply)

	failure := requireFailure(t, err)
	require.Equal(t, int32(4), calls.Load())
	require.Equal(t, 4, failure.AttemptCount)
	require.Equal(t, CodeWebhookError, failure.Code)
	require.Equal(t, http.StatusInternalServerError, failure.Status)
	require.True(t, failure.Retryable)
	require.Contains(t, failure.Error(), "503")
}

func TestSendRecoversAfterTransientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	reply, err := newRelay(t, webhook(srv.URL, 3)).Send(context.Background(), Message{Message: "hola"})
	require.NoError(t, err)
	require.Equal(t, "ok", reply.Response)
	require.Equal(t, 2, reply.AttemptCount)
}

func TestSendClientErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newRelay(t, webhook(srv.URL, 3)).Send(context.Background(), Message{Message: "hola"})

	failure := requireFailure(t, err)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, 1, failure.AttemptCount)
	require.Equal(t, http.StatusInternalServerError, failure.Status)
	require.Contains(t, failure.Error(), "404")
}

func TestSendReplyShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		expected  string
		expectErr bool
	}{
		{name: "response field", body: `{"response":"ok"}`, expected: "ok"},
		{name: "message fallback", body: `{"message":"desde message"}`, expected: "desde message"},
		{name: "empty response skipped", body: `{"response":"","text":"desde text"}`, expected: "desde text"},
		{name: "reply last", body: `{"reply":"desde reply"}`, expected: "desde reply"},
		{name: "non-string is terminal", body: `{"response":{"text":"x"}}`, expectErr: true},
		{name: "no known field", body: `{"output":"x"}`, expectErr: true},
		{name: "not json", body: `ok`, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			reply, err := newRelay(t, webhook(srv.URL, 3)).Send(context.Background(), Message{Message: "hola"})
			if tt.expectErr {
				failure := requireFailure(t, err)
				require.Equal(t, 1, failure.AttemptCount)
				require.Equal(t, int32(1), calls.Load())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, reply.Response)
			require.Equal(t, 1, reply.AttemptCount)
		})
	}
}

func TestSendNotConfigured(t *testing.T) {
	tests := []struct {
		name string
		src  staticConfig
	}{
		{name: "missing", src: staticConfig{err: store.ErrNotFound}},
		{name: "inactive", src: staticConfig{cfg: &store.WebhookConfig{URL: "http://example.invalid"}}},
		{name: "empty url", src: staticConfig{cfg: &store.WebhookConfig{URL: "  ", Activo: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.src, http.DefaultClient, logger.Nop(), "portal_tramites")
			_, err := r.Send(context.Background(), Message{Message: "hola"})

			failure := requireFailure(t, err)
			require.Equal(t, CodeNotConfigured, failure.Code)
			require.Equal(t, http.StatusServiceUnavailable, failure.Status)
			require.Zero(t, failure.AttemptCount)
			require.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}

type captured struct {
	body   payload
	header string
}

func TestSendPayload(t *testing.T) {
	requests := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c captured
		c.header = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&c.body)
		requests <- c
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	history := make([]HistoryEntry, 7)
	for i := range history {
		history[i] = HistoryEntry{Role: "user", Content: string(rune('a' + i))}
	}

	t.Run("history trimmed and no token", func(t *testing.T) {
		_, err := newRelay(t, webhook(srv.URL, 0)).Send(context.Background(), Message{Message: "hola", History: history})
		require.NoError(t, err)

		got := <-requests
		require.Empty(t, got.header)
		require.Equal(t, "hola", got.body.Message)
		require.Equal(t, "Eres el asistente de trámites", got.body.SystemPrompt)
		require.Equal(t, "portal_tramites", got.body.Source)
		require.NotEmpty(t, got.body.Timestamp)
		require.Len(t, got.body.History, 5)
		require.Equal(t, "c", got.body.History[0].Content)
		require.Equal(t, "g", got.body.History[4].Content)
	})

	t.Run("bearer token when configured", func(t *testing.T) {
		cfg := webhook(srv.URL, 0)
		token := "secreto"
		cfg.AuthToken = &token

		_, err := newRelay(t, cfg).Send(context.Background(), Message{Message: "hola"})
		require.NoError(t, err)

		got := <-requests
		require.Equal(t, "Bearer secreto", got.header)
		require.NotNil(t, got.body.History)
		require.Empty(t, got.body.History)
	})
}

func TestSendDeadlineIsSharedAcrossAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := webhook(srv.URL, 3)
	cfg.TimeoutSeconds = 1

	start := time.Now()
	_, err := newRelay(t, cfg).Send(context.Background(), Message{Message: "hola"})
	elapsed := time.Since(start)

	failure := requireFailure(t, err)
	require.Equal(t, CodeTimeout, failure.Code)
	require.Equal(t, http.StatusRequestTimeout, failure.Status)
	require.False(t, failure.Retryable)
	require.Equal(t, 1, failure.AttemptCount)
	require.Equal(t, int32(1), calls.Load())
	require.Less(t, elapsed, 3*time.Second)
}

func TestSendBudgetCheckedBeforeSleeping(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := webhook(srv.URL, 3)
	cfg.TimeoutSeconds = 1

	r := New(staticConfig{cfg: cfg}, http.DefaultClient, logger.Nop(), "portal_tramites",
		WithBackoff(2*time.Second, 5*time.Second))

	start := time.Now()
	_, err := r.Send(context.Background(), Message{Message: "hola"})

	failure := requireFailure(t, err)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, CodeWebhookError, failure.Code)
	require.Less(t, time.Since(start), time.Second)
}

func TestTimeout(t *testing.T) {
	require.Equal(t, 30*time.Second, Timeout(0))
	require.Equal(t, 30*time.Second, Timeout(-5))
	require.Equal(t, 10*time.Second, Timeout(10))
	require.Equal(t, 60*time.Second, Timeout(600))
}
