// Package relay forwards chat messages to the configured automation webhook
// and normalizes whatever shape of reply it sends back.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/farxc/portal_tramites/internal/logger"
	"github.com/farxc/portal_tramites/internal/store"
)

const (
	CodeNotConfigured = "WEBHOOK_NOT_CONFIGURED"
	CodeTimeout       = "TIMEOUT"
	CodeWebhookError  = "WEBHOOK_ERROR"
)

const (
	historyLimit   = 5
	defaultTimeout = 30 * time.Second
	maxTimeout     = 60 * time.Second
	maxReplyBytes  = 1 << 20
)

// replyKeys are tried in order; the first populated one is the reply.
var replyKeys = []string{"response", "message", "text", "reply"}

var ErrNotConfigured = errors.New("webhook is not configured")

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ConfigSource interface {
	GetCurrent(ctx context.Context) (*store.WebhookConfig, error)
}

type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Message struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

type Reply struct {
	Response     string    `json:"response"`
	AttemptCount int       `json:"attemptCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// Failure is the error returned by Send for every unsuccessful relay.
type Failure struct {
	Err          error
	Code         string
	AttemptCount int
	Retryable    bool
	Status       int
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

type payload struct {
	Message      string         `json:"message"`
	History      []HistoryEntry `json:"history"`
	SystemPrompt string         `json:"system_prompt"`
	Timestamp    string         `json:"timestamp"`
	Source       string         `json:"source"`
}

type Option func(*Relay)

// WithBackoff overrides the wait before the first retry and its ceiling.
func WithBackoff(initial, max time.Duration) Option {
	return func(r *Relay) {
		r.initialInterval = initial
		r.maxInterval = max
	}
}

type Relay struct {
	configs   ConfigSource
	client    Doer
	appLogger *logger.Logger
	source    string

	initialInterval time.Duration
	maxInterval     time.Duration
}

func New(configs ConfigSource, client Doer, appLogger *logger.Logger, source string, opts ...Option) *Relay {
	r := &Relay{
		configs:         configs,
		client:          client,
		appLogger:       appLogger,
		source:          source,
		initialInterval: time.Second,
		maxInterval:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the wall-clock budget shared by every attempt of one Send.
func Timeout(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultTimeout
	}
	d := time.Duration(seconds) * time.Second
	if d > maxTimeout {
		return maxTimeout
	}
	return d
}

// attemptError tags a failed attempt. Terminal errors stop the loop; abort
// marks cancellation and network-class errors, which also stop it and are
// never reported as retryable.
type attemptError struct {
	err      error
	terminal bool
	abort    bool
}

func (e *attemptError) Error() string { return e.err.Error() }
func (e *attemptError) Unwrap() error { return e.err }

// Send delivers msg to the webhook. It makes at most max_retries+1 attempts,
// all bounded by a single deadline.
func (r *Relay) Send(ctx context.Context, msg Message) (*Reply, error) {
	const component = "Relay"

	cfg, err := r.configs.GetCurrent(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, &Failure{Err: fmt.Errorf("failed to load webhook config: %w", err), Code: CodeWebhookError, Retryable: true, Status: http.StatusInternalServerError}
	}
	if cfg == nil || !cfg.Activo || strings.TrimSpace(cfg.URL) == "" {
		return nil, &Failure{Err: ErrNotConfigured, Code: CodeNotConfigured, Status: http.StatusServiceUnavailable}
	}

	timeout := Timeout(cfg.TimeoutSeconds)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	history := msg.History
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	if history == nil {
		history = []HistoryEntry{}
	}
	body, err := json.Marshal(payload{
		Message:      msg.Message,
		History:      history,
		SystemPrompt: cfg.SystemPrompt,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Source:       r.source,
	})
	if err != nil {
		return nil, &Failure{Err: fmt.Errorf("failed to encode payload: %w", err), Code: CodeWebhookError, Status: http.StatusInternalServerError}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var (
		attempts int
		lastErr  *attemptError
	)
	operation := func() (string, error) {
		attempts++
		text, aerr := r.attempt(ctx, cfg, body)
		if aerr == nil {
			return text, nil
		}
		lastErr = aerr
		if aerr.terminal || aerr.abort {
			return "", backoff.Permanent(aerr)
		}
		return "", aerr
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     r.initialInterval,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         r.maxInterval,
	}

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxRetries+1)),
		backoff.WithMaxElapsedTime(timeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.appLogger.Warn(component, "Attempt %d failed, retrying in %s: %v", attempts, next, err)
		}),
	)
	if err == nil {
		return &Reply{Response: text, AttemptCount: attempts, Timestamp: time.Now().UTC()}, nil
	}

	failure := &Failure{Code: CodeWebhookError, AttemptCount: attempts, Retryable: true, Status: http.StatusInternalServerError}
	if lastErr != nil {
		failure.Err = lastErr.err
		failure.Retryable = !lastErr.abort
	} else {
		failure.Err = err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		failure.Err = fmt.Errorf("webhook did not answer within %s", timeout)
		failure.Code = CodeTimeout
		failure.Status = http.StatusRequestTimeout
		failure.Retryable = false
	} else if ctx.Err() != nil {
		failure.Retryable = false
	}

	r.appLogger.Error(component, "Relay failed after %d attempt(s): code=%s err=%v", attempts, failure.Code, failure.Err)
	return nil, failure
}

func (r *Relay) attempt(ctx context.Context, cfg *store.WebhookConfig, body []byte) (string, *attemptError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", &attemptError{err: fmt.Errorf("invalid webhook request: %w", err), abort: true}
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.AuthToken != nil && *cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+*cfg.AuthToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		abort := ctx.Err() != nil || strings.Contains(strings.ToLower(err.Error()), "network")
		return "", &attemptError{err: fmt.Errorf("webhook request failed: %w", err), abort: abort}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", &attemptError{err: fmt.Errorf("webhook returned status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return "", &attemptError{err: fmt.Errorf("webhook returned status %d", resp.StatusCode), terminal: true}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &attemptError{err: fmt.Errorf("webhook returned unexpected status %d", resp.StatusCode), terminal: true}
	}

	text, err := parseReply(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", &attemptError{err: err, terminal: true}
	}
	return text, nil
}

func parseReply(r io.Reader) (string, error) {
	var data map[string]any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return "", fmt.Errorf("webhook returned an invalid body: %w", err)
	}

	for _, key := range replyKeys {
		v, ok := data[key]
		if !ok || !populated(v) {
			continue
		}
		text, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("webhook field %q is not a string", key)
		}
		return text, nil
	}
	return "", fmt.Errorf("webhook reply has none of %s", strings.Join(replyKeys, ", "))
}

func populated(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	}
	return true
}
