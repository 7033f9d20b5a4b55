package main

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/farxc/portal_tramites/internal/relay"
	"github.com/farxc/portal_tramites/internal/response"
	"github.com/farxc/portal_tramites/internal/store"
)

const (
	maxChatMessage = 4000
	maxRetriesCap  = 10
)

type webhookView struct {
	*store.WebhookConfig
	HasAuthToken bool `json:"has_auth_token"`
}

type GetWebhookResponse = response.APIResponse[webhookView]

type chatConfig struct {
	Available bool   `json:"available"`
	Greeting  string `json:"greeting"`
}

type chatFailure struct {
	Error        string `json:"error"`
	Code         string `json:"code"`
	AttemptCount int    `json:"attemptCount"`
	Retryable    bool   `json:"retryable"`
}

// viewOf hides the token; admins only learn whether one is set.
func viewOf(cfg *store.WebhookConfig) webhookView {
	v := *cfg
	v.AuthToken = nil
	return webhookView{WebhookConfig: &v, HasAuthToken: cfg.AuthToken != nil && *cfg.AuthToken != ""}
}

// currentWebhook returns the stored config, or the defaults when none exists yet.
func (app *application) currentWebhook(r *http.Request) (*store.WebhookConfig, error) {
	cfg, err := app.store.WebhookConfig.GetCurrent(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		return &store.WebhookConfig{TimeoutSeconds: 30, MaxRetries: 3}, nil
	}
	return cfg, err
}

func (app *application) handleGetWebhookConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := app.currentWebhook(r)
	if err != nil {
		app.writeStoreError(w, err, "get webhook config", false)
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetWebhookResponse{Success: true, Data: viewOf(cfg)}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

type webhookInput struct {
	URL            string  `json:"url"`
	AuthToken      *string `json:"auth_token"`
	Activo         bool    `json:"activo"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	MaxRetries     int     `json:"max_retries"`
	SystemPrompt   string  `json:"system_prompt"`
	Greeting       string  `json:"greeting"`
}

func (in *webhookInput) validate() error {
	in.URL = strings.TrimSpace(in.URL)
	if in.URL != "" {
		u, err := url.Parse(in.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("url must be an absolute http or https URL")
		}
	}
	if in.Activo && in.URL == "" {
		return errors.New("an active webhook needs a url")
	}
	if in.TimeoutSeconds < 0 || in.TimeoutSeconds > 60 {
		return errors.New("timeout_seconds must be between 0 and 60")
	}
	if in.MaxRetries < 0 || in.MaxRetries > maxRetriesCap {
		return errors.New("max_retries must be between 0 and 10")
	}
	return nil
}

// @Summary		Update webhook config
// @Description	Replaces the single webhook configuration. An omitted auth_token keeps the stored one; an empty one clears it.
// @Tags			Webhook
// @Accept			json
// @Produce		json
// @Success		200	{object}	GetWebhookResponse
// @Failure		400	{object}	response.ErrorResponse
// @Router			/admin/webhook [put]
func (app *application) handleUpdateWebhookConfig(w http.ResponseWriter, r *http.Request) {
	var input webhookInput
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := input.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := app.currentWebhook(r)
	if err != nil {
		app.writeStoreError(w, err, "update webhook config", false)
		return
	}

	cfg := &store.WebhookConfig{
		URL:            input.URL,
		AuthToken:      existing.AuthToken,
		Activo:         input.Activo,
		TimeoutSeconds: input.TimeoutSeconds,
		MaxRetries:     input.MaxRetries,
		SystemPrompt:   input.SystemPrompt,
		Greeting:       input.Greeting,
		UpdatedBy:      actor(r),
	}
	if input.AuthToken != nil {
		cfg.AuthToken = nullIfBlank(input.AuthToken)
	}

	if err := app.store.WebhookConfig.Upsert(r.Context(), cfg); err != nil {
		app.writeStoreError(w, err, "update webhook config", false)
		return
	}

	app.appLogger.Info("Webhook", "Webhook config updated: activo=%t timeout=%ds retries=%d", cfg.Activo, cfg.TimeoutSeconds, cfg.MaxRetries)
	if err := writeJSON(w, http.StatusOK, &GetWebhookResponse{Success: true, Data: viewOf(cfg), Message: "Webhook config updated"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Chat widget config
// @Tags			Chat
// @Produce		json
// @Success		200	{object}	response.APIResponse[chatConfig]
// @Router			/chat/config [get]
func (app *application) handleGetChatConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := app.currentWebhook(r)
	if err != nil {
		app.writeStoreError(w, err, "get chat config", true)
		return
	}

	data := chatConfig{
		Available: cfg.Activo && strings.TrimSpace(cfg.URL) != "",
		Greeting:  cfg.Greeting,
	}
	if err := writeJSON(w, http.StatusOK, &response.APIResponse[chatConfig]{Success: true, Data: data}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Send a chat message
// @Description	Relays the message and up to five history entries to the configured webhook.
// @Tags			Chat
// @Accept			json
// @Produce		json
// @Success		200	{object}	relay.Reply
// @Failure		408	{object}	chatFailure	"Webhook timed out"
// @Failure		500	{object}	chatFailure	"Webhook failed"
// @Failure		503	{object}	chatFailure	"Webhook not configured"
// @Router			/chat [post]
func (app *application) handleChat(w http.ResponseWriter, r *http.Request) {
	var input relay.Message
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input.Message = strings.TrimSpace(input.Message)
	if input.Message == "" {
		writeJSONError(w, http.StatusBadRequest, "message is required")
		return
	}
	if utf8.RuneCountInString(input.Message) > maxChatMessage {
		writeJSONError(w, http.StatusBadRequest, "message is too long")
		return
	}

	reply, err := app.relay.Send(r.Context(), input)
	if err != nil {
		var failure *relay.Failure
		if !errors.As(err, &failure) {
			writeJSONError(w, http.StatusInternalServerError, "failed to relay message")
			return
		}
		writeJSON(w, failure.Status, &chatFailure{
			Error:        failure.Error(),
			Code:         failure.Code,
			AttemptCount: failure.AttemptCount,
			Retryable:    failure.Retryable,
		})
		return
	}

	if err := writeJSON(w, http.StatusOK, reply); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
