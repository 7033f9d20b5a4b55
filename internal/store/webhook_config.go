package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// webhookConfigID is the fixed key of the only row in webhook_config.
const webhookConfigID = 1

type WebhookConfigStore struct {
	db *sqlx.DB
}

func (ws *WebhookConfigStore) GetCurrent(ctx context.Context) (*WebhookConfig, error) {
	query := `SELECT
		id,
		url,
		auth_token,
		activo,
		timeout_seconds,
		max_retries,
		system_prompt,
		greeting,
		updated_by,
		updated_at
	FROM webhook_config WHERE id = $1`

	var cfg WebhookConfig
	if err := ws.db.GetContext(ctx, &cfg, query, webhookConfigID); err != nil {
		return nil, mapPostgresError(err)
	}
	return &cfg, nil
}

func (ws *WebhookConfigStore) Upsert(ctx context.Context, cfg *WebhookConfig) error {
	cfg.ID = webhookConfigID

	query := `INSERT INTO webhook_config (
		id,
		url,
		auth_token,
		activo,
		timeout_seconds,
		max_retries,
		system_prompt,
		greeting,
		updated_by,
		updated_at
	) VALUES (
		:id,
		:url,
		:auth_token,
		:activo,
		:timeout_seconds,
		:max_retries,
		:system_prompt,
		:greeting,
		:updated_by,
		NOW()
	)
		ON CONFLICT (id) DO UPDATE SET
		url = EXCLUDED.url,
		auth_token = EXCLUDED.auth_token,
		activo = EXCLUDED.activo,
		timeout_seconds = EXCLUDED.timeout_seconds,
		max_retries = EXCLUDED.max_retries,
		system_prompt = EXCLUDED.system_prompt,
		greeting = EXCLUDED.greeting,
		updated_by = EXCLUDED.updated_by,
		updated_at = NOW()
	RETURNING updated_at`

	rows, err := ws.db.NamedQueryContext(ctx, query, cfg)
	if err != nil {
		return mapPostgresError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&cfg.UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}
