package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Storage struct {
	Dependencias interface {
		List(ctx context.Context, filter DependenciaFilter) ([]Dependencia, error)
		GetByID(ctx context.Context, id int64) (*Dependencia, error)
		Create(ctx context.Context, d *Dependencia) error
		Update(ctx context.Context, d *Dependencia, descendantLevels map[int64]int) error
		SetActive(ctx context.Context, id int64, active bool, by uuid.NullUUID) error
		CountReferences(ctx context.Context, id int64) (int, error)
	}

	Tramites interface {
		List(ctx context.Context, filter TramiteFilter) ([]Tramite, error)
		GetByID(ctx context.Context, id int64) (*Tramite, error)
		Create(ctx context.Context, t *Tramite) error
		Update(ctx context.Context, t *Tramite) error
		SetActive(ctx context.Context, id int64, active bool, by uuid.NullUUID) error
		BulkInsert(ctx context.Context, rows []Tramite) (int64, error)
		Categories(ctx context.Context) ([]string, error)
	}

	WebhookConfig interface {
		GetCurrent(ctx context.Context) (*WebhookConfig, error)
		Upsert(ctx context.Context, cfg *WebhookConfig) error
	}

	Profiles interface {
		GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
		List(ctx context.Context) ([]Profile, error)
		UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	}

	ImportHistory interface {
		Insert(ctx context.Context, history *ImportHistory) error
		Finish(ctx context.Context, history *ImportHistory) error
		GetLatest(ctx context.Context, limit int) ([]ImportHistory, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Dependencias:  &DependenciaStore{db: db},
		Tramites:      &TramiteStore{db: db},
		WebhookConfig: &WebhookConfigStore{db: db},
		Profiles:      &ProfileStore{db: db},
		ImportHistory: &ImportHistoryStore{db: db},
	}
}
