// Package memory implements store.Storage in process memory. It honours the
// same uniqueness and reference rules as the PostgreSQL schema.
package memory

import (
	"sync"

	"github.com/farxc/portal_tramites/internal/store"
	"github.com/google/uuid"
)

type DB struct {
	mu sync.RWMutex

	dependencias map[int64]store.Dependencia
	tramites     map[int64]store.Tramite
	webhook      *store.WebhookConfig
	profiles     map[uuid.UUID]store.Profile
	imports      []store.ImportHistory

	nextDependencia int64
	nextTramite     int64
	nextImport      int64
}

func New() *DB {
	return &DB{
		dependencias: make(map[int64]store.Dependencia),
		tramites:     make(map[int64]store.Tramite),
		profiles:     make(map[uuid.UUID]store.Profile),
	}
}

// NewStorage wires every store of db into a store.Storage.
func NewStorage(db *DB) *store.Storage {
	return &store.Storage{
		Dependencias:  &DependenciaStore{db: db},
		Tramites:      &TramiteStore{db: db},
		WebhookConfig: &WebhookConfigStore{db: db},
		Profiles:      &ProfileStore{db: db},
		ImportHistory: &ImportHistoryStore{db: db},
	}
}
