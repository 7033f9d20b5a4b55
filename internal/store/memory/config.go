package memory

import (
	"context"
	"sort"
	"time"

	"github.com/farxc/portal_tramites/internal/store"
	"github.com/google/uuid"
)

type WebhookConfigStore struct {
	db *DB
}

func (ws *WebhookConfigStore) GetCurrent(_ context.Context) (*store.WebhookConfig, error) {
	ws.db.mu.RLock()
	defer ws.db.mu.RUnlock()

	if ws.db.webhook == nil {
		return nil, store.ErrNotFound
	}
	cfg := *ws.db.webhook
	return &cfg, nil
}

func (ws *WebhookConfigStore) Upsert(_ context.Context, cfg *store.WebhookConfig) error {
	ws.db.mu.Lock()
	defer ws.db.mu.Unlock()

	cfg.ID = 1
	cfg.UpdatedAt = time.Now().UTC()
	stored := *cfg
	ws.db.webhook = &stored
	return nil
}

type ProfileStore struct {
	db *DB
}

// PutProfile adds or replaces a profile. The identity provider owns profile
// creation, so only the in-memory store offers it.
func (db *DB) PutProfile(p store.Profile) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	db.profiles[p.ID] = p
}

func (ps *ProfileStore) GetByID(_ context.Context, id uuid.UUID) (*store.Profile, error) {
	ps.db.mu.RLock()
	defer ps.db.mu.RUnlock()

	p, ok := ps.db.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (ps *ProfileStore) List(_ context.Context) ([]store.Profile, error) {
	ps.db.mu.RLock()
	defer ps.db.mu.RUnlock()

	result := make([]store.Profile, 0, len(ps.db.profiles))
	for _, p := range ps.db.profiles {
		result = append(result, p)
	}
	sortProfiles(result)
	return result, nil
}

func (ps *ProfileStore) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	ps.db.mu.Lock()
	defer ps.db.mu.Unlock()

	p, ok := ps.db.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Role = role
	ps.db.profiles[id] = p
	return nil
}

type ImportHistoryStore struct {
	db *DB
}

func (ih *ImportHistoryStore) Insert(_ context.Context, history *store.ImportHistory) error {
	ih.db.mu.Lock()
	defer ih.db.mu.Unlock()

	ih.db.nextImport++
	history.ID = ih.db.nextImport
	history.ProcessedAt = time.Now().UTC()
	ih.db.imports = append(ih.db.imports, *history)
	return nil
}

func (ih *ImportHistoryStore) Finish(_ context.Context, history *store.ImportHistory) error {
	ih.db.mu.Lock()
	defer ih.db.mu.Unlock()

	for i := range ih.db.imports {
		if ih.db.imports[i].ID == history.ID {
			processedAt := ih.db.imports[i].ProcessedAt
			ih.db.imports[i] = *history
			ih.db.imports[i].ProcessedAt = processedAt
			ih.db.imports[i].Errors = append([]string(nil), history.Errors...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (ih *ImportHistoryStore) GetLatest(_ context.Context, limit int) ([]store.ImportHistory, error) {
	ih.db.mu.RLock()
	defer ih.db.mu.RUnlock()

	var result []store.ImportHistory
	for i := len(ih.db.imports) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		result = append(result, ih.db.imports[i])
	}
	return result, nil
}

func sortProfiles(p []store.Profile) {
	sort.Slice(p, func(i, j int) bool { return p[i].FullName < p[j].FullName })
}
