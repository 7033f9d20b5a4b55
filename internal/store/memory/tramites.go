package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/farxc/portal_tramites/internal/store"
	"github.com/google/uuid"
)

type TramiteStore struct {
	db *DB
}

func matches(t store.Tramite, filter store.TramiteFilter) bool {
	if filter.OnlyActive && !t.Activo {
		return false
	}
	if filter.Search != "" {
		q := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.NombreTramite), q) && !strings.Contains(strings.ToLower(t.Descripcion), q) {
			return false
		}
	}
	if filter.Categoria != "" && t.Categoria != filter.Categoria {
		return false
	}
	if filter.Modalidad != "" && t.Modalidad != filter.Modalidad {
		return false
	}
	if filter.DependenciaID > 0 && t.DependenciaID != filter.DependenciaID &&
		(t.SubdependenciaID == nil || *t.SubdependenciaID != filter.DependenciaID) {
		return false
	}
	if filter.RequierePago != nil && (t.RequierePago == nil || *t.RequierePago != *filter.RequierePago) {
		return false
	}
	return true
}

func (ts *TramiteStore) List(_ context.Context, filter store.TramiteFilter) ([]store.Tramite, error) {
	ts.db.mu.RLock()
	defer ts.db.mu.RUnlock()

	var result []store.Tramite
	for _, t := range ts.db.tramites {
		if matches(t, filter) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].NombreTramite != result[j].NombreTramite {
			return result[i].NombreTramite < result[j].NombreTramite
		}
		return result[i].ID < result[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (ts *TramiteStore) GetByID(_ context.Context, id int64) (*store.Tramite, error) {
	ts.db.mu.RLock()
	defer ts.db.mu.RUnlock()

	t, ok := ts.db.tramites[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

// checkReferences must be called with the lock held.
func (ts *TramiteStore) checkReferences(t *store.Tramite) error {
	if _, ok := ts.db.dependencias[t.DependenciaID]; !ok {
		return fmt.Errorf("%w: dependencia_id %d", store.ErrInvalidReference, t.DependenciaID)
	}
	if t.SubdependenciaID != nil {
		if _, ok := ts.db.dependencias[*t.SubdependenciaID]; !ok {
			return fmt.Errorf("%w: subdependencia_id %d", store.ErrInvalidReference, *t.SubdependenciaID)
		}
	}
	return nil
}

// insert must be called with the lock held.
func (ts *TramiteStore) insert(t *store.Tramite) {
	ts.db.nextTramite++
	now := time.Now().UTC()
	t.ID = ts.db.nextTramite
	t.CreatedAt = now
	t.UpdatedAt = now
	ts.db.tramites[t.ID] = *t
}

func (ts *TramiteStore) Create(_ context.Context, t *store.Tramite) error {
	ts.db.mu.Lock()
	defer ts.db.mu.Unlock()

	if err := ts.checkReferences(t); err != nil {
		return err
	}
	ts.insert(t)
	return nil
}

func (ts *TramiteStore) Update(_ context.Context, t *store.Tramite) error {
	ts.db.mu.Lock()
	defer ts.db.mu.Unlock()

	existing, ok := ts.db.tramites[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	if err := ts.checkReferences(t); err != nil {
		return err
	}
	t.CreatedAt = existing.CreatedAt
	t.CreatedBy = existing.CreatedBy
	t.UpdatedAt = time.Now().UTC()
	ts.db.tramites[t.ID] = *t
	return nil
}

func (ts *TramiteStore) SetActive(_ context.Context, id int64, active bool, by uuid.NullUUID) error {
	ts.db.mu.Lock()
	defer ts.db.mu.Unlock()

	t, ok := ts.db.tramites[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Activo = active
	t.UpdatedBy = by
	t.UpdatedAt = time.Now().UTC()
	ts.db.tramites[id] = t
	return nil
}

// BulkInsert is all or nothing, like the single multi-row INSERT it stands in for.
func (ts *TramiteStore) BulkInsert(_ context.Context, rows []store.Tramite) (int64, error) {
	ts.db.mu.Lock()
	defer ts.db.mu.Unlock()

	for i := range rows {
		if err := ts.checkReferences(&rows[i]); err != nil {
			return 0, err
		}
	}
	for i := range rows {
		ts.insert(&rows[i])
	}
	return int64(len(rows)), nil
}

func (ts *TramiteStore) Categories(_ context.Context) ([]string, error) {
	ts.db.mu.RLock()
	defer ts.db.mu.RUnlock()

	seen := make(map[string]bool)
	var result []string
	for _, t := range ts.db.tramites {
		if !t.Activo || t.Categoria == "" || seen[t.Categoria] {
			continue
		}
		seen[t.Categoria] = true
		result = append(result, t.Categoria)
	}
	sort.Strings(result)
	return result, nil
}
