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

type DependenciaStore struct {
	db *DB
}

func (ds *DependenciaStore) List(_ context.Context, filter store.DependenciaFilter) ([]store.Dependencia, error) {
	ds.db.mu.RLock()
	defer ds.db.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	var result []store.Dependencia
	for _, d := range ds.db.dependencias {
		if filter.OnlyActive && !d.Activo {
			continue
		}
		if filter.Tipo != "" && d.Tipo != filter.Tipo {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Nombre), search) &&
			!strings.Contains(strings.ToLower(d.Codigo), search) {
			continue
		}
		result = append(result, d)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Nivel != b.Nivel {
			return a.Nivel < b.Nivel
		}
		if a.Orden != b.Orden {
			return a.Orden < b.Orden
		}
		return a.Nombre < b.Nombre
	})
	return result, nil
}

func (ds *DependenciaStore) GetByID(_ context.Context, id int64) (*store.Dependencia, error) {
	ds.db.mu.RLock()
	defer ds.db.mu.RUnlock()

	d, ok := ds.db.dependencias[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

// checkUnique must be called with the lock held.
func (ds *DependenciaStore) checkUnique(d *store.Dependencia) error {
	for _, other := range ds.db.dependencias {
		if other.ID == d.ID {
			continue
		}
		if other.Codigo == d.Codigo {
			return fmt.Errorf("%w: codigo %s", store.ErrConflict, d.Codigo)
		}
		if d.Sigla != nil && other.Sigla != nil && *d.Sigla != "" && *other.Sigla == *d.Sigla {
			return fmt.Errorf("%w: sigla %s", store.ErrConflict, *d.Sigla)
		}
	}
	if d.DependenciaPadreID != nil {
		if _, ok := ds.db.dependencias[*d.DependenciaPadreID]; !ok {
			return fmt.Errorf("%w: dependencia_padre_id %d", store.ErrInvalidReference, *d.DependenciaPadreID)
		}
	}
	return nil
}

func (ds *DependenciaStore) Create(_ context.Context, d *store.Dependencia) error {
	ds.db.mu.Lock()
	defer ds.db.mu.Unlock()

	if err := ds.checkUnique(d); err != nil {
		return err
	}

	ds.db.nextDependencia++
	now := time.Now().UTC()
	d.ID = ds.db.nextDependencia
	d.CreatedAt = now
	d.UpdatedAt = now
	ds.db.dependencias[d.ID] = *d
	return nil
}

func (ds *DependenciaStore) Update(_ context.Context, d *store.Dependencia, descendantLevels map[int64]int) error {
	ds.db.mu.Lock()
	defer ds.db.mu.Unlock()

	existing, ok := ds.db.dependencias[d.ID]
	if !ok {
		return store.ErrNotFound
	}
	if err := ds.checkUnique(d); err != nil {
		return err
	}

	now := time.Now().UTC()
	d.CreatedAt = existing.CreatedAt
	d.CreatedBy = existing.CreatedBy
	d.UpdatedAt = now
	ds.db.dependencias[d.ID] = *d

	for id, nivel := range descendantLevels {
		if child, ok := ds.db.dependencias[id]; ok {
			child.Nivel = nivel
			child.UpdatedAt = now
			ds.db.dependencias[id] = child
		}
	}
	return nil
}

func (ds *DependenciaStore) SetActive(_ context.Context, id int64, active bool, by uuid.NullUUID) error {
	ds.db.mu.Lock()
	defer ds.db.mu.Unlock()

	d, ok := ds.db.dependencias[id]
	if !ok {
		return store.ErrNotFound
	}
	d.Activo = active
	d.UpdatedBy = by
	d.UpdatedAt = time.Now().UTC()
	ds.db.dependencias[id] = d
	return nil
}

func (ds *DependenciaStore) CountReferences(_ context.Context, id int64) (int, error) {
	ds.db.mu.RLock()
	defer ds.db.mu.RUnlock()

	count := 0
	for _, t := range ds.db.tramites {
		if t.DependenciaID == id || (t.SubdependenciaID != nil && *t.SubdependenciaID == id) {
			count++
		}
	}
	return count, nil
}
