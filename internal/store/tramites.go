package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TramiteStore struct {
	db *sqlx.DB
}

type TramiteFilter struct {
	Search        string
	Categoria     string
	Modalidad     string
	DependenciaID int64
	RequierePago  *string
	OnlyActive    bool
	Limit         int
	Offset        int
}

const tramiteColumns = `
	id,
	nombre_tramite,
	descripcion,
	categoria,
	modalidad,
	formulario,
	dependencia_id,
	subdependencia_id,
	requiere_pago,
	tiempo_respuesta,
	requisitos,
	instrucciones,
	url_suit,
	url_gov,
	activo,
	created_by,
	updated_by,
	created_at,
	updated_at`

const insertTramite = `INSERT INTO tramites (
		nombre_tramite,
		descripcion,
		categoria,
		modalidad,
		formulario,
		dependencia_id,
		subdependencia_id,
		requiere_pago,
		tiempo_respuesta,
		requisitos,
		instrucciones,
		url_suit,
		url_gov,
		activo,
		created_by,
		updated_by
	) VALUES (
		:nombre_tramite,
		:descripcion,
		:categoria,
		:modalidad,
		:formulario,
		:dependencia_id,
		:subdependencia_id,
		:requiere_pago,
		:tiempo_respuesta,
		:requisitos,
		:instrucciones,
		:url_suit,
		:url_gov,
		:activo,
		:created_by,
		:updated_by
	)`

func (ts *TramiteStore) List(ctx context.Context, filter TramiteFilter) ([]Tramite, error) {
	var (
		where []string
		args  []any
	)

	if filter.OnlyActive {
		where = append(where, "activo = TRUE")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(nombre_tramite ILIKE $%[1]d OR descripcion ILIKE $%[1]d)", len(args)))
	}
	if filter.Categoria != "" {
		args = append(args, filter.Categoria)
		where = append(where, fmt.Sprintf("categoria = $%d", len(args)))
	}
	if filter.Modalidad != "" {
		args = append(args, filter.Modalidad)
		where = append(where, fmt.Sprintf("modalidad = $%d", len(args)))
	}
	if filter.DependenciaID > 0 {
		args = append(args, filter.DependenciaID)
		where = append(where, fmt.Sprintf("(dependencia_id = $%[1]d OR subdependencia_id = $%[1]d)", len(args)))
	}
	if filter.RequierePago != nil {
		args = append(args, *filter.RequierePago)
		where = append(where, fmt.Sprintf("requiere_pago = $%d", len(args)))
	}

	query := `SELECT ` + tramiteColumns + ` FROM tramites`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY nombre_tramite ASC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var result []Tramite
	if err := ts.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tramites: %w", err)
	}
	return result, nil
}

func (ts *TramiteStore) GetByID(ctx context.Context, id int64) (*Tramite, error) {
	query := `SELECT ` + tramiteColumns + ` FROM tramites WHERE id = $1`

	var t Tramite
	if err := ts.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, mapPostgresError(err)
	}
	return &t, nil
}

func (ts *TramiteStore) Create(ctx context.Context, t *Tramite) error {
	rows, err := ts.db.NamedQueryContext(ctx, insertTramite+` RETURNING id, created_at, updated_at`, t)
	if err != nil {
		return mapPostgresError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
	}
	return mapPostgresError(rows.Err())
}

func (ts *TramiteStore) Update(ctx context.Context, t *Tramite) error {
	query := `UPDATE tramites SET
		nombre_tramite = :nombre_tramite,
		descripcion = :descripcion,
		categoria = :categoria,
		modalidad = :modalidad,
		formulario = :formulario,
		dependencia_id = :dependencia_id,
		subdependencia_id = :subdependencia_id,
		requiere_pago = :requiere_pago,
		tiempo_respuesta = :tiempo_respuesta,
		requisitos = :requisitos,
		instrucciones = :instrucciones,
		url_suit = :url_suit,
		url_gov = :url_gov,
		activo = :activo,
		updated_by = :updated_by,
		updated_at = NOW()
	WHERE id = :id`

	result, err := ts.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return mapPostgresError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (ts *TramiteStore) SetActive(ctx context.Context, id int64, active bool, by uuid.NullUUID) error {
	query := `UPDATE tramites SET activo = $1, updated_by = $2, updated_at = NOW() WHERE id = $3`

	result, err := ts.db.ExecContext(ctx, query, active, by, id)
	if err != nil {
		return mapPostgresError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Postgres caps a statement at 65535 bind parameters; each tramite binds 16.
const (
	tramiteInsertParams = 16
	bulkInsertChunk     = 65535 / tramiteInsertParams
)

// chunkBounds splits n rows into [start, end) ranges of at most size rows.
func chunkBounds(n, size int) [][2]int {
	var bounds [][2]int
	for start := 0; start < n; start += size {
		bounds = append(bounds, [2]int{start, min(start+size, n)})
	}
	return bounds
}

// BulkInsert submits the rows as multi-row INSERTs of at most bulkInsertChunk
// rows, all in one transaction. A constraint violation on any row fails the
// whole batch.
func (ts *TramiteStore) BulkInsert(ctx context.Context, rows []Tramite) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := ts.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var inserted int64
	for _, b := range chunkBounds(len(rows), bulkInsertChunk) {
		result, err := tx.NamedExecContext(ctx, insertTramite, rows[b[0]:b[1]])
		if err != nil {
			return 0, mapPostgresError(err)
		}
		n, _ := result.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, mapPostgresError(err)
	}
	return inserted, nil
}

func (ts *TramiteStore) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT categoria FROM tramites WHERE activo = TRUE AND categoria <> '' ORDER BY categoria`

	var result []string
	if err := ts.db.SelectContext(ctx, &result, query); err != nil {
		return nil, fmt.Errorf("failed to query categorias: %w", err)
	}
	return result, nil
}
