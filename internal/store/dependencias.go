package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DependenciaStore struct {
	db *sqlx.DB
}

type DependenciaFilter struct {
	OnlyActive bool
	Tipo       string
	Search     string
}

const dependenciaColumns = `
	id,
	codigo,
	sigla,
	nombre,
	tipo,
	dependencia_padre_id,
	nivel,
	orden,
	activo,
	responsable,
	correo,
	extension,
	telefono,
	direccion,
	horario_atencion,
	enlace_web,
	created_by,
	updated_by,
	created_at,
	updated_at`

// List returns units ordered by nivel, orden and nombre. The hierarchy
// builder relies on this ordering.
func (ds *DependenciaStore) List(ctx context.Context, filter DependenciaFilter) ([]Dependencia, error) {
	var (
		where []string
		args  []any
	)

	if filter.OnlyActive {
		where = append(where, "activo = TRUE")
	}
	if filter.Tipo != "" {
		args = append(args, filter.Tipo)
		where = append(where, fmt.Sprintf("tipo = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(nombre ILIKE $%[1]d OR codigo ILIKE $%[1]d OR sigla ILIKE $%[1]d)", len(args)))
	}

	query := `SELECT ` + dependenciaColumns + ` FROM dependencias`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY nivel ASC, orden ASC, nombre ASC"

	var result []Dependencia
	if err := ds.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query dependencias: %w", err)
	}
	return result, nil
}

func (ds *DependenciaStore) GetByID(ctx context.Context, id int64) (*Dependencia, error) {
	query := `SELECT ` + dependenciaColumns + ` FROM dependencias WHERE id = $1`

	var d Dependencia
	if err := ds.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, mapPostgresError(err)
	}
	return &d, nil
}

func (ds *DependenciaStore) Create(ctx context.Context, d *Dependencia) error {
	query := `INSERT INTO dependencias (
		codigo,
		sigla,
		nombre,
		tipo,
		dependencia_padre_id,
		nivel,
		orden,
		activo,
		responsable,
		correo,
		extension,
		telefono,
		direccion,
		horario_atencion,
		enlace_web,
		created_by,
		updated_by
	) VALUES (
		:codigo,
		:sigla,
		:nombre,
		:tipo,
		:dependencia_padre_id,
		:nivel,
		:orden,
		:activo,
		:responsable,
		:correo,
		:extension,
		:telefono,
		:direccion,
		:horario_atencion,
		:enlace_web,
		:created_by,
		:updated_by
	) RETURNING id, created_at, updated_at`

	rows, err := ds.db.NamedQueryContext(ctx, query, d)
	if err != nil {
		return mapPostgresError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return err
		}
	}
	return mapPostgresError(rows.Err())
}

// Update writes the full record and, in the same transaction, the new nivel
// of every descendant that moved with it. Last write wins.
func (ds *DependenciaStore) Update(ctx context.Context, d *Dependencia, descendantLevels map[int64]int) error {
	tx, err := ds.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE dependencias SET
		codigo = :codigo,
		sigla = :sigla,
		nombre = :nombre,
		tipo = :tipo,
		dependencia_padre_id = :dependencia_padre_id,
		nivel = :nivel,
		orden = :orden,
		activo = :activo,
		responsable = :responsable,
		correo = :correo,
		extension = :extension,
		telefono = :telefono,
		direccion = :direccion,
		horario_atencion = :horario_atencion,
		enlace_web = :enlace_web,
		updated_by = :updated_by,
		updated_at = NOW()
	WHERE id = :id`

	result, err := tx.NamedExecContext(ctx, query, d)
	if err != nil {
		return mapPostgresError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	for id, nivel := range descendantLevels {
		if _, err := tx.ExecContext(ctx, `UPDATE dependencias SET nivel = $1, updated_at = NOW() WHERE id = $2`, nivel, id); err != nil {
			return mapPostgresError(err)
		}
	}

	return tx.Commit()
}

func (ds *DependenciaStore) SetActive(ctx context.Context, id int64, active bool, by uuid.NullUUID) error {
	query := `UPDATE dependencias SET activo = $1, updated_by = $2, updated_at = NOW() WHERE id = $3`

	result, err := ds.db.ExecContext(ctx, query, active, by, id)
	if err != nil {
		return mapPostgresError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReferences counts procedures pointing at the unit as dependencia or subdependencia.
func (ds *DependenciaStore) CountReferences(ctx context.Context, id int64) (int, error) {
	query := `SELECT COUNT(*) FROM tramites WHERE dependencia_id = $1 OR subdependencia_id = $1`

	var count int
	if err := ds.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("failed to count tramites for dependencia %d: %w", id, err)
	}
	return count, nil
}
