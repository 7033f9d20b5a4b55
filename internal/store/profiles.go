package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProfileStore struct {
	db *sqlx.DB
}

func (ps *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT id, email, full_name, role, activo, created_at FROM profiles WHERE id = $1`

	var p Profile
	if err := ps.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, mapPostgresError(err)
	}
	return &p, nil
}

func (ps *ProfileStore) List(ctx context.Context) ([]Profile, error) {
	query := `SELECT id, email, full_name, role, activo, created_at FROM profiles ORDER BY full_name ASC`

	var result []Profile
	if err := ps.db.SelectContext(ctx, &result, query); err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	return result, nil
}

func (ps *ProfileStore) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	result, err := ps.db.ExecContext(ctx, `UPDATE profiles SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return mapPostgresError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
