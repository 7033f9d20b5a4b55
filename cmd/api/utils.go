package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/farxc/portal_tramites/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var errInvalidID = errors.New("invalid id")

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// actor is the audit id stamped on writes.
func actor(r *http.Request) uuid.NullUUID {
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		return uuid.NullUUID{UUID: p.UserID, Valid: true}
	}
	return uuid.NullUUID{}
}

// nullIfBlank turns "" into nil so optional text columns stay NULL.
func nullIfBlank(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
