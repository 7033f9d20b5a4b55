package main

import (
	"errors"
	"net/http"

	"github.com/farxc/portal_tramites/internal/hierarchy"
	"github.com/farxc/portal_tramites/internal/store"
)

// writeStoreError answers err with the status its sentinel maps to. Admin
// callers see the store's message; public callers get a generic one.
func (app *application) writeStoreError(w http.ResponseWriter, err error, action string, public bool) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrReferenced):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidReference),
		errors.Is(err, hierarchy.ErrInvalidTipo),
		errors.Is(err, hierarchy.ErrParentRequired),
		errors.Is(err, hierarchy.ErrParentNotFound),
		errors.Is(err, hierarchy.ErrCycle):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		app.appLogger.Error("API", "Failed to %s: %v", action, err)
	}

	if public {
		switch status {
		case http.StatusNotFound:
			writeJSONError(w, status, "not found")
		case http.StatusInternalServerError:
			writeJSONError(w, status, "failed to "+action)
		default:
			writeJSONError(w, status, "invalid request")
		}
		return
	}

	msg := "failed to " + action
	if status != http.StatusInternalServerError {
		msg += ": " + err.Error()
	}
	writeJSONError(w, status, msg)
}
