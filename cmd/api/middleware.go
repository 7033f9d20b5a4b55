package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/farxc/portal_tramites/internal/auth"
	"github.com/farxc/portal_tramites/internal/store"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *application) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		app.appLogger.Info("HTTP", "%s %s status=%d bytes=%d duration=%s request_id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

// authenticate resolves the bearer token to an active profile.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, claims, err := app.verifier.Verify(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := r.Context()
		profile, err := app.store.Profiles.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusForbidden, "user has no profile")
				return
			}
			app.appLogger.Error("Auth", "Failed to load profile %s: %v", userID, err)
			writeJSONError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		if !profile.Activo {
			writeJSONError(w, http.StatusForbidden, "user is inactive")
			return
		}

		email := profile.Email
		if email == "" {
			email = claims.Email
		}
		principal := &auth.Principal{UserID: profile.ID, Email: email, Role: profile.Role}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(ctx, principal)))
	})
}

func (app *application) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !auth.HasRole(principal.Role, roles...) {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
