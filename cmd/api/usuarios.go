package main

import (
	"net/http"

	"github.com/farxc/portal_tramites/internal/auth"
	"github.com/farxc/portal_tramites/internal/response"
	"github.com/farxc/portal_tramites/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type GetUsuariosResponse = response.APIResponse[[]store.Profile]

func (app *application) handleListUsuarios(w http.ResponseWriter, r *http.Request) {
	data, err := app.store.Profiles.List(r.Context())
	if err != nil {
		app.writeStoreError(w, err, "list usuarios", false)
		return
	}
	if data == nil {
		data = []store.Profile{}
	}

	if err := writeJSON(w, http.StatusOK, &GetUsuariosResponse{Success: true, Data: data}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Change a user's role
// @Tags			Usuarios
// @Accept			json
// @Param			id	path		string	true	"Profile UUID"
// @Success		200	{object}	response.APIResponse[any]
// @Failure		400	{object}	response.ErrorResponse	"Unknown role or own role"
// @Failure		404	{object}	response.ErrorResponse
// @Router			/admin/usuarios/{id}/rol [patch]
func (app *application) handleUpdateUsuarioRol(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errInvalidID.Error())
		return
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if !auth.HasRole(input.Role, store.RoleAdmin, store.RoleSupervisor, store.RoleFuncionario) {
		writeJSONError(w, http.StatusBadRequest, "role must be admin, supervisor or funcionario")
		return
	}

	if p, ok := auth.PrincipalFromContext(r.Context()); ok && p.UserID == id && input.Role != store.RoleAdmin {
		writeJSONError(w, http.StatusBadRequest, "admins cannot remove their own admin role")
		return
	}

	if err := app.store.Profiles.UpdateRole(r.Context(), id, input.Role); err != nil {
		app.writeStoreError(w, err, "update role", false)
		return
	}

	app.appLogger.Info("Usuarios", "Role of %s set to %s", id, input.Role)
	if err := writeJSON(w, http.StatusOK, &response.APIResponse[any]{Success: true, Message: "Role updated"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
