package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/farxc/portal_tramites/internal/payment"
	"github.com/farxc/portal_tramites/internal/response"
	"github.com/farxc/portal_tramites/internal/store"
)

type GetTramitesResponse = response.PagedResponse[[]store.Tramite]
type GetTramiteResponse = response.APIResponse[*store.Tramite]
type GetCategoriasResponse = response.APIResponse[[]string]

type tramiteInput struct {
	NombreTramite    string  `json:"nombre_tramite"`
	Descripcion      string  `json:"descripcion"`
	Categoria        string  `json:"categoria"`
	Modalidad        string  `json:"modalidad"`
	Formulario       string  `json:"formulario"`
	DependenciaID    int64   `json:"dependencia_id"`
	SubdependenciaID *int64  `json:"subdependencia_id"`
	RequierePago     *string `json:"requiere_pago"`
	TiempoRespuesta  string  `json:"tiempo_respuesta"`
	Requisitos       string  `json:"requisitos"`
	Instrucciones    string  `json:"instrucciones"`
	URLSuit          string  `json:"url_suit"`
	URLGov           string  `json:"url_gov"`
	Activo           *bool   `json:"activo"`
}

// toTramite validates the input and copies it onto t.
func (in *tramiteInput) toTramite(t *store.Tramite) error {
	in.NombreTramite = strings.TrimSpace(in.NombreTramite)
	if in.NombreTramite == "" {
		return errors.New("nombre_tramite is required")
	}
	if in.DependenciaID <= 0 {
		return errors.New("dependencia_id is required")
	}

	pago := payment.ValidateAndNormalize(in.RequierePago)
	if !pago.IsValid {
		return errors.New(`requiere_pago must be "Sí", "No" or empty`)
	}

	t.NombreTramite = in.NombreTramite
	t.Descripcion = in.Descripcion
	t.Categoria = strings.TrimSpace(in.Categoria)
	t.Modalidad = strings.TrimSpace(in.Modalidad)
	t.Formulario = in.Formulario
	t.DependenciaID = in.DependenciaID
	t.SubdependenciaID = in.SubdependenciaID
	t.RequierePago = pago.NormalizedValue
	t.TiempoRespuesta = in.TiempoRespuesta
	t.Requisitos = in.Requisitos
	t.Instrucciones = in.Instrucciones
	t.URLSuit = in.URLSuit
	t.URLGov = in.URLGov
	if in.Activo != nil {
		t.Activo = *in.Activo
	}
	return nil
}

var errInvalidPago = errors.New(`pago must be "Sí" or "No"`)

func tramiteFilter(r *http.Request) (store.TramiteFilter, error) {
	q := r.URL.Query()
	filter := store.TramiteFilter{
		Search:    strings.TrimSpace(q.Get("q")),
		Categoria: q.Get("categoria"),
		Modalidad: q.Get("modalidad"),
	}
	filter.Limit, filter.Offset = pagination(r)

	if dep := q.Get("dependencia_id"); dep != "" {
		id, err := strconv.ParseInt(dep, 10, 64)
		if err != nil || id <= 0 {
			return filter, errors.New("invalid dependencia_id")
		}
		filter.DependenciaID = id
	}
	if pago := q.Get("pago"); pago != "" {
		normalized := payment.Normalize(pago)
		if normalized == nil {
			return filter, errInvalidPago
		}
		filter.RequierePago = normalized
	}
	return filter, nil
}

func (app *application) listTramites(w http.ResponseWriter, r *http.Request, filter store.TramiteFilter, public bool) {
	data, err := app.store.Tramites.List(r.Context(), filter)
	if err != nil {
		app.writeStoreError(w, err, "list tramites", public)
		return
	}
	if data == nil {
		data = []store.Tramite{}
	}

	resp := &GetTramitesResponse{Success: true, Data: data, Limit: filter.Limit, Offset: filter.Offset}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Search tramites
// @Description	Active procedures only.
// @Tags			Tramites
// @Produce		json
// @Param			q				query		string	false	"Search in nombre and descripcion"
// @Param			categoria		query		string	false	"Categoria"
// @Param			modalidad		query		string	false	"Modalidad"
// @Param			dependencia_id	query		int		false	"Dependencia or subdependencia"
// @Param			pago			query		string	false	"Sí or No"
// @Param			limit			query		int		false	"Page size"	default(50)
// @Param			offset			query		int		false	"Offset"
// @Success		200				{object}	GetTramitesResponse
// @Failure		400				{object}	response.ErrorResponse
// @Router			/tramites [get]
func (app *application) handleListPublicTramites(w http.ResponseWriter, r *http.Request) {
	filter, err := tramiteFilter(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.OnlyActive = true
	app.listTramites(w, r, filter, true)
}

func (app *application) handleListTramites(w http.ResponseWriter, r *http.Request) {
	filter, err := tramiteFilter(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.OnlyActive = r.URL.Query().Get("activo") == "true"
	app.listTramites(w, r, filter, false)
}

func (app *application) handleGetPublicTramite(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := app.store.Tramites.GetByID(r.Context(), id)
	if err == nil && !t.Activo {
		err = store.ErrNotFound
	}
	if err != nil {
		app.writeStoreError(w, err, "get tramite", true)
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetTramiteResponse{Success: true, Data: t}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetCategorias(w http.ResponseWriter, r *http.Request) {
	data, err := app.store.Tramites.Categories(r.Context())
	if err != nil {
		app.writeStoreError(w, err, "get categorias", true)
		return
	}
	if data == nil {
		data = []string{}
	}

	if err := writeJSON(w, http.StatusOK, &GetCategoriasResponse{Success: true, Data: data}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Create tramite
// @Tags			Tramites
// @Accept			json
// @Produce		json
// @Success		201	{object}	GetTramiteResponse
// @Failure		400	{object}	response.ErrorResponse	"Missing fields, bad requiere_pago or unknown dependencia"
// @Router			/admin/tramites [post]
func (app *application) handleCreateTramite(w http.ResponseWriter, r *http.Request) {
	var input tramiteInput
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	t := store.Tramite{Activo: true}
	if err := input.toTramite(&t); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.CreatedBy = actor(r)
	t.UpdatedBy = t.CreatedBy

	if err := app.store.Tramites.Create(r.Context(), &t); err != nil {
		app.writeStoreError(w, err, "create tramite", false)
		return
	}

	app.appLogger.Info("Tramites", "Created tramite id=%d dependencia=%d", t.ID, t.DependenciaID)
	if err := writeJSON(w, http.StatusCreated, &GetTramiteResponse{Success: true, Data: &t, Message: "Tramite created"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleUpdateTramite(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var input tramiteInput
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := r.Context()
	existing, err := app.store.Tramites.GetByID(ctx, id)
	if err != nil {
		app.writeStoreError(w, err, "update tramite", false)
		return
	}

	t := *existing
	if err := input.toTramite(&t); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.UpdatedBy = actor(r)

	if err := app.store.Tramites.Update(ctx, &t); err != nil {
		app.writeStoreError(w, err, "update tramite", false)
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetTramiteResponse{Success: true, Data: &t, Message: "Tramite updated"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleSetTramiteEstado(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var input estadoInput
	if err := readJSON(w, r, &input); err != nil || input.Activo == nil {
		writeJSONError(w, http.StatusBadRequest, "activo is required")
		return
	}

	if err := app.store.Tramites.SetActive(r.Context(), id, *input.Activo, actor(r)); err != nil {
		app.writeStoreError(w, err, "update tramite", false)
		return
	}

	if err := writeJSON(w, http.StatusOK, &response.APIResponse[any]{Success: true, Message: "Estado updated"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
