package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/farxc/portal_tramites/internal/hierarchy"
	"github.com/farxc/portal_tramites/internal/response"
	"github.com/farxc/portal_tramites/internal/store"
)

type GetDependenciasResponse = response.APIResponse[[]store.Dependencia]
type GetDependenciaResponse = response.APIResponse[*store.Dependencia]
type GetTreeResponse = response.APIResponse[[]*hierarchy.Node]

type dependenciaInput struct {
	Codigo             string  `json:"codigo"`
	Sigla              *string `json:"sigla"`
	Nombre             string  `json:"nombre"`
	Tipo               string  `json:"tipo"`
	DependenciaPadreID *int64  `json:"dependencia_padre_id"`
	Orden              int     `json:"orden"`
	Activo             *bool   `json:"activo"`
	Responsable        *string `json:"responsable"`
	Correo             *string `json:"correo"`
	Extension          *string `json:"extension"`
	Telefono           *string `json:"telefono"`
	Direccion          *string `json:"direccion"`
	HorarioAtencion    *string `json:"horario_atencion"`
	EnlaceWeb          *string `json:"enlace_web"`
}

func (in *dependenciaInput) validate() error {
	in.Codigo = strings.TrimSpace(in.Codigo)
	in.Nombre = strings.TrimSpace(in.Nombre)
	if in.Codigo == "" || in.Nombre == "" {
		return errors.New("codigo and nombre are required")
	}
	if in.Orden < 0 {
		return errors.New("orden must not be negative")
	}
	return nil
}

func (in *dependenciaInput) apply(d *store.Dependencia) {
	d.Codigo = in.Codigo
	d.Sigla = nullIfBlank(in.Sigla)
	d.Nombre = in.Nombre
	d.Tipo = in.Tipo
	d.DependenciaPadreID = in.DependenciaPadreID
	d.Orden = in.Orden
	if in.Activo != nil {
		d.Activo = *in.Activo
	}
	d.Responsable = nullIfBlank(in.Responsable)
	d.Correo = nullIfBlank(in.Correo)
	d.Extension = nullIfBlank(in.Extension)
	d.Telefono = nullIfBlank(in.Telefono)
	d.Direccion = nullIfBlank(in.Direccion)
	d.HorarioAtencion = nullIfBlank(in.HorarioAtencion)
	d.EnlaceWeb = nullIfBlank(in.EnlaceWeb)
}

// @Summary		Public org chart
// @Description	Active dependencias as a forest ordered by nivel, orden and nombre.
// @Tags			Dependencias
// @Produce		json
// @Success		200	{object}	GetTreeResponse
// @Router			/dependencias/arbol [get]
func (app *application) handleGetPublicTree(w http.ResponseWriter, r *http.Request) {
	units, err := app.store.Dependencias.List(r.Context(), store.DependenciaFilter{OnlyActive: true})
	if err != nil {
		app.writeStoreError(w, err, "get dependencias", true)
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetTreeResponse{Success: true, Data: hierarchy.BuildForest(units)}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetAdminTree(w http.ResponseWriter, r *http.Request) {
	units, err := app.store.Dependencias.List(r.Context(), store.DependenciaFilter{})
	if err != nil {
		app.writeStoreError(w, err, "get dependencias", false)
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetTreeResponse{Success: true, Data: hierarchy.BuildForest(units)}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List dependencias
// @Tags			Dependencias
// @Produce		json
// @Param			q		query		string	false	"Search in nombre and codigo"
// @Param			tipo	query		string	false	"dependencia or subdependencia"
// @Param			activo	query		bool	false	"Only active units"
// @Success		200		{object}	GetDependenciasResponse
// @Router			/admin/dependencias [get]
func (app *application) handleListDependencias(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.DependenciaFilter{
		Search:     strings.TrimSpace(q.Get("q")),
		Tipo:       q.Get("tipo"),
		OnlyActive: q.Get("activo") == "true",
	}

	units, err := app.store.Dependencias.List(r.Context(), filter)
	if err != nil {
		app.writeStoreError(w, err, "list dependencias", false)
		return
	}
	if units == nil {
		units = []store.Dependencia{}
	}

	if err := writeJSON(w, http.StatusOK, &GetDependenciasResponse{Success: true, Data: units}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetDependencia(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := app.store.Dependencias.GetByID(r.Context(), id)
	if err != nil {
		app.writeStoreError(w, err, "get dependencia", false)
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetDependenciaResponse{Success: true, Data: d}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Create dependencia
// @Description	The nivel is derived from the parent; subdependencias require one.
// @Tags			Dependencias
// @Accept			json
// @Produce		json
// @Success		201	{object}	GetDependenciaResponse
// @Failure		400	{object}	response.ErrorResponse
// @Failure		409	{object}	response.ErrorResponse	"codigo or sigla already used"
// @Router			/admin/dependencias [post]
func (app *application) handleCreateDependencia(w http.ResponseWriter, r *http.Request) {
	var input dependenciaInput
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := input.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	d := store.Dependencia{Activo: true}
	input.apply(&d)

	ctx := r.Context()
	units, err := app.store.Dependencias.List(ctx, store.DependenciaFilter{})
	if err != nil {
		app.writeStoreError(w, err, "create dependencia", false)
		return
	}

	d.Nivel, err = hierarchy.Placement(units, d)
	if err != nil {
		app.writeStoreError(w, err, "create dependencia", false)
		return
	}

	d.CreatedBy = actor(r)
	d.UpdatedBy = d.CreatedBy
	if err := app.store.Dependencias.Create(ctx, &d); err != nil {
		app.writeStoreError(w, err, "create dependencia", false)
		return
	}

	app.appLogger.Info("Dependencias", "Created dependencia id=%d codigo=%s nivel=%d", d.ID, d.Codigo, d.Nivel)
	if err := writeJSON(w, http.StatusCreated, &GetDependenciaResponse{Success: true, Data: &d, Message: "Dependencia created"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Update dependencia
// @Description	Moving a unit re-derives its nivel and that of every descendant.
// @Tags			Dependencias
// @Accept			json
// @Produce		json
// @Param			id	path		int	true	"Dependencia ID"
// @Success		200	{object}	GetDependenciaResponse
// @Failure		400	{object}	response.ErrorResponse	"Invalid placement or cycle"
// @Failure		404	{object}	response.ErrorResponse
// @Failure		409	{object}	response.ErrorResponse
// @Router			/admin/dependencias/{id} [put]
func (app *application) handleUpdateDependencia(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var input dependenciaInput
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := input.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	existing, err := app.store.Dependencias.GetByID(ctx, id)
	if err != nil {
		app.writeStoreError(w, err, "update dependencia", false)
		return
	}

	d := *existing
	input.apply(&d)

	if existing.Activo && !d.Activo {
		if err := app.ensureUnreferenced(r, id); err != nil {
			app.writeStoreError(w, err, "update dependencia", false)
			return
		}
	}

	units, err := app.store.Dependencias.List(ctx, store.DependenciaFilter{})
	if err != nil {
		app.writeStoreError(w, err, "update dependencia", false)
		return
	}

	d.Nivel, err = hierarchy.Placement(units, d)
	if err != nil {
		app.writeStoreError(w, err, "update dependencia", false)
		return
	}

	var descendants map[int64]int
	if d.Nivel != existing.Nivel {
		descendants = hierarchy.Relevel(units, id, d.Nivel)
	}

	d.UpdatedBy = actor(r)
	if err := app.store.Dependencias.Update(ctx, &d, descendants); err != nil {
		app.writeStoreError(w, err, "update dependencia", false)
		return
	}

	app.appLogger.Info("Dependencias", "Updated dependencia id=%d nivel=%d relevelled=%d", d.ID, d.Nivel, len(descendants))
	if err := writeJSON(w, http.StatusOK, &GetDependenciaResponse{Success: true, Data: &d, Message: "Dependencia updated"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

type estadoInput struct {
	Activo *bool `json:"activo"`
}

// ensureUnreferenced rejects deactivating a unit that procedures still point at.
func (app *application) ensureUnreferenced(r *http.Request, id int64) error {
	count, err := app.store.Dependencias.CountReferences(r.Context(), id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d tramite(s) use this dependencia", store.ErrReferenced, count)
	}
	return nil
}

// @Summary		Activate or deactivate a dependencia
// @Tags			Dependencias
// @Accept			json
// @Param			id	path		int	true	"Dependencia ID"
// @Success		200	{object}	response.APIResponse[any]
// @Failure		409	{object}	response.ErrorResponse	"Still referenced by tramites"
// @Router			/admin/dependencias/{id}/estado [patch]
func (app *application) handleSetDependenciaEstado(w http.ResponseWriter, r *http.Request) {
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

	ctx := r.Context()
	if _, err := app.store.Dependencias.GetByID(ctx, id); err != nil {
		app.writeStoreError(w, err, "update dependencia", false)
		return
	}

	if !*input.Activo {
		if err := app.ensureUnreferenced(r, id); err != nil {
			app.writeStoreError(w, err, "deactivate dependencia", false)
			return
		}
	}

	if err := app.store.Dependencias.SetActive(ctx, id, *input.Activo, actor(r)); err != nil {
		app.writeStoreError(w, err, "update dependencia", false)
		return
	}

	app.appLogger.Info("Dependencias", "Dependencia id=%d activo=%t", id, *input.Activo)
	if err := writeJSON(w, http.StatusOK, &response.APIResponse[any]{Success: true, Message: "Estado updated"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Export dependencias
// @Description	Downloads every unit as CSV, as the spreadsheet-oriented CSV or as a JSON tree.
// @Tags			Dependencias
// @Produce		text/csv
// @Produce		json
// @Param			format	query	string	false	"csv, excel or json"	default(csv)
// @Router			/admin/dependencias/export [get]
func (app *application) handleExportDependencias(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = hierarchy.FormatCSV
	}

	units, err := app.store.Dependencias.List(r.Context(), store.DependenciaFilter{})
	if err != nil {
		app.writeStoreError(w, err, "export dependencias", false)
		return
	}

	var (
		buf         bytes.Buffer
		contentType = "text/csv; charset=utf-8"
		filename    = "dependencias_" + time.Now().Format("2006-01-02")
	)
	switch format {
	case hierarchy.FormatCSV:
		err = hierarchy.WriteCSV(&buf, units)
		filename += ".csv"
	case hierarchy.FormatExcel:
		err = hierarchy.WriteExcel(&buf, units)
		filename += "_excel.csv"
	case hierarchy.FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(hierarchy.JSONTree(units))
		contentType = "application/json"
		filename += ".json"
	default:
		writeJSONError(w, http.StatusBadRequest, "format must be csv, excel or json")
		return
	}
	if err != nil {
		app.appLogger.Error("Export", "Failed to export dependencias as %s: %v", format, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to export dependencias")
		return
	}

	app.appLogger.Info("Export", "Exported %d dependencias as %s", len(units), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
