package main

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/farxc/portal_tramites/internal/importer"
	"github.com/farxc/portal_tramites/internal/response"
	"github.com/farxc/portal_tramites/internal/store"
)

const maxImportBytes = 10 << 20

type ImportResponse = response.APIResponse[*importer.Report]
type GetImportHistoryResponse = response.APIResponse[[]store.ImportHistory]

// importSource returns the uploaded file and its name. Multipart uploads use
// the "file" field; anything else is read as the raw CSV body.
func importSource(w http.ResponseWriter, r *http.Request) (io.Reader, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		return file, filepath.Base(header.Filename), nil
	}

	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "upload.csv"
	}
	return r.Body, filepath.Base(name), nil
}

// @Summary		Import tramites
// @Description	Loads procedures from the import CSV layout. Rows with errors are skipped and reported.
// @Tags			Import
// @Accept			text/csv
// @Accept			multipart/form-data
// @Produce		json
// @Success		201	{object}	ImportResponse			"Every row imported"
// @Success		200	{object}	ImportResponse			"Some rows skipped"
// @Failure		422	{object}	ImportResponse			"No valid rows"
// @Failure		500	{object}	response.ErrorResponse	"Batch insert failed"
// @Router			/admin/tramites/import [post]
func (app *application) handleImportTramites(w http.ResponseWriter, r *http.Request) {
	src, name, err := importSource(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing import file: "+err.Error())
		return
	}
	if c, ok := src.(io.Closer); ok && src != r.Body {
		defer c.Close()
	}

	text, err := importer.Decode(src)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		writeJSONError(w, http.StatusBadRequest, "import file is empty")
		return
	}

	report, err := app.importer.Run(r.Context(), name, store.TriggerTypeManual, text, actor(r))
	if err != nil {
		if report == nil {
			app.writeStoreError(w, err, "import tramites", false)
			return
		}
		writeJSON(w, http.StatusInternalServerError, &ImportResponse{Success: false, Data: report, Message: "Import failed: " + err.Error()})
		return
	}

	status, message := http.StatusCreated, "Import completed"
	switch report.Status {
	case store.StatusPartial:
		status, message = http.StatusOK, "Import completed with skipped rows"
	case store.StatusFailure:
		status, message = http.StatusUnprocessableEntity, "No valid rows to import"
	}

	if err := writeJSON(w, status, &ImportResponse{Success: report.Status != store.StatusFailure, Data: report, Message: message}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get import history
// @Description	Get a list of the latest import runs.
// @Tags			Import
// @Produce		json
// @Param			limit	query		int							false	"Limit the number of results"	default(10)
// @Success		200		{object}	GetImportHistoryResponse	"Successfully retrieved latest import records"
// @Failure		500		{object}	response.ErrorResponse		"Failed to get import history"
// @Router			/admin/tramites/import/history [get]
func (app *application) handleGetImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	if limit <= 0 || limit > maxPageSize {
		limit = 10
	}

	data, err := app.store.ImportHistory.GetLatest(r.Context(), limit)
	if err != nil {
		app.writeStoreError(w, err, "get import history", false)
		return
	}
	if data == nil {
		data = []store.ImportHistory{}
	}

	response := &GetImportHistoryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved latest import records",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetImportTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := importer.WriteTemplate(&buf); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to build template")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="plantilla_tramites.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
