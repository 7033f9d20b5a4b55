package main

import (
	"context"
	"net/http"
	"time"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type healthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// @Summary		Health check
// @Description	reports the build version and whether the database answers a ping
// @Tags			Health
// @Produce		json
// @Success		200	{object}	healthStatus
// @Failure		503	{object}	healthStatus
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := healthStatus{Status: "available", Version: version, Database: "up"}
	status := http.StatusOK

	if app.db == nil {
		data.Database = "unknown"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.db.PingContext(ctx); err != nil {
			app.appLogger.Error("Health", "Database ping failed: %v", err)
			data.Status = "unavailable"
			data.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}

	if err := writeJSON(w, status, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
