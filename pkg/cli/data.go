package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mchmarny/kinfeat/pkg/chart"
	"github.com/mchmarny/kinfeat/pkg/data"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDataError maps store errors to a status code.
func writeDataError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, data.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func runsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryParamInt(r, "limit", queryResultLimitDefault)
		list, err := data.ListRuns(db, limit)
		if err != nil {
			writeDataError(w, err, "failed to list runs")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func runAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := data.GetRun(db, r.PathValue("id"))
		if err != nil {
			writeDataError(w, err, "failed to get run")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func deleteRunAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := data.DeleteRun(db, r.PathValue("id")); err != nil {
			writeDataError(w, err, "failed to delete run")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func featuresAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryParamInt(r, "limit", queryResultLimitDefault)
		list, err := data.GetFeatures(db, r.PathValue("id"), limit)
		if err != nil {
			writeDataError(w, err, "failed to get features")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func familiesAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := r.URL.Query().Get("live") == "true"
		list, err := data.GetFamilies(db, r.PathValue("id"), live)
		if err != nil {
			writeDataError(w, err, "failed to get families")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func sizesAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := data.GetSizeSummary(db, r.PathValue("id"))
		if err != nil {
			writeDataError(w, err, "failed to get size summary")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func chartAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		run, err := data.GetRun(db, id)
		if err != nil {
			writeDataError(w, err, "failed to get run")
			return
		}

		sizes, err := data.GetSizeSummary(db, id)
		if err != nil {
			writeDataError(w, err, "failed to get size summary")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		if err := chart.WritePNG(w, run.Source, sizes); err != nil {
			slog.Error("failed to render chart", "run", id, "error", err)
		}
	}
}

func queryParamInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Error("error converting query string to int", "value", v, "error", err)
		return def
	}

	if i < 1 {
		return def
	}

	return i
}
