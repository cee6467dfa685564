package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/harborlog/server/internal/harborlog/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport streams the selected records as a CSV or XLSX attachment. An
// empty selection answers 204 and produces no file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	variant, rng, ok := s.selection(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "invalid_format", "format must be csv or xlsx")
		return
	}

	recs, err := s.reports.Snapshot(r.Context(), variant, rng)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var (
		buf         bytes.Buffer
		wrote       bool
		contentType string
	)
	switch format {
	case "xlsx":
		wrote, err = report.WriteXLSX(&buf, report.DefaultSheet, recs)
		contentType = xlsxContentType
	default:
		wrote, err = report.WriteCSV(&buf, recs)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		s.logger.Error("export encode", "format", format, "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if !wrote {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	name := report.ExportFileName(variant, rng, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
