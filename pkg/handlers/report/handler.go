package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/de-tools/report-atlas/pkg/template"
)

const defaultFormat = report.FormatHTML

// Service is the part of the report renderer the handlers use
type Service interface {
	WorksheetDefs() []template.Worksheet
	Periods() []domain.Period
	Render(ctx context.Context, format report.Format, w io.Writer) error
	RenderWorksheet(ctx context.Context, id string, format report.Format, w io.Writer) error
}

type Handler struct {
	reports Service
}

func NewHandler(reports Service) *Handler {
	return &Handler{reports: reports}
}

func (h *Handler) ListWorksheets(w http.ResponseWriter, r *http.Request) {
	response := make([]api.Worksheet, 0)
	for _, ws := range h.reports.WorksheetDefs() {
		response = append(response, api.Worksheet{ID: ws.ID, Kind: string(ws.Kind), Description: ws.Description})
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	response := make([]api.Period, 0)
	for _, p := range h.reports.Periods() {
		response = append(response, api.Period{Name: p.Name, Start: p.Start, End: p.End, Duration: p.Days()})
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	format := formatOf(r)
	h.render(w, r, format, func(ctx context.Context, buf io.Writer) error {
		return h.reports.Render(ctx, format, buf)
	})
}

func (h *Handler) GetWorksheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "worksheet")
	format := formatOf(r)
	h.render(w, r, format, func(ctx context.Context, buf io.Writer) error {
		return h.reports.RenderWorksheet(ctx, id, format, buf)
	})
}

// render buffers the document so a failed render still gets an error status
func (h *Handler) render(w http.ResponseWriter, r *http.Request, format report.Format, fn func(context.Context, io.Writer) error) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var buf bytes.Buffer
	if err := fn(ctx, &buf); err != nil {
		status := statusOf(err)
		logger.Error().
			Err(err).
			Str("format", string(format)).
			Int("status", status).
			Msg("failed to render report")
		writeJSON(ctx, w, status, api.Error{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == report.FormatXLSX {
		w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error().Err(err).Msg("failed to write report")
	}
}

func formatOf(r *http.Request) report.Format {
	if f := r.URL.Query().Get("format"); f != "" {
		return report.Format(f)
	}
	return defaultFormat
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, report.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrUnknownWorksheet):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
