package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
	"yardwatch/internal/ports"
	"yardwatch/internal/usecase/dashboard"
	"yardwatch/internal/usecase/ingest"
	"yardwatch/internal/usecase/report"
)

// Server exposes the dashboard read API, manual operations and the live
// websocket stream.
type Server struct {
	dashboard *dashboard.Service
	reports   *report.Service
	pipeline  *ingest.Pipeline
	hub       *Hub
	router    chi.Router
}

func NewServer(dashboardSvc *dashboard.Service, reportSvc *report.Service, pipeline *ingest.Pipeline, hub *Hub) *Server {
	s := &Server{
		dashboard: dashboardSvc,
		reports:   reportSvc,
		pipeline:  pipeline,
		hub:       hub,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.handleEvents)
		r.Get("/trucks", s.handleTrucks)
		r.Get("/equipment", s.handleEquipment)

		r.Get("/alerts", s.handleAlerts)
		r.Post("/alerts/{alertID}/acknowledge", s.handleAcknowledgeAlert)

		r.Get("/safety/summary", s.handleSafetySummary)
		r.Post("/safety/{eventID}/resolve", s.handleResolveSafetyEvent)

		r.Post("/detections/scan", s.handleScan)
		r.Get("/reports/shift/{format}", s.handleShiftReport)
	})

	r.Get("/ws", s.hub.HandleWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.dashboard.LiveEvents(r.Context(), queryLimit(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleTrucks(w http.ResponseWriter, r *http.Request) {
	trucks, err := s.dashboard.Trucks(r.Context(), queryLimit(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trucks": trucks})
}

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	equipment, err := s.dashboard.Equipment(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"equipment": equipment})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.dashboard.ActiveAlerts(r.Context(), queryLimit(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")
	if err := s.dashboard.AcknowledgeAlert(r.Context(), alertID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alert_id": alertID, "status": "acknowledged"})
}

func (s *Server) handleSafetySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.SafetySummary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleResolveSafetyEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if err := s.dashboard.ResolveSafetyEvent(r.Context(), eventID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"event_id": eventID, "status": "resolved"})
}

// handleScan triggers one synchronous pipeline pass, independent of the
// background monitor schedule. The scan runs detached from request
// cancellation: a client disconnect must not fail writes mid-file.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	summary, err := s.pipeline.ScanAndProcess(context.WithoutCancel(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleShiftReport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	shiftReport, err := s.reports.BuildShiftReport(r.Context(), time.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var contentType string
	switch format {
	case report.FormatCSV:
		contentType = "text/csv"
	case report.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case report.FormatPDF:
		contentType = "application/pdf"
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unsupported format %q", format)})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shiftReport.Filename(format)))
	if err := shiftReport.Write(w, format); err != nil {
		// Headers are already out; all we can do is log.
		logging.Error(r.Context(), "shift report rendering failed", slog.Any("err", errs.Loggable(err)))
	}
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrAlertNotFound),
		errors.Is(err, ports.ErrSafetyEventNotFound),
		errors.Is(err, ports.ErrTruckNotFound),
		errors.Is(err, ports.ErrEquipmentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		logging.Error(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", errs.Loggable(err)),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
