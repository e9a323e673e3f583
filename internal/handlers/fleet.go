package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-equipment/internal/fleet"
	"github.com/ukydev/fleet-equipment/internal/metrics"
	"github.com/ukydev/fleet-equipment/internal/middleware"
	"github.com/ukydev/fleet-equipment/internal/models"
	"github.com/ukydev/fleet-equipment/internal/report"
)

// FleetHandler serves fleet records, the dashboard and the export
type FleetHandler struct {
	service *fleet.Service
	metrics *metrics.Metrics
}

// NewFleetHandler creates a new fleet handler
func NewFleetHandler(service *fleet.Service, m *metrics.Metrics) *FleetHandler {
	return &FleetHandler{service: service, metrics: m}
}

// Catalog lists the accepted equipment types, cities and statuses.
type Catalog struct {
	EquipmentTypes []models.EquipmentType `json:"equipment_types"`
	Cities         []models.City          `json:"cities"`
	Statuses       []models.Status        `json:"statuses"`
}

// RecordList is the body of GET /api/records.
type RecordList struct {
	Records []models.FleetRecord `json:"records"`
	Count   int                  `json:"count"`
}

// Catalog returns the intake enumerations
func (h *FleetHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, Catalog{
		EquipmentTypes: models.EquipmentTypes,
		Cities:         models.Cities,
		Statuses:       models.Statuses,
	})
}

// ListRecords returns the records visible to the caller
func (h *FleetHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	visible, ok := h.visible(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, RecordList{Records: visible, Count: len(visible)})
}

// CreateRecord registers a new fleet record
func (h *FleetHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var input fleet.RecordInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	record, err := h.service.CreateRecord(r.Context(), input, principal)
	if err != nil {
		var verr *fleet.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Field: verr.Field})
		case errors.Is(err, fleet.ErrUnknownRole):
			writeError(w, http.StatusForbidden, "Insufficient permissions")
		default:
			log.WithError(err).Error("Failed to create record")
			writeError(w, http.StatusInternalServerError, "Failed to create record")
		}
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Records dispatches GET and POST on the records collection
func (h *FleetHandler) Records(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListRecords(w, r)
	case http.MethodPost:
		h.CreateRecord(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Dashboard returns KPIs, urgent maintenance rows and chart series
func (h *FleetHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	visible, ok := h.visible(w, r)
	if !ok {
		return
	}
	principal, _ := middleware.GetPrincipalFromContext(r.Context())

	dashboard := report.BuildDashboard(principal, visible)
	h.metrics.SetAlerted(dashboard.Counts.Alerted)
	writeJSON(w, http.StatusOK, dashboard)
}

// Alerts returns the visible records due for maintenance
func (h *FleetHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	visible, ok := h.visible(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fleet.EvaluateAlerts(visible))
}

// Export streams the visible records as an Excel workbook
func (h *FleetHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	visible, ok := h.visible(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, visible); err != nil {
		log.WithError(err).Error("Failed to build export")
		writeError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}

	w.Header().Set("Content-Type", report.ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// visible loads the caller's visible records, writing the error reply
// itself when it fails.
func (h *FleetHandler) visible(w http.ResponseWriter, r *http.Request) ([]models.FleetRecord, bool) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return nil, false
	}

	records, err := h.service.Visible(r.Context(), principal)
	if err != nil {
		if errors.Is(err, fleet.ErrUnknownRole) {
			writeError(w, http.StatusForbidden, "Insufficient permissions")
			return nil, false
		}
		log.WithError(err).Error("Failed to load records")
		writeError(w, http.StatusInternalServerError, "Failed to load records")
		return nil, false
	}
	return records, true
}
