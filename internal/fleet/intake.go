package fleet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-equipment/internal/db"
	"github.com/ukydev/fleet-equipment/internal/metrics"
	"github.com/ukydev/fleet-equipment/internal/models"
	"github.com/ukydev/fleet-equipment/internal/notify"
)

// Service thresholds added to the current usage at intake.
const (
	TruckServiceInterval   = 1000.0
	DefaultServiceInterval = 50.0
)

// RecordInput is the user-supplied part of a new fleet record.
type RecordInput struct {
	EquipmentType   models.EquipmentType `json:"equipment_type"`
	Model           string               `json:"model"`
	City            models.City          `json:"city"`
	UsageCounter    float64              `json:"usage_counter"`
	LastServiceDate string               `json:"last_service_date"`
	Status          models.Status        `json:"status"`
}

// Service reads and registers fleet records on behalf of a principal.
type Service struct {
	store    db.RecordStore
	notifier notify.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService creates a fleet service. notifier and m may be nil.
func NewService(store db.RecordStore, notifier notify.Notifier, m *metrics.Metrics) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		store:    store,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// NextServiceThreshold is the usage at which a new record becomes due.
func NextServiceThreshold(equipmentType models.EquipmentType, usage float64) float64 {
	if equipmentType == models.EquipmentTruck {
		return usage + TruckServiceInterval
	}
	return usage + DefaultServiceInterval
}

// Visible returns the stored records the principal may see.
func (s *Service) Visible(ctx context.Context, principal models.Principal) ([]models.FleetRecord, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return FilterVisible(principal, records)
}

// CreateRecord validates input, derives the service threshold and appends
// the record with the next id. Nothing is stored when validation fails.
func (s *Service) CreateRecord(ctx context.Context, input RecordInput, principal models.Principal) (models.FleetRecord, error) {
	record, err := BuildRecord(input, principal)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.IntakeRejected(verr.Field)
		}
		return models.FleetRecord{}, err
	}

	record, err = s.store.Insert(ctx, record)
	if err != nil {
		return models.FleetRecord{}, fmt.Errorf("store record: %w", err)
	}
	s.metrics.RecordCreated()

	log.WithFields(log.Fields{
		"record_id":      record.ID,
		"equipment_type": record.EquipmentType,
		"city":           record.City,
		"next_service":   record.NextServiceThreshold,
		"created_by":     principal.Name,
	}).Info("Fleet record created")

	event := notify.Event{
		Type:      notify.EventRecordCreated,
		Record:    record,
		Alert:     record.MaintenanceDue(),
		CreatedBy: principal.Name,
		Timestamp: s.now(),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("record_id", record.ID).Warn("Failed to publish record event")
	}

	return record, nil
}

// BuildRecord validates input against the principal's scope and returns the
// record to store, without an id.
func BuildRecord(input RecordInput, principal models.Principal) (models.FleetRecord, error) {
	if !models.IsValidRole(principal.Role) {
		return models.FleetRecord{}, fmt.Errorf("%w: %q", ErrUnknownRole, principal.Role)
	}

	if !models.IsValidEquipmentType(input.EquipmentType) {
		return models.FleetRecord{}, invalid("equipment_type", "unknown equipment type %q", input.EquipmentType)
	}

	model := strings.TrimSpace(input.Model)
	if model == "" {
		return models.FleetRecord{}, invalid("model", "model or plate is required")
	}

	city := input.City
	if principal.Role == models.RoleSupervisor {
		// Supervisors only ever register in their own city.
		if city == "" {
			city = principal.City
		}
		if city != principal.City {
			return models.FleetRecord{}, invalid("city", "supervisor of %s cannot register equipment in %q", principal.City, city)
		}
	}
	if !models.IsValidCity(city) {
		return models.FleetRecord{}, invalid("city", "unknown city %q", city)
	}

	if math.IsNaN(input.UsageCounter) || math.IsInf(input.UsageCounter, 0) {
		return models.FleetRecord{}, invalid("usage_counter", "must be a finite number")
	}
	if input.UsageCounter < 0 {
		return models.FleetRecord{}, invalid("usage_counter", "must not be negative, got %v", input.UsageCounter)
	}

	lastService, err := models.ParseDate(input.LastServiceDate)
	if err != nil {
		return models.FleetRecord{}, invalid("last_service_date", "%v", err)
	}

	if !models.IsValidStatus(input.Status) {
		return models.FleetRecord{}, invalid("status", "unknown status %q", input.Status)
	}

	return models.FleetRecord{
		EquipmentType:        input.EquipmentType,
		Model:                model,
		City:                 city,
		UsageCounter:         input.UsageCounter,
		LastServiceDate:      lastService,
		NextServiceThreshold: NextServiceThreshold(input.EquipmentType, input.UsageCounter),
		Status:               input.Status,
	}, nil
}
