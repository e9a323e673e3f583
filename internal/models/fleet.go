package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// EquipmentType is the kind of vehicle or equipment being tracked.
type EquipmentType string

const (
	EquipmentLightVehicle   EquipmentType = "Light Vehicle"
	EquipmentTruck          EquipmentType = "Truck"
	EquipmentBrushCutter    EquipmentType = "Brush Cutter"
	EquipmentDryWellPump    EquipmentType = "Dry Well Pump"
	EquipmentSoilCompactor  EquipmentType = "Soil Compactor"
	EquipmentPlateCompactor EquipmentType = "Plate Compactor"
	EquipmentBlower         EquipmentType = "Blower"
	EquipmentFloorSaw       EquipmentType = "Floor Saw"
)

// EquipmentTypes lists every equipment type in display order.
var EquipmentTypes = []EquipmentType{
	EquipmentLightVehicle,
	EquipmentTruck,
	EquipmentBrushCutter,
	EquipmentDryWellPump,
	EquipmentSoilCompactor,
	EquipmentPlateCompactor,
	EquipmentBlower,
	EquipmentFloorSaw,
}

// City is an operating location.
type City string

// CityGlobal is the principal scope that covers every city. It is never a
// valid record city.
const CityGlobal City = "Global"

// Cities lists every operating location in display order.
var Cities = []City{
	"Água Clara",
	"Bataguassu",
	"Nova Porto XV",
	"Brasilândia",
	"Debrasa",
	"Novo Porto João André",
	"Ribas do Rio Pardo",
	"Santa Rita do Pardo",
	"Selvíria",
	"Three Lagoas",
	"Arapuá",
}

// Status is the operational state of a fleet record.
type Status string

const (
	StatusOperational    Status = "Operational"
	StatusInMaintenance  Status = "In Maintenance"
	StatusDecommissioned Status = "Decommissioned"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusOperational, StatusInMaintenance, StatusDecommissioned}

// FleetRecord is one tracked vehicle or piece of equipment. Field order is
// also the column order of the inventory export.
type FleetRecord struct {
	ID                   int64         `bson:"_id" json:"id" yaml:"id"`
	EquipmentType        EquipmentType `bson:"equipment_type" json:"equipment_type" yaml:"equipment_type"`
	Model                string        `bson:"model" json:"model" yaml:"model"`
	City                 City          `bson:"city" json:"city" yaml:"city"`
	UsageCounter         float64       `bson:"usage_counter" json:"usage_counter" yaml:"usage_counter"` // hours or km, depending on type
	LastServiceDate      time.Time     `bson:"last_service_date" json:"last_service_date" yaml:"-"`
	NextServiceThreshold float64       `bson:"next_service_threshold" json:"next_service_threshold" yaml:"-"`
	Status               Status        `bson:"status" json:"status" yaml:"status"`
}

// MaintenanceDue reports whether usage has reached the suggested service
// threshold. Equality counts as due.
func (r FleetRecord) MaintenanceDue() bool {
	return r.UsageCounter >= r.NextServiceThreshold
}

// MarshalJSON renders LastServiceDate as a calendar date.
func (r FleetRecord) MarshalJSON() ([]byte, error) {
	type alias FleetRecord
	return json.Marshal(struct {
		alias
		LastServiceDate string `json:"last_service_date"`
	}{
		alias:           alias(r),
		LastServiceDate: r.LastServiceDate.Format(DateLayout),
	})
}

// UnmarshalJSON accepts LastServiceDate as a calendar date.
func (r *FleetRecord) UnmarshalJSON(data []byte) error {
	type alias FleetRecord
	aux := struct {
		*alias
		LastServiceDate string `json:"last_service_date"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.LastServiceDate == "" {
		r.LastServiceDate = time.Time{}
		return nil
	}
	date, err := ParseDate(aux.LastServiceDate)
	if err != nil {
		return err
	}
	r.LastServiceDate = date
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NextRecordID returns the id the next appended record receives: the
// largest existing id plus one, or 1 when there are no records.
func NextRecordID(records []FleetRecord) int64 {
	var maxID int64
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID + 1
}

// IsValidEquipmentType checks if an equipment type is in the catalog
func IsValidEquipmentType(t EquipmentType) bool {
	for _, known := range EquipmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsValidCity checks if a city is an operating location. CityGlobal is not.
func IsValidCity(c City) bool {
	for _, known := range Cities {
		if c == known {
			return true
		}
	}
	return false
}

// IsValidStatus checks if a status is valid
func IsValidStatus(s Status) bool {
	switch s {
	case StatusOperational, StatusInMaintenance, StatusDecommissioned:
		return true
	default:
		return false
	}
}
