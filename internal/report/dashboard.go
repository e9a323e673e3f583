// Package report turns visible fleet records into dashboard data and the
// downloadable inventory spreadsheet.
package report

import (
	"github.com/ukydev/fleet-equipment/internal/fleet"
	"github.com/ukydev/fleet-equipment/internal/models"
)

// Breakdown dimensions for the bar chart.
const (
	GroupByCity          = "city"
	GroupByEquipmentType = "equipment_type"
)

// Dashboard is everything the control panel renders for one principal.
type Dashboard struct {
	Scope           models.City   `json:"scope"`
	Counts          fleet.Counts  `json:"counts"`
	Alerts          []AlertRow    `json:"alerts"`
	StatusBreakdown []StatusCount `json:"status_breakdown"`
	GroupBy         string        `json:"group_by"`
	GroupBreakdown  []GroupCount  `json:"group_breakdown"`
}

// AlertRow is one line of the urgent maintenance table.
type AlertRow struct {
	ID                   int64                `json:"id"`
	City                 models.City          `json:"city"`
	EquipmentType        models.EquipmentType `json:"equipment_type"`
	Model                string               `json:"model"`
	UsageCounter         float64              `json:"usage_counter"`
	NextServiceThreshold float64              `json:"next_service_threshold"`
}

// StatusCount is one slice of the status pie.
type StatusCount struct {
	Status models.Status `json:"status"`
	Count  int           `json:"count"`
}

// GroupCount is one bar of the breakdown chart, stacked by status.
type GroupCount struct {
	Group    string                `json:"group"`
	Total    int                   `json:"total"`
	ByStatus map[models.Status]int `json:"by_status"`
}

// BuildDashboard derives KPIs, alerts and chart series from the records
// visible to principal. Admins get the bar chart by city, supervisors by
// equipment type.
func BuildDashboard(principal models.Principal, visible []models.FleetRecord) Dashboard {
	alerts := fleet.EvaluateAlerts(visible)

	d := Dashboard{
		Scope:           principal.Scope(),
		Counts:          alerts.Counts,
		Alerts:          make([]AlertRow, 0, len(alerts.Alerted)),
		StatusBreakdown: StatusBreakdown(visible),
		GroupBy:         GroupByCity,
	}
	for _, r := range alerts.Alerted {
		d.Alerts = append(d.Alerts, AlertRow{
			ID:                   r.ID,
			City:                 r.City,
			EquipmentType:        r.EquipmentType,
			Model:                r.Model,
			UsageCounter:         r.UsageCounter,
			NextServiceThreshold: r.NextServiceThreshold,
		})
	}

	if principal.Role == models.RoleSupervisor {
		d.GroupBy = GroupByEquipmentType
	}
	d.GroupBreakdown = GroupBreakdown(visible, d.GroupBy)
	return d
}

// StatusBreakdown counts records per status, in first-seen order.
func StatusBreakdown(records []models.FleetRecord) []StatusCount {
	out := []StatusCount{}
	index := make(map[models.Status]int)
	for _, r := range records {
		i, ok := index[r.Status]
		if !ok {
			i = len(out)
			index[r.Status] = i
			out = append(out, StatusCount{Status: r.Status})
		}
		out[i].Count++
	}
	return out
}

// GroupBreakdown counts records per city or equipment type, each split by
// status. Groups appear in first-seen order.
func GroupBreakdown(records []models.FleetRecord, groupBy string) []GroupCount {
	out := []GroupCount{}
	index := make(map[string]int)
	for _, r := range records {
		key := string(r.City)
		if groupBy == GroupByEquipmentType {
			key = string(r.EquipmentType)
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, GroupCount{Group: key, ByStatus: make(map[models.Status]int)})
		}
		out[i].Total++
		out[i].ByStatus[r.Status]++
	}
	return out
}
