package fleet

import "github.com/ukydev/fleet-equipment/internal/models"

// Counts are the dashboard KPIs derived from one record set.
type Counts struct {
	Total         int `json:"total"`
	InMaintenance int `json:"in_maintenance"`
	Alerted       int `json:"alerted"`
}

// AlertReport holds the records due for service and the counts of the set
// they were taken from.
type AlertReport struct {
	Alerted []models.FleetRecord `json:"alerted"`
	Counts  Counts               `json:"counts"`
}

// EvaluateAlerts selects every record whose usage has reached its service
// threshold. Callers pass the already filtered visible set so that all
// counts describe the same records.
func EvaluateAlerts(records []models.FleetRecord) AlertReport {
	report := AlertReport{Alerted: []models.FleetRecord{}}
	report.Counts.Total = len(records)
	for _, r := range records {
		if r.Status == models.StatusInMaintenance {
			report.Counts.InMaintenance++
		}
		if r.MaintenanceDue() {
			report.Alerted = append(report.Alerted, r)
		}
	}
	report.Counts.Alerted = len(report.Alerted)
	return report
}
