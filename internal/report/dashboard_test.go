package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-equipment/internal/fleet"
	"github.com/ukydev/fleet-equipment/internal/models"
)

func records() []models.FleetRecord {
	return []models.FleetRecord{
		{ID: 101, EquipmentType: models.EquipmentBrushCutter, Model: "Stihl FS 220", City: "Three Lagoas", UsageCounter: 150, NextServiceThreshold: 200, Status: models.StatusOperational},
		{ID: 102, EquipmentType: models.EquipmentTruck, Model: "VW Constellation", City: "Brasilândia", UsageCounter: 50000, NextServiceThreshold: 60000, Status: models.StatusInMaintenance},
		{ID: 103, EquipmentType: models.EquipmentDryWellPump, Model: "Honda WB30", City: "Água Clara", UsageCounter: 40, NextServiceThreshold: 100, Status: models.StatusOperational},
		{ID: 104, EquipmentType: models.EquipmentBlower, Model: "Stihl BR 600", City: "Three Lagoas", UsageCounter: 90, NextServiceThreshold: 90, Status: models.StatusOperational},
		{ID: 105, EquipmentType: models.EquipmentBrushCutter, Model: "Husqvarna 545", City: "Three Lagoas", UsageCounter: 10, NextServiceThreshold: 60, Status: models.StatusDecommissioned},
	}
}

func TestBuildDashboard_Admin(t *testing.T) {
	admin := models.Principal{Role: models.RoleAdmin, City: models.CityGlobal}

	d := BuildDashboard(admin, records())

	assert.Equal(t, models.CityGlobal, d.Scope)
	assert.Equal(t, fleet.Counts{Total: 5, InMaintenance: 1, Alerted: 1}, d.Counts)
	require.Len(t, d.Alerts, 1)
	assert.Equal(t, AlertRow{
		ID: 104, City: "Three Lagoas", EquipmentType: models.EquipmentBlower,
		Model: "Stihl BR 600", UsageCounter: 90, NextServiceThreshold: 90,
	}, d.Alerts[0])

	assert.Equal(t, []StatusCount{
		{Status: models.StatusOperational, Count: 3},
		{Status: models.StatusInMaintenance, Count: 1},
		{Status: models.StatusDecommissioned, Count: 1},
	}, d.StatusBreakdown)

	assert.Equal(t, GroupByCity, d.GroupBy)
	require.Len(t, d.GroupBreakdown, 3)
	assert.Equal(t, "Three Lagoas", d.GroupBreakdown[0].Group)
	assert.Equal(t, 3, d.GroupBreakdown[0].Total)
	assert.Equal(t, 2, d.GroupBreakdown[0].ByStatus[models.StatusOperational])
	assert.Equal(t, 1, d.GroupBreakdown[0].ByStatus[models.StatusDecommissioned])
	assert.Equal(t, "Brasilândia", d.GroupBreakdown[1].Group)
	assert.Equal(t, 1, d.GroupBreakdown[1].ByStatus[models.StatusInMaintenance])
}

func TestBuildDashboard_Supervisor(t *testing.T) {
	supervisor := models.Principal{Role: models.RoleSupervisor, City: "Three Lagoas"}
	visible, err := fleet.FilterVisible(supervisor, records())
	require.NoError(t, err)

	d := BuildDashboard(supervisor, visible)

	assert.Equal(t, models.City("Three Lagoas"), d.Scope)
	assert.Equal(t, fleet.Counts{Total: 3, InMaintenance: 0, Alerted: 1}, d.Counts)
	assert.Equal(t, GroupByEquipmentType, d.GroupBy)
	require.Len(t, d.GroupBreakdown, 2)
	assert.Equal(t, string(models.EquipmentBrushCutter), d.GroupBreakdown[0].Group)
	assert.Equal(t, 2, d.GroupBreakdown[0].Total)
	assert.Equal(t, string(models.EquipmentBlower), d.GroupBreakdown[1].Group)
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard(models.Principal{Role: models.RoleAdmin, City: models.CityGlobal}, nil)
	assert.Equal(t, fleet.Counts{}, d.Counts)
	assert.NotNil(t, d.Alerts)
	assert.Empty(t, d.StatusBreakdown)
	assert.Empty(t, d.GroupBreakdown)
}
