package report

import (
	"fmt"
	"io"

	"github.com/ukydev/fleet-equipment/internal/models"
	"github.com/xuri/excelize/v2"
)

// Download metadata for the inventory report.
const (
	ExportFilename    = "relatorio_frota.xlsx"
	ExportContentType = "application/vnd.ms-excel"
	ExportSheet       = "Frota"
)

// ExportColumns are the header labels, in FleetRecord field order.
var ExportColumns = []string{
	"ID",
	"Equipment Type",
	"Model",
	"City",
	"Usage Counter",
	"Last Service Date",
	"Next Service Threshold",
	"Status",
}

// WriteXLSX writes records as a single-sheet workbook, one row per record
// in the given order.
func WriteXLSX(w io.Writer, records []models.FleetRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			string(r.EquipmentType),
			r.Model,
			string(r.City),
			r.UsageCounter,
			r.LastServiceDate.Format(models.DateLayout),
			r.NextServiceThreshold,
			string(r.Status),
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return fmt.Errorf("write record %d: %w", r.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
