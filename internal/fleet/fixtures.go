package fleet

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-equipment/internal/db"
	"github.com/ukydev/fleet-equipment/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type fixtureFile struct {
	Records []fixtureRecord `yaml:"records"`
}

type fixtureRecord struct {
	models.FleetRecord   `yaml:",inline"`
	LastServiceDate      string   `yaml:"last_service_date"`
	NextServiceThreshold *float64 `yaml:"next_service_threshold"`
}

// DefaultFixtures returns the built-in seed records.
func DefaultFixtures() ([]models.FleetRecord, error) {
	return ParseFixtures(defaultFixtures)
}

// LoadFixtures reads seed records from a YAML file, or the built-in set
// when path is empty.
func LoadFixtures(path string) ([]models.FleetRecord, error) {
	if path == "" {
		return DefaultFixtures()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes and validates YAML seed records. Unlike intake,
// fixtures carry their own ids and thresholds.
func ParseFixtures(data []byte) ([]models.FleetRecord, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("fixtures: parse: %w", err)
	}

	records := make([]models.FleetRecord, 0, len(file.Records))
	seen := make(map[int64]bool, len(file.Records))
	for i, fr := range file.Records {
		rec := fr.FleetRecord
		date, err := models.ParseDate(fr.LastServiceDate)
		if err != nil {
			return nil, fmt.Errorf("fixtures: record %d: %w", i, err)
		}
		rec.LastServiceDate = date
		rec.Model = strings.TrimSpace(rec.Model)

		switch {
		case rec.ID <= 0:
			return nil, fmt.Errorf("fixtures: record %d: id must be positive", i)
		case seen[rec.ID]:
			return nil, fmt.Errorf("fixtures: record %d: duplicate id %d", i, rec.ID)
		case !models.IsValidEquipmentType(rec.EquipmentType):
			return nil, fmt.Errorf("fixtures: record %d: unknown equipment type %q", i, rec.EquipmentType)
		case !models.IsValidCity(rec.City):
			return nil, fmt.Errorf("fixtures: record %d: unknown city %q", i, rec.City)
		case !models.IsValidStatus(rec.Status):
			return nil, fmt.Errorf("fixtures: record %d: unknown status %q", i, rec.Status)
		case rec.Model == "":
			return nil, fmt.Errorf("fixtures: record %d: model is required", i)
		case rec.UsageCounter < 0 || math.IsNaN(rec.UsageCounter) || math.IsInf(rec.UsageCounter, 0):
			return nil, fmt.Errorf("fixtures: record %d: usage counter must be a non-negative number", i)
		case fr.NextServiceThreshold == nil:
			return nil, fmt.Errorf("fixtures: record %d: next_service_threshold is required", i)
		case *fr.NextServiceThreshold < 0 || math.IsNaN(*fr.NextServiceThreshold) || math.IsInf(*fr.NextServiceThreshold, 0):
			return nil, fmt.Errorf("fixtures: record %d: next_service_threshold must be a non-negative number", i)
		}
		rec.NextServiceThreshold = *fr.NextServiceThreshold
		seen[rec.ID] = true
		records = append(records, rec)
	}
	return records, nil
}

// Seed appends records to store in order.
func Seed(ctx context.Context, store db.RecordStore, records []models.FleetRecord) error {
	for _, rec := range records {
		if err := store.Append(ctx, rec); err != nil {
			return fmt.Errorf("seed record %d: %w", rec.ID, err)
		}
	}
	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count seeded records: %w", err)
	}
	log.WithFields(log.Fields{
		"seeded": len(records),
		"total":  total,
	}).Info("Fleet store seeded")
	return nil
}
