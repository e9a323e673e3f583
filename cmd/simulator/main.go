package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-equipment/internal/fleet"
	"github.com/ukydev/fleet-equipment/internal/models"
)

// errForbidden is returned when the simulated user lacks a capability.
var errForbidden = errors.New("forbidden")

// Model names offered per equipment type.
var modelsByType = map[models.EquipmentType][]string{
	models.EquipmentLightVehicle:   {"Fiat Strada", "Toyota Hilux", "VW Saveiro"},
	models.EquipmentTruck:          {"VW Constellation", "Scania R450", "Mercedes Atego"},
	models.EquipmentBrushCutter:    {"Stihl FS 220", "Husqvarna 143R"},
	models.EquipmentDryWellPump:    {"Honda WB30", "Branco B4T"},
	models.EquipmentSoilCompactor:  {"Wacker BS60", "Dynapac LT6005"},
	models.EquipmentPlateCompactor: {"Wacker VP1550", "Weber CF2"},
	models.EquipmentBlower:         {"Stihl BR 600", "Echo PB-580"},
	models.EquipmentFloorSaw:       {"Norton Clipper C51", "Husqvarna FS 400"},
}

// apiClient talks to the fleet API on behalf of one logged-in user.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body interface{}, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// login opens a session and keeps its token for later calls.
func (c *apiClient) login(username, password string) (models.Principal, error) {
	var out models.LoginResponse
	status, err := c.do(http.MethodPost, "/auth/login", models.LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return models.Principal{}, fmt.Errorf("login: %w", err)
	}
	if status != http.StatusOK {
		return models.Principal{}, fmt.Errorf("login failed with status: %d", status)
	}
	c.token = out.Token
	return out.Principal, nil
}

func (c *apiClient) createRecord(input fleet.RecordInput) (models.FleetRecord, error) {
	var record models.FleetRecord
	status, err := c.do(http.MethodPost, "/records", input, &record)
	if err != nil {
		return models.FleetRecord{}, fmt.Errorf("failed to create record: %w", err)
	}
	if status != http.StatusCreated {
		return models.FleetRecord{}, fmt.Errorf("record creation failed with status: %d", status)
	}
	return record, nil
}

func (c *apiClient) alerts() (fleet.AlertReport, error) {
	var report fleet.AlertReport
	status, err := c.do(http.MethodGet, "/alerts", nil, &report)
	if err != nil {
		return fleet.AlertReport{}, err
	}
	switch status {
	case http.StatusOK:
		return report, nil
	case http.StatusForbidden:
		return fleet.AlertReport{}, errForbidden
	default:
		return fleet.AlertReport{}, fmt.Errorf("alerts failed with status: %d", status)
	}
}

// randomInput builds a plausible intake for principal. Supervisors leave
// the city empty so the server assigns their own.
func randomInput(rng *rand.Rand, principal models.Principal, now time.Time) fleet.RecordInput {
	etype := models.EquipmentTypes[rng.Intn(len(models.EquipmentTypes))]
	names := modelsByType[etype]

	var usage float64
	if etype == models.EquipmentTruck || etype == models.EquipmentLightVehicle {
		usage = float64(rng.Intn(80000)) // km
	} else {
		usage = float64(rng.Intn(500)) // hours
	}

	var city models.City
	if principal.Role != models.RoleSupervisor {
		city = models.Cities[rng.Intn(len(models.Cities))]
	}

	status := models.StatusOperational
	switch p := rng.Float64(); {
	case p < 0.05:
		status = models.StatusDecommissioned
	case p < 0.20:
		status = models.StatusInMaintenance
	}

	lastService := now.AddDate(0, 0, -rng.Intn(365))
	return fleet.RecordInput{
		EquipmentType:   etype,
		Model:           names[rng.Intn(len(names))],
		City:            city,
		UsageCounter:    usage,
		LastServiceDate: lastService.Format(models.DateLayout),
		Status:          status,
	}
}

// tick registers one random unit and reports the current alert count.
func tick(c *apiClient, rng *rand.Rand, principal models.Principal) {
	record, err := c.createRecord(randomInput(rng, principal, time.Now()))
	if err != nil {
		log.WithError(err).Error("Failed to register equipment")
		return
	}
	log.WithFields(log.Fields{
		"record_id":      record.ID,
		"equipment_type": record.EquipmentType,
		"city":           record.City,
		"usage":          record.UsageCounter,
		"next_service":   record.NextServiceThreshold,
	}).Info("Registered equipment")

	report, err := c.alerts()
	if errors.Is(err, errForbidden) {
		return
	}
	if err != nil {
		log.WithError(err).Warn("Failed to fetch alerts")
		return
	}
	log.WithFields(log.Fields{
		"total":   report.Counts.Total,
		"alerted": report.Counts.Alerted,
	}).Info("Fleet status")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	fleetSize := 10
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			fleetSize = n
		}
	}

	apiURL := getEnv("API_BASE_URL", "http://localhost:8080/api")

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting intake simulation")

	client := newAPIClient(apiURL)
	principal, err := client.login(getEnv("SIM_USERNAME", "adm"), getEnv("SIM_PASSWORD", "adm123"))
	if err != nil {
		log.WithError(err).Fatal("Failed to log in")
	}
	log.WithFields(log.Fields{"role": principal.Role, "city": principal.City}).Info("Logged in")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < fleetSize; i++ {
		tick(client, rng, principal)
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		tick(client, rng, principal)
	}
}
