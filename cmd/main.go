package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-equipment/internal/auth"
	"github.com/ukydev/fleet-equipment/internal/config"
	"github.com/ukydev/fleet-equipment/internal/db"
	"github.com/ukydev/fleet-equipment/internal/fleet"
	"github.com/ukydev/fleet-equipment/internal/handlers"
	"github.com/ukydev/fleet-equipment/internal/metrics"
	"github.com/ukydev/fleet-equipment/internal/middleware"
	"github.com/ukydev/fleet-equipment/internal/models"
	"github.com/ukydev/fleet-equipment/internal/notify"
)

const recordsCollection = "fleet_records"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer closeStore()

	fixtures, err := fleet.LoadFixtures(cfg.FixturesFile)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}
	if err := fleet.Seed(ctx, store, fixtures); err != nil {
		log.Fatalf("Failed to seed records: %v", err)
	}

	notifier, err := openNotifier(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}
	defer notifier.Close()

	authService, err := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry, auth.DefaultCredentials)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	m := metrics.New()
	m.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	fleetService := fleet.NewService(store, notifier, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(authService, fleetService, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":  cfg.Port,
			"store": cfg.StoreBackend,
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// newRouter wires every route behind request logging and session
// authentication.
func newRouter(authService *auth.Service, fleetService *fleet.Service, m *metrics.Metrics) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService, m)
	fleetHandler := handlers.NewFleetHandler(fleetService, m)

	guard := func(action string, h http.HandlerFunc) http.Handler {
		return authMiddleware.RequirePermission(action)(h)
	}
	readRecords := guard(models.ActionViewRecords, fleetHandler.Records)
	createRecord := guard(models.ActionCreateRecord, fleetHandler.Records)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)
	mux.HandleFunc("/api/auth/me", authHandler.Me)
	mux.HandleFunc("/api/catalog", fleetHandler.Catalog)
	mux.Handle("/api/records", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			createRecord.ServeHTTP(w, r)
			return
		}
		readRecords.ServeHTTP(w, r)
	}))
	mux.Handle("/api/dashboard", guard(models.ActionViewDashboard, fleetHandler.Dashboard))
	mux.Handle("/api/alerts", guard(models.ActionViewDashboard, fleetHandler.Alerts))
	mux.Handle("/api/export", guard(models.ActionExportReport, fleetHandler.Export))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", m.Handler())

	return middleware.RequestLogger(m)(authMiddleware.Authenticate(mux))
}

// openStore returns the configured record store, empty and ready for
// seeding, and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (db.RecordStore, func(), error) {
	if cfg.StoreBackend != config.StoreMongo {
		return db.NewMemoryRecordStore(), func() {}, nil
	}

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}

	store := db.NewMongoRecordStore(client.Database(cfg.MongoDB).Collection(recordsCollection))
	// Records live only as long as the process, so the collection starts
	// empty on every boot.
	if err := store.Reset(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("reset records: %w", err)
	}
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return store, closeFn, nil
}

func openNotifier(cfg *config.Config) (notify.Notifier, error) {
	if cfg.MQTTBroker == "" {
		log.Info("MQTT_BROKER not set, record events are not published")
		return notify.Nop{}, nil
	}
	n, err := notify.NewMQTTNotifier(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"broker": cfg.MQTTBroker,
		"topic":  cfg.MQTTTopic,
	}).Info("Publishing record events over MQTT")
	return n, nil
}
