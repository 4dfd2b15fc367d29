package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heating_board/internal/config"
	"heating_board/internal/handlers"
	"heating_board/internal/logger"
	"heating_board/internal/metrics"
	"heating_board/internal/repository"
	"heating_board/internal/repository/db"
	"heating_board/internal/server"
	"heating_board/internal/service"
	"heating_board/internal/simulation"
	"heating_board/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load configs/config.yml (+ HEATING_* env)
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, logger.WithFormat(cfg.Log.Format))
	defer func() { _ = log.Sync() }()

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(sqlDB)

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.NewPromMetrics(reg)

	// optional MQTT telemetry
	var publisher service.Publisher
	if cfg.MQTT.Broker != "" {
		p, err := telemetry.NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			log.Errorw("mqtt_connect_failed", "err", err, "broker", cfg.MQTT.Broker)
		} else {
			defer p.Close()
			publisher = p
			log.Infow("mqtt_connected", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
		}
	}

	// wire dependencies
	controls := cfg.Controls.Model()
	engine := simulation.NewEngine(simulation.Options{
		Controls:              &controls,
		SessionHistoryLimit:   cfg.History.Sessions,
		CalibrationHistoryMax: cfg.History.Calibrations,
		OnCalibrationArchived: service.CalibrationArchivedHook(repos.EventRepo, prom, log),
	})
	services := service.NewService(service.Deps{
		Engine:    engine,
		Repos:     repos,
		Metrics:   prom,
		Publisher: publisher,
		Log:       log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if restored, err := services.Settings.Restore(ctx); err != nil {
		log.Errorw("controls_restore_failed", "err", err)
	} else {
		log.Infow("controls_restored", "floor_material", restored.FloorMaterial, "nichrome_final_c", restored.NichromeFinalC)
	}

	// start simulator (via composed service)
	go services.Simulator.Run(ctx, cfg.Sim.Tick)

	// start HTTP server
	apiHandler := handlers.NewHandler(services, log, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
