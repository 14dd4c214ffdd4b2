package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"canteenopt/internal/advisor"
	"canteenopt/internal/api"
	"canteenopt/internal/bundle"
	"canteenopt/internal/config"
	"canteenopt/internal/database"
	"canteenopt/internal/dataset"
	"canteenopt/internal/decision"
	"canteenopt/internal/monitoring"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	store, err := dataset.Load(cfg.Data)
	if err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}

	bnd, err := bundle.Load(cfg.Bundle)
	if err != nil {
		log.Fatalf("Failed to load model bundle: %v", err)
	}
	log.Printf("Loaded model bundle %s: %d features, %d q-table states",
		bnd.SchemaVersion, len(bnd.FeatureColumns), len(bnd.Agent.QTable))

	fusion, err := decision.New(store, bnd)
	if err != nil {
		log.Fatalf("Failed to assemble decision pipeline: %v", err)
	}

	var audit *database.AuditDB
	if cfg.AuditDB != "" {
		audit, err = database.Open(cfg.AuditDB)
		if err != nil {
			log.Fatalf("Failed to open audit database: %v", err)
		}
		defer audit.Close()
	}

	var adv *advisor.Advisor
	if cfg.Advisor.OpenAIKey != "" {
		adv, err = advisor.New(cfg.Advisor.OpenAIKey, cfg.Advisor.Model)
		if err != nil {
			log.Fatalf("Failed to initialize advisor: %v", err)
		}
	}

	metrics := monitoring.NewCollector()

	server := api.NewServer(store, fusion, bnd, api.Options{
		Audit:      audit,
		Metrics:    metrics,
		Advisor:    adv,
		AuthSecret: cfg.Server.AuthSecret,
	})

	go startMetricsServer(cfg.Server.MetricsPort, metrics)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int, metrics *monitoring.Collector) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
