package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"curefront/internal/adapter/auditlog"
	staticcatalog "curefront/internal/adapter/catalog/static"
	"curefront/internal/adapter/clockdriver"
	httpadapter "curefront/internal/adapter/http"
	metricsinmem "curefront/internal/adapter/metrics/inmemory"
	gormrepo "curefront/internal/adapter/repo/gorm"
	"curefront/internal/adapter/stream"
	"curefront/internal/app/replay"
	"curefront/internal/app/sim"
	"curefront/internal/domain/outbreak"
	"curefront/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	dsn := strings.TrimSpace(os.Getenv("CUREFRONT_DB_DSN"))
	if dsn == "" {
		log.Fatal("CUREFRONT_DB_DSN is required")
	}
	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if dir := strings.TrimSpace(os.Getenv("CUREFRONT_MIGRATIONS_DIR")); dir != "" {
		if err := gormrepo.ApplyMigrations(context.Background(), db, dir); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}

	tuning := outbreak.DefaultTuning()
	if path := strings.TrimSpace(os.Getenv("CUREFRONT_TUNING")); path != "" {
		tuning, err = outbreak.LoadTuning(path)
		if err != nil {
			log.Fatalf("load tuning: %v", err)
		}
	}

	hub := stream.NewHub()
	publishers := sim.MultiPublisher{hub}
	if dir := strings.TrimSpace(os.Getenv("CUREFRONT_AUDIT_DIR")); dir != "" {
		audit := auditlog.NewWriter(dir)
		defer audit.Close()
		publishers = append(publishers, audit)
	}

	kpiRecorder := metricsinmem.NewRecorder()
	eventRepo := gormrepo.NewEventRepo(db)
	coordinator := &sim.Coordinator{
		TxManager: gormrepo.NewTxManager(db),
		Sessions:  gormrepo.NewSessionRepo(db),
		Events:    eventRepo,
		Catalog:   staticcatalog.Provider{Path: strings.TrimSpace(os.Getenv("CUREFRONT_REGIONS"))},
		Metrics:   kpiRecorder,
		Publisher: publishers,
		Engine:    outbreak.NewEngine(tuning, rand.New(rand.NewSource(time.Now().UnixNano()))),
		SessionID: sessionIDEnv(),
		Now:       time.Now,
	}
	if err := coordinator.Bootstrap(context.Background()); err != nil {
		log.Fatalf("bootstrap session: %v (did you run SQL migrations?)", err)
	}

	clock := world.NewClock(world.ClockConfig{
		StartAt:   time.Unix(int64(intEnv("CUREFRONT_CLOCK_START_UNIX", 0)), 0),
		DayLength: time.Duration(intEnv("CUREFRONT_DAY_SECONDS", int((10*time.Minute).Seconds()))) * time.Second,
	})
	driver := clockdriver.Driver{
		Clock:    clock,
		Interval: time.Duration(intEnv("CUREFRONT_TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		Tick: func(ctx context.Context, reading world.Reading) error {
			_, err := coordinator.Tick(ctx, reading)
			return err
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go driver.Run(ctx)

	h := httpadapter.Handler{
		Sim:      coordinator,
		ReplayUC: replay.UseCase{Events: eventRepo},
		KPI:      kpiRecorder,
		Stream:   hub,
	}

	s := server.Default(server.WithHostPorts(":8080"))
	h.RegisterRoutes(s)

	log.Printf("curefront server listening on :8080 (session: %s)", coordinator.SessionID)
	s.Spin()
}

func sessionIDEnv() string {
	if id := strings.TrimSpace(os.Getenv("CUREFRONT_SESSION_ID")); id != "" {
		return id
	}
	return "default"
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
