package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bryanwahyu/chartsight/internal/application"
	"github.com/bryanwahyu/chartsight/internal/application/analyses"
	"github.com/bryanwahyu/chartsight/internal/config"
	domai "github.com/bryanwahyu/chartsight/internal/domain/ai"
	"github.com/bryanwahyu/chartsight/internal/domain/analysis"
	"github.com/bryanwahyu/chartsight/internal/domain/faults"
	aiopenai "github.com/bryanwahyu/chartsight/internal/infra/ai/openai"
	"github.com/bryanwahyu/chartsight/internal/infra/ai/stub"
	mysqlp "github.com/bryanwahyu/chartsight/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/chartsight/internal/infra/db/postgres"
	historyfile "github.com/bryanwahyu/chartsight/internal/infra/history/file"
	"github.com/bryanwahyu/chartsight/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/chartsight/internal/infra/storage"
	"github.com/bryanwahyu/chartsight/internal/middleware"
	"github.com/bryanwahyu/chartsight/pkg/logger"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	log.Info().Str("driver", cfg.Storage.Driver).Msg("starting chartsight api")

	ctx := context.Background()

	// history backend
	var (
		repo      analysis.Repository
		faultRepo faults.Repository
		checkers  = map[string]middleware.HealthChecker{}
	)
	switch cfg.Storage.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect error")
		}
		defer db.Close()
		repo = mysqlp.NewAnalysisRepository(db)
		faultRepo = mysqlp.NewFaultRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}

	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect error")
		}
		defer db.Close()
		repo = postgresp.NewAnalysisRepository(db)
		faultLog, err := historyfile.OpenFaultLog(cfg.Storage.FaultPath)
		if err != nil {
			log.Fatal().Err(err).Msg("fault log open error")
		}
		faultRepo = faultLog
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}

	default: // file
		store, err := historyfile.Open(cfg.Storage.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("history store open error")
		}
		repo = store
		faultLog, err := historyfile.OpenFaultLog(cfg.Storage.FaultPath)
		if err != nil {
			log.Fatal().Err(err).Msg("fault log open error")
		}
		faultRepo = faultLog
		dir := filepath.Dir(cfg.Storage.Path)
		checkers["history"] = middleware.CheckerFunc(func(ctx context.Context) error {
			_, err := os.Stat(dir)
			return err
		})
	}

	// vision client
	var vision domai.Client = aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	if cfg.AI.Demo {
		log.Warn().Msg("demo mode: using offline stub instead of the vision model")
		vision = stub.New()
	}

	// optional image store
	var images analyses.ImageStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("minio init error")
		}
		images = store
	}

	svc := &analyses.Service{
		History: repo,
		Samples: analysis.Samples(),
		Vision:  vision,
		Images:  images,
		Faults:  faultRepo,
		Clock:   application.SystemClock{},
		Log:     log,
	}

	mux := httpserver.NewRouter(svc, log, checkers)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
		// Analyze calls wait on the vision model; give them room.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
