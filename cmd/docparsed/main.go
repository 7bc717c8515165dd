// Command docparsed watches an inbox (and optionally a Redis list) and turns
// every arriving document into a JSON record in the outbox.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/app"
	"github.com/joseph-ayodele/docparse/internal/async"
	"github.com/joseph-ayodele/docparse/internal/common"
	coreasync "github.com/joseph-ayodele/docparse/internal/core/async"
	"github.com/joseph-ayodele/docparse/internal/export"
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/ingest"
	"github.com/joseph-ayodele/docparse/internal/metrics"
	"github.com/joseph-ayodele/docparse/internal/profiles"
	"github.com/joseph-ayodele/docparse/internal/queue"
	repo "github.com/joseph-ayodele/docparse/internal/repository"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	class, ok := constants.Canonicalize(cfg.Pipeline.Class)
	if !ok {
		logger.Error("invalid DOC_CLASS", "class", cfg.Pipeline.Class)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fpx, err := app.NewExtractor(cfg)
	if err != nil {
		logger.Error("failed to build fingerprint extractor", "error", err)
		os.Exit(1)
	}
	store, err := loadProfiles(ctx, cfg, fpx.Schema(), logger)
	if err != nil {
		logger.Error("failed to load profiles", "error", err)
		os.Exit(1)
	}
	logger.Info("profiles loaded", "count", store.Len())

	m := metrics.New()
	p, err := app.NewPipeline(cfg, store, fpx, app.NewProvider(logger), m, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	outbox := cfg.Pipeline.Outbox
	q := coreasync.NewProcessorQueue(p.Processor, logger,
		coreasync.WithWorkers(cfg.Pipeline.Workers),
		coreasync.WithQueueSize(cfg.Pipeline.QueueSize),
		coreasync.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
		coreasync.WithMetrics(m),
		coreasync.WithResultHandler(func(r coreasync.Result) {
			if r.Err != nil {
				return
			}
			path, err := export.WriteRecordJSON(outbox, r.Outcome)
			if err != nil {
				logger.Error("failed to write record", "doc_id", r.Outcome.DocID, "error", err)
				return
			}
			logger.Info("record written", "doc_id", r.Outcome.DocID, "path", path)
		}),
	)

	// Inbox watcher
	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Pipeline.Inbox},
		InitialScan: true,
		Debounce:    cfg.Pipeline.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to watch inbox", "inbox", cfg.Pipeline.Inbox, "error", err)
		os.Exit(1)
	}
	go func() {
		for path := range events {
			if err := q.Enqueue(ctx, async.Job{Path: path, Class: class, SubmittedAt: time.Now()}); err != nil {
				logger.Warn("failed to enqueue document", "path", path, "error", err)
			}
		}
	}()
	go func() {
		for err := range watchErrs {
			logger.Warn("watcher error", "error", err)
		}
	}()

	// Optional Redis intake
	if cfg.Redis.URL != "" {
		rq, err := queue.New(cfg.Redis.URL, cfg.Redis.ListKey)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		defer rq.Close()
		if err := rq.Ping(ctx); err != nil {
			logger.Error("failed to ping redis", "error", err)
			os.Exit(1)
		}
		go rq.Forward(ctx, q, logger)
	}

	// Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	httpSrv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// gRPC health + reflection
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	logger.Info("docparsed listening",
		"grpc_addr", cfg.Server.GRPCAddr,
		"metrics_addr", cfg.Server.MetricsAddr,
		"inbox", cfg.Pipeline.Inbox,
		"outbox", outbox,
	)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)
	_ = httpSrv.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}

// loadProfiles prefers the database when one is configured and holds
// profiles, and falls back to the JSON artifact otherwise.
func loadProfiles(ctx context.Context, cfg *common.Config, s fingerprint.Schema, logger *slog.Logger) (*profiles.Store, error) {
	if cfg.ValidateDatabase() != nil {
		return app.LoadProfiles(ctx, nil, cfg.Pipeline.ProfilesPath, s)
	}
	db, err := app.OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer db.Close(logger)
	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx, db); err != nil {
		return nil, err
	}
	profileRepo := repo.NewProfileRepository(db, logger)
	n, err := profileRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		logger.Info("no profiles in database, using file", "path", cfg.Pipeline.ProfilesPath)
		return app.LoadProfiles(ctx, nil, cfg.Pipeline.ProfilesPath, s)
	}
	return app.LoadProfiles(ctx, profileRepo, "", s)
}
