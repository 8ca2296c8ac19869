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

	"github.com/alfredjeanlab/appdeck/internal/audit"
	"github.com/alfredjeanlab/appdeck/internal/config"
	"github.com/alfredjeanlab/appdeck/internal/events"
	"github.com/alfredjeanlab/appdeck/internal/server"
	"github.com/alfredjeanlab/appdeck/internal/store/yamlstore"
	decksync "github.com/alfredjeanlab/appdeck/internal/sync"
	"github.com/spf13/cobra"
)

// catalogDebounce is how long a catalog file must be quiet before an
// on-disk change is reported.
const catalogDebounce = 500 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:               "serve",
	Short:             "Start the catalog server",
	GroupID:           "system",
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := cfg.NewLogger(os.Stderr)
		slog.SetDefault(logger)

		// Make sure the working copy exists before the store reads from it.
		repo := decksync.NewRepo(cfg.RepoPath)
		cloneCtx, cancelClone := context.WithTimeout(context.Background(), 2*time.Minute)
		err = repo.EnsureCloned(cloneCtx, cfg.RepoURL)
		cancelClone()
		if err != nil {
			return err
		}
		if !repo.Configured() {
			logger.Warn("catalog path is not a git working copy, sync disabled", "path", cfg.RepoPath)
		}

		store := yamlstore.New(cfg.DataPaths, logger)

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = events.NoopPublisher{}
			logger.Info("events disabled (DECK_NATS_URL not set)")
		}

		var recorder audit.Recorder
		if cfg.AuditDBURL != "" {
			rec, err := audit.NewPostgres(cfg.AuditDBURL)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			recorder = rec
			logger.Info("audit log enabled")
		} else {
			recorder = audit.NoopRecorder{}
			logger.Info("audit log disabled (DECK_AUDIT_DATABASE_URL not set)")
		}

		catalogServer := server.NewCatalogServer(store, publisher, recorder, repo)

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           catalogServer.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		grpcServer, healthServer := server.NewGRPCServer(cfg.AuthToken)
		if cfg.GRPCAddr != "" {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				httpServer.Close()
				recorder.Close()
				publisher.Close()
				store.Close()
				return err
			}
			go func() {
				logger.Info("gRPC health server listening", "addr", cfg.GRPCAddr)
				if err := grpcServer.Serve(lis); err != nil {
					logger.Error("gRPC server error", "err", err)
				}
			}()
		}

		scheduler := startBackups(cfg, store, logger)

		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		if cfg.WatchCatalog {
			go func() {
				if err := store.Watch(watchCtx, catalogDebounce, func(path string) {
					catalogServer.CatalogChanged(watchCtx, path)
				}); err != nil {
					logger.Error("catalog watcher stopped", "err", err)
				}
			}()
			logger.Info("watching catalog files for external changes")
		}

		logger.Info("catalog server started",
			"http_addr", cfg.HTTPAddr,
			"grpc_addr", cfg.GRPCAddr,
			"repo_path", cfg.RepoPath,
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		healthServer.Shutdown()
		stopWatch()

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("backup scheduler stopped")
		}

		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := recorder.Close(); err != nil {
			logger.Error("error closing audit log", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// startBackups starts the periodic catalog backup when an interval and at
// least one destination are configured. It returns nil otherwise.
func startBackups(cfg *config.Config, catalog decksync.Catalog, logger *slog.Logger) *decksync.Scheduler {
	if cfg.BackupInterval <= 0 {
		return nil
	}

	var dests []decksync.Destination
	if cfg.BackupS3Bucket != "" {
		s3Dest, err := decksync.NewS3Destination(
			context.Background(),
			cfg.BackupS3Bucket,
			cfg.BackupS3Key,
			cfg.BackupS3Region,
			cfg.BackupS3Endpoint,
		)
		if err != nil {
			logger.Error("failed to create S3 backup destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("S3 backup enabled", "bucket", cfg.BackupS3Bucket, "key", cfg.BackupS3Key)
		}
	}
	if cfg.BackupGitRepo != "" {
		dests = append(dests, decksync.NewGitDestination(cfg.BackupGitRepo, cfg.BackupGitFile, cfg.BackupGitBranch))
		logger.Info("git backup enabled", "repo", cfg.BackupGitRepo, "file", cfg.BackupGitFile)
	}
	if len(dests) == 0 {
		return nil
	}

	scheduler := decksync.NewScheduler(catalog, dests, cfg.BackupInterval, logger)
	scheduler.Start()
	logger.Info("backup scheduler started", "interval", cfg.BackupInterval)
	return scheduler
}
