package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/tv_watchlist/internal/api"
	"github.com/dgnsrekt/tv_watchlist/internal/backup"
	"github.com/dgnsrekt/tv_watchlist/internal/config"
	"github.com/dgnsrekt/tv_watchlist/internal/controller"
	"github.com/dgnsrekt/tv_watchlist/internal/journal"
	"github.com/dgnsrekt/tv_watchlist/internal/netutil"
	"github.com/dgnsrekt/tv_watchlist/internal/notify"
	"github.com/dgnsrekt/tv_watchlist/internal/store"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("failed to load watchlist config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("watchlist config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"backend", cfg.Backend,
		"data_file", cfg.DataFile,
		"db_path", cfg.DBPath,
		"journal_dir", cfg.JournalDir,
		"backup_dir", cfg.BackupDir,
		"backup_interval", cfg.BackupInterval,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	blob, err := store.OpenBlob(cfg.Backend, cfg.DataFile, cfg.DBPath)
	if err != nil {
		slog.Error("failed to open watchlist store", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	st := store.New(blob)
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("store close failed", "error", err)
		}
	}()

	backups, err := backup.NewStore(cfg.BackupDir)
	if err != nil {
		slog.Error("failed to open backup store", "dir", cfg.BackupDir, "error", err)
		os.Exit(1)
	}

	jw := journal.NewWriter(cfg.JournalDir, cfg.JournalBuffer, cfg.JournalMaxMB)
	defer func() {
		if err := jw.Close(); err != nil {
			slog.Error("journal close failed", "error", err)
		}
	}()

	svc := controller.NewService(st, backups, jw)
	if _, err := svc.Stats(context.Background()); err != nil {
		slog.Error("watchlist document unreadable", "error", err)
		os.Exit(1)
	}

	alerts := notify.New(cfg.NtfyURL)
	if cfg.BackupsScheduled() {
		sched, err := backup.StartSchedule(cfg.BackupInterval, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := svc.ScheduledBackup(ctx, cfg.BackupKeep); err != nil {
				slog.Error("scheduled backup failed", "error", err)
				if nerr := alerts.BackupFailed(ctx, err); nerr != nil {
					slog.Warn("backup failure notification failed", "error", nerr)
				}
			}
		})
		if err != nil {
			slog.Error("failed to start backup schedule", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to bind", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	bindAddr := ln.Addr().String()

	srv := &http.Server{Handler: api.NewServer(svc), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("watchlist listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("watchlist server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("watchlist shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
