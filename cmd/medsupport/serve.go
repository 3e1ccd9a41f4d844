// ABOUTME: serve command: HTTP API with startup ingestion, docs watching and config hot-reload
// ABOUTME: Shuts down gracefully on SIGINT/SIGTERM, draining in-flight requests

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/medsupport-go/internal/config"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/rag"
	"github.com/mauromedda/medsupport-go/internal/server"
)

const shutdownTimeout = 15 * time.Second

func runServe(ctx context.Context, cfg *config.Settings, configPath string) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := ingestIfEmpty(ctx, a); err != nil {
		pilog.Warn("startup ingestion: %v", err)
	}

	srv := server.New(server.Config{
		Chat:           a.chat,
		Usage:          a.usage,
		Ready:          a.db.Ping,
		Environment:    cfg.Environment,
		Version:        version,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	httpSrv := srv.HTTPServer(cfg.Server.Addr)

	if configPath == "" {
		cwd, _ := os.Getwd()
		configPath = config.ProjectConfigFile(cwd)
	}
	cw := config.NewWatcher(configPath, func(s *config.Settings) {
		applyLogSettings(s.Log)
		pilog.Info("config reloaded: log level %s", s.Log.Level)
	}, func(err error) {
		pilog.Warn("config reload failed: %v", err)
	})
	cw.Start()
	defer cw.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.RAG.Watch {
		w, err := rag.NewWatcher(a.ingester(), cfg.RAG.DocsDir)
		if err != nil {
			pilog.Warn("not watching %s: %v", cfg.RAG.DocsDir, err)
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	g.Go(func() error {
		pilog.Info("listening on %s (%s)", cfg.Server.Addr, cfg.Environment)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		pilog.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ingestIfEmpty indexes the docs directory when the index has no chunks yet.
func ingestIfEmpty(ctx context.Context, a *app) error {
	n, err := a.index.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := os.Stat(a.cfg.RAG.DocsDir); err != nil {
		pilog.Info("no docs directory at %s; document answers disabled until ingestion", a.cfg.RAG.DocsDir)
		return nil
	}
	st, err := a.ingester().IngestDir(ctx, a.cfg.RAG.DocsDir)
	if err != nil {
		return err
	}
	pilog.Info("ingested %d chunks from %d files", st.Chunks, st.Files)
	return nil
}
