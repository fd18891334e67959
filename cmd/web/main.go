package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskManager/internal/client"
	"taskManager/internal/config"
	"taskManager/internal/logger"
	"taskManager/internal/session"
	"taskManager/internal/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yml", "путь к YAML конфигу")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Options()); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	defer logger.Sync()

	store := session.NewFileStore(cfg.Session.Path)
	api := client.New(cfg.API.BaseURL, store, client.WithTimeout(cfg.API.Timeout))

	ui, err := web.NewServer(api, api, store)
	if err != nil {
		return fmt.Errorf("шаблоны: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.GetWebAddr(),
		Handler:           ui.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Web: Интерфейс запущен",
			zap.String("addr", server.Addr),
			zap.String("api", cfg.API.BaseURL),
			zap.String("session", store.Path()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Web: Остановка...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
