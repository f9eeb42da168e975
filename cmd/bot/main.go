package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"decal-transfer-studio/internal/config"
	"decal-transfer-studio/internal/gateway"
	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/handlers"
	"decal-transfer-studio/internal/httpclient"
	"decal-transfer-studio/internal/logging"
	"decal-transfer-studio/internal/mediagroup"
	"decal-transfer-studio/internal/placeholder"
	"decal-transfer-studio/internal/studio"
	"decal-transfer-studio/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.ValidateBot(); err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	invoker, err := newInvoker(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Error("gateway init failed", "err", err)
		os.Exit(1)
	}

	st := studio.New(studio.Options{
		Invoker:      invoker,
		Placeholders: placeholder.New(cfg.PlaceholderSize),
		Strategy:     cfg.Helmet2Strategy,
		Logger:       logger,
	})
	sessions := studio.NewStore(st, cfg.SessionTTL)

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Sessions: sessions,
		Strategy: cfg.Helmet2Strategy,
		Logger:   logger,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.RunSweeper(ctx, cfg.SweepInterval)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := handler.SweepPanels(cfg.SessionTTL); n > 0 {
					logger.Debug("panels swept", "removed", n)
				}
			}
		}
	}()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onGroupFlush := func(group mediagroup.Group) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			handler.HandleMediaGroup(reqCtx, group)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush:  onGroupFlush,
	})
	handler.SetMediaGroupAggregator(aggregator)

	logger.Info("bot started", "username", tg.Username(), "strategy", cfg.Helmet2Strategy, "remote_gateway", cfg.GatewayURL != "")

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})

	defer func() {
		stop()
		tg.StopUpdates()
		aggregator.Close()
		wg.Wait()
		logger.Info("bot stopped", "sessions", sessions.Len())
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			wg.Add(1)
			go func(update telegram.Update) {
				defer wg.Done()
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "update_id", update.UpdateID, "err", err)
				}
			}(update)
		}
	}
}

// newInvoker calls Gemini in-process, or a running web server when
// GATEWAY_URL is set.
func newInvoker(ctx context.Context, cfg config.Config, httpClient *http.Client, logger *slog.Logger) (gateway.Invoker, error) {
	if cfg.GatewayURL != "" {
		return gateway.NewRemoteClient(cfg.GatewayURL, httpClient), nil
	}

	gem, err := gemini.New(ctx, gemini.Options{
		APIKey:        cfg.GeminiAPIKey,
		BaseURL:       cfg.GeminiBaseURL,
		APIVersion:    cfg.GeminiAPIVersion,
		HTTPClient:    httpClient,
		Logger:        logger,
		AnalysisModel: cfg.AnalysisModel,
		ImageModel:    cfg.ImageModel,
		EditModel:     cfg.EditModel,
	})
	if err != nil {
		return nil, err
	}
	return gateway.New(gateway.Options{
		Model:      gem,
		Logger:     logger,
		EditModels: cfg.EditModels,
	}), nil
}
