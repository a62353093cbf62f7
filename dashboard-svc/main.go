package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restodash/config"
	httpapi "restodash/dashboard-svc/internal/api/http"
	"restodash/dashboard-svc/internal/cache"
	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/metrics"
	"restodash/dashboard-svc/internal/notify"
	"restodash/dashboard-svc/internal/service"
	"restodash/dashboard-svc/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app is everything main wires together, kept in one place so tests can
// build it without starting a listener.
type app struct {
	handler  http.Handler
	cache    *cache.Cache
	consumer *service.Consumer
	closers  []func() error
}

func (a *app) close(log *zap.Logger) {
	a.cache.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("close resource", zap.Error(err))
		}
	}
}

func newTokenStore(cfg *config.Config, log *zap.Logger) (service.TokenStore, func() error, error) {
	switch cfg.Token.Backend {
	case "redis":
		rdb := config.MustInitRedis(cfg.Redis, log)
		return storage.NewRedisTokenStore(rdb, cfg.Token.RedisKey), rdb.Close, nil
	case "postgres":
		db := config.MustInitPostgres(cfg.Database, log)
		store := storage.NewPostgresTokenStore(db, cfg.Token.Table)
		if err := store.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("prepare token table: %w", err)
		}
		return store, db.Close, nil
	case "file":
		return storage.NewFileTokenStore(cfg.Token.FilePath), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown token backend %q", cfg.Token.Backend)
}

func buildApp(cfg *config.Config, log *zap.Logger, reg *prometheus.Registry) (*app, error) {
	m := metrics.New(reg)

	tokens, closeTokens, err := newTokenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	a := &app{closers: []func() error{closeTokens}}

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	api := client.New(cfg.API.BaseURL, httpClient, tokens, m, log)

	a.cache = cache.New(cache.Options{
		StaleTime:           cfg.Cache.StaleTime,
		FetchTimeout:        cfg.Cache.FetchTimeout,
		RefetchOnInvalidate: cfg.Cache.RefetchOnInvalidate,
		Metrics:             m,
		Logger:              log,
	})
	feed := notify.NewFeed(cfg.Display.NotificationLimit, log)

	var publisher service.ChangePublisher = storage.NoopPublisher{}
	if cfg.Kafka.Enabled {
		writer := config.NewKafkaWriter(cfg.Kafka)
		publisher = storage.NewKafkaPublisher(writer, cfg.App.InstanceID)
		reader := config.NewKafkaReader(cfg.Kafka)
		a.consumer = service.NewConsumer(reader, a.cache, feed, cfg.App.InstanceID, log)
		a.closers = append(a.closers, writer.Close, reader.Close)
	}

	authSvc := service.NewAuthService(client.NewAuthClient(api, cfg.API.UsersPath), tokens, a.cache, feed, log)
	menuSvc := service.NewMenuService(client.NewMenuClient(api, cfg.API.MenusPath), a.cache, publisher, feed, log)
	orderSvc := service.NewOrderService(service.OrderServiceDeps{
		API:       client.NewOrderClient(api, cfg.API.OrdersPath),
		Menus:     menuSvc,
		Session:   authSvc,
		Cache:     a.cache,
		Publisher: publisher,
		Notifier:  feed,
		QR:        service.DefaultQRGenerator{PublicURL: cfg.App.PublicURL},
		Location:  cfg.Display.Location(),
		PageSize:  cfg.Display.OrderPageSize,
		Logger:    log,
	})

	dialogs := service.DialogOptions{
		StrictEdit: cfg.Dialog.StrictEdit,
		PreviewDir: cfg.Dialog.PreviewDir,
		Notifier:   feed,
		Logger:     log,
	}
	handler := httpapi.NewHandler(httpapi.Deps{
		Menus:          menuSvc,
		Orders:         orderSvc,
		Auth:           authSvc,
		Notifications:  feed,
		MenuDialog:     service.NewMenuDialog(menuSvc, dialogs),
		OrderDialog:    service.NewOrderDialog(orderSvc, dialogs),
		Gatherer:       reg,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		Logger:         log,
	})
	a.handler = httpapi.NewRouter(handler, cfg.HTTP.CORSAllowOrigins, log)
	return a, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Log).With(zap.String("instance", cfg.App.InstanceID))
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := buildApp(cfg, log, reg)
	if err != nil {
		log.Fatal("build dashboard", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil {
		go a.consumer.Start(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	go func() {
		log.Info("dashboard starting", zap.String("addr", srv.Addr), zap.String("api", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	a.close(log)
}
