// main.go
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"notification-hub/relay/pkg/config"
	"notification-hub/relay/pkg/db"
	"notification-hub/relay/pkg/delivery"
	"notification-hub/relay/pkg/line"
	"notification-hub/relay/pkg/logger"
	"notification-hub/relay/pkg/relay"

	"github.com/gin-gonic/gin"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config: ", err)
	}
	logger.Init(cfg.LogLevel, nil)
	for _, w := range cfg.Validate() {
		logger.Warn("config: %s", w)
	}
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secondary, closeSecondary := openSecondary(ctx, cfg)
	defer closeSecondary()
	dispatcher := delivery.NewDispatcher(secondary, cfg.SecondaryTimeout)
	logger.Info("secondary delivery channel: %s", dispatcher.Channel())

	pusher := line.NewClient(cfg.LineAPIBase, cfg.LineAccessToken, cfg.LineTimeout)
	h := relay.NewHandler(cfg, pusher, dispatcher)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           relay.NewRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("relay listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server: ", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown: %v", err)
	}
	// secondary deliveries may still be running after the last response
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("pending secondary deliveries abandoned: %v", err)
	}
}

// openSecondary connects whatever the resolved mail mode needs. Any failure
// leaves the relay running LINE-only.
func openSecondary(ctx context.Context, cfg *config.Config) (delivery.Service, func()) {
	mode := delivery.ResolveMode(cfg)
	var (
		deps    delivery.Deps
		closers []io.Closer
	)

	switch mode {
	case config.MailModeQueue:
		gdb, err := db.Open(cfg.DBDSN)
		if err != nil {
			logger.Warn("queue mode disabled, db open failed: %v", err)
			break
		}
		if sqlDB, err := gdb.DB(); err == nil {
			closers = append(closers, sqlDB)
		}
		q := &delivery.Queue{DB: gdb}
		if err := q.Migrate(ctx); err != nil {
			logger.Warn("mail table migration failed: %v", err)
		}
		deps.DB = gdb
	case config.MailModeKafka:
		prod, err := delivery.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Warn("kafka mode disabled, producer failed: %v", err)
			break
		}
		closers = append(closers, prod)
		deps.Kafka = prod
	case config.MailModeAMQP:
		conn, ch, err := delivery.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("amqp mode disabled: %v", err)
			break
		}
		closers = append(closers, conn)
		deps.AMQP = ch
	}

	svc, err := delivery.FromConfig(cfg, mode, deps)
	if err != nil {
		logger.Warn("secondary delivery disabled: %v", err)
	}
	return svc, func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
}
