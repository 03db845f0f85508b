package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/infra/event"
	"storefront/internal/infra/storage"
	"storefront/internal/logging"
	"storefront/internal/server"
)

// イベント送信先（Kafka or なし）
type publisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	//設定読み込み（.envがあれば先に読む）
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Warn("close db failed", "error", err)
		}
	}()

	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedSampleData {
		if err := db.SeedSampleData(ctx, gormDB); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	//イベント送信（ブローカー未設定なら何もしない）
	var events publisher = event.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("order events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("close publisher failed", "error", err)
		}
	}()

	//画像保存先
	images, err := storage.NewLocalImageStore(cfg.UploadDir, cfg.PublicImagePath)
	if err != nil {
		return err
	}

	app, err := server.New(server.Deps{
		Config: cfg,
		DB:     gormDB,
		Logger: logger,
		Events: events,
		Images: images,
	})
	if err != nil {
		return err
	}

	//管理者アカウント（環境変数があるときだけ）
	if cfg.AdminEmail != "" {
		created, err := app.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		if created {
			logger.Info("admin user created", "email", cfg.AdminEmail)
		}
	}

	//Server起動
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}
	logger.Info("server starting", "addr", addr, "env", cfg.AppEnv, "db", cfg.DBDriver)

	return server.Start(ctx, app.Echo, addr)
}
