package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/config"
	"github.com/sngm3741/pcb-intake-services/api/internal/infrastructure/s3store"
	"github.com/sngm3741/pcb-intake-services/api/internal/infrastructure/store"
	"github.com/sngm3741/pcb-intake-services/api/internal/infrastructure/telegram"
	publicapp "github.com/sngm3741/pcb-intake-services/api/internal/public/application"
	"github.com/sngm3741/pcb-intake-services/api/internal/server"
)

func main() {
	cfg := config.Load()
	logger := cfg.ServerLog
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	repo, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("応募ストアへの接続に失敗しました", zap.Error(err))
	}

	objects, err := s3store.New(ctx, s3store.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Bucket:          cfg.S3Bucket,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		UsePathStyle:    cfg.S3UsePathStyle,
		EnsureBucket:    cfg.S3EnsureBucket,
	}, logger)
	if err != nil {
		logger.Fatal("オブジェクトストレージの初期化に失敗しました", zap.Error(err))
	}
	// 起動時点でバケットに届かなくてもアップロード時に RelayError として扱うため、警告に留める。
	if err := objects.Ping(ctx); err != nil {
		logger.Warn("オブジェクトストレージへの疎通確認に失敗しました", zap.String("bucket", cfg.S3Bucket), zap.Error(err))
	}

	app := server.New(cfg, server.Dependencies{
		Store:      repo,
		CloseStore: closeStore,
		Objects:    objects,
		Notifier:   newNotifier(cfg, logger),
	})
	if err := app.Run(); err != nil {
		logger.Fatal("サーバー起動に失敗", zap.Error(err))
	}
}

func newNotifier(cfg config.Config, logger *zap.Logger) publicapp.Notifier {
	tgCfg := telegram.Config{
		APIURL:        cfg.TelegramAPIURL,
		BotToken:      cfg.TelegramBotToken,
		ChatID:        cfg.TelegramChatID,
		AdminPanelURL: cfg.AdminPanelURL,
		HTTPClient:    &http.Client{Timeout: cfg.NotifyTimeout},
	}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		tgCfg.Location = loc
	} else {
		logger.Warn("タイムゾーンの読み込みに失敗、UTC を使用します", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}
	if !tgCfg.Enabled() {
		logger.Warn("telegram notifier disabled: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID missing")
		return telegram.LogNotifier{Logger: logger}
	}
	return telegram.New(tgCfg)
}
