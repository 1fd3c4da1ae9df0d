package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/api"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/api/handler"
	apimiddleware "github.com/DanieleGelsomino/djscovery-sub000/internal/api/middleware"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/application"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/config"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/infrastructure/mail"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/infrastructure/postgres"
	redisinfra "github.com/DanieleGelsomino/djscovery-sub000/internal/infrastructure/redis"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/logger"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/metrics"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/qrtoken"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	log := logger.NewLogger(cfg.Server.Env)
	logger.Set(log)
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := postgres.RunMigrations(db.DB, path); err != nil {
			logger.Fatal("マイグレーションエラー", zap.Error(err))
		}
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisinfra.Ping(ctx, redisClient); err != nil {
		logger.Warn("Redis接続エラー（キャッシュなしで続行）", zap.Error(err))
		redisClient = nil
	}

	var (
		cache       *redisinfra.AvailabilityCache
		lockManager *redisinfra.LockManager
	)
	if redisClient != nil {
		cache = redisinfra.NewAvailabilityCache(redisClient, 30*time.Second)
		lockManager = redisinfra.NewLockManager(redisClient)
	}

	// リポジトリとトランザクションマネージャー
	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	// チェックイントークン
	tokenIssuer := qrtoken.NewIssuer(cfg.Token.Secret, cfg.Token.TTL)

	// サービス
	eventService := application.NewEventService(eventRepo, cache)
	bookingService := application.NewBookingService(txManager, bookingRepo, eventRepo, cache)
	checkinService := application.NewCheckinService(txManager, bookingRepo, tokenIssuer)

	// ハンドラー
	eventHandler := handler.NewEventHandler(eventService)
	bookingHandler := handler.NewBookingHandler(bookingService, tokenIssuer)
	checkinHandler := handler.NewCheckinHandler(checkinService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	// 公開API
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.GET("/bookings/:id/qr", bookingHandler.GetTicket)

	// 入場チェックイン
	v1.POST("/checkin", checkinHandler.CheckIn)
	v1.POST("/checkin/undo", checkinHandler.Undo)

	// 管理API
	admin := v1.Group("/admin", apimiddleware.AdminAuth(cfg.Admin.Token))
	admin.GET("/events", eventHandler.ListAll)
	admin.POST("/events", eventHandler.Create)
	admin.PUT("/events/:id", eventHandler.Update)
	admin.POST("/events/:id/publish", eventHandler.Publish)
	admin.POST("/events/:id/archive", eventHandler.Archive)
	admin.DELETE("/events/:id", eventHandler.Delete)
	admin.GET("/events/:id/bookings", bookingHandler.ListByEvent)

	// 確認メールワーカー
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	var mailerWorker *worker.BookingMailer
	if cfg.Mail.Enabled {
		mailer, err := mail.NewMailer(&cfg.Mail, tokenIssuer)
		if err != nil {
			logger.Fatal("メーラー初期化エラー", zap.Error(err))
		}
		mailerWorker = worker.NewBookingMailer(
			bookingRepo, eventRepo, mailer, lockManager,
			cfg.Worker.Interval, cfg.Worker.BatchSize,
		)
		go mailerWorker.Start(workerCtx)
	}

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if mailerWorker != nil {
		cancelWorker()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
