package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/pianoclass/internal/auth"
	"github.com/hitoshi/pianoclass/internal/classroom"
	"github.com/hitoshi/pianoclass/internal/config"
	"github.com/hitoshi/pianoclass/internal/database"
	"github.com/hitoshi/pianoclass/internal/entitlement"
	"github.com/hitoshi/pianoclass/internal/handler"
	"github.com/hitoshi/pianoclass/internal/inquiry"
	"github.com/hitoshi/pianoclass/internal/logger"
	"github.com/hitoshi/pianoclass/internal/metrics"
	"github.com/hitoshi/pianoclass/internal/middleware"
	"github.com/hitoshi/pianoclass/internal/repository"
	"github.com/hitoshi/pianoclass/internal/security"
	"github.com/hitoshi/pianoclass/internal/visibility"
	"github.com/hitoshi/pianoclass/internal/webhook"
	"github.com/hitoshi/pianoclass/internal/worker/reconcile"
)

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. 設定読み込み前にログを使えるようにする（レベルは環境変数から暫定で決める）
	logger.SetupDefault(w, logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// 2. .envがあれば読み込む（既存の環境変数が優先）
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 4. .envで指定されたLOG_LEVELを反映する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandReconcile:
		return runReconcileOnce(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newMetricsRegistry はアプリケーション指標とランタイム指標を登録したレジストリを返す。
func newMetricsRegistry() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// コンテキストがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	classroomRepo := repository.NewPostgresClassroomRepo(db)
	subRepo := repository.NewPostgresSubscriptionRepo(db)
	profileRepo := repository.NewPostgresProfileRepo(db)
	inquiryRepo := repository.NewPostgresInquiryRepo(db)
	planRepo := repository.NewPostgresPaymentPlanRepo(db)

	// 3. 監視・セキュリティ
	reg, collector := newMetricsRegistry()
	sanitizer := security.NewTextSanitizer()
	appLogger := slog.Default()

	// 4. ドメインサービスの初期化
	evaluator := entitlement.NewEvaluator(subRepo, nil)
	visibilityService := visibility.NewService(classroomRepo, evaluator, collector, appLogger, cfg.ListingFeeYen)
	directory := classroom.NewDirectory(classroomRepo, planRepo)
	dashboard := classroom.NewDashboard(classroomRepo, subRepo, inquiryRepo, sanitizer)
	inquiryService := inquiry.NewService(classroomRepo, inquiryRepo, sanitizer, appLogger)

	// 5. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitInquiry),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            appLogger,
		TokenVerifier:     auth.NewTokenVerifier(cfg.AuthJWTSecret),
		Profiles:          profileRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		DB:             db,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),

		Directory: directory,
		Inquiries: inquiryService,

		Visibility: visibilityService,
		Dashboard:  dashboard,

		WebhookVerifier: webhook.NewVerifier(cfg.StripeWebhookSecret),
		WebhookIngester: webhook.NewIngester(subRepo, collector, appLogger),
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return serveUntilDone(ctx, server, "API server")
}

// serveUntilDone はHTTPサーバーを起動し、コンテキストのキャンセルでシャットダウンする。
func serveUntilDone(ctx context.Context, server *http.Server, name string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info(name+" starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s listen error: %w", name, err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down " + name + "...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown failed: %w", name, err)
	}

	slog.Info(name + " stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 掲載契約の整合ジョブをcron式に従って実行し、指標を/metricsで公開する。
// REDIS_URLが設定されている場合は分散ロックで複数レプリカの同時実行を防ぐ。
func runWorker(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	// 2. 分散ロック
	locker, closeLocker, err := newReconcileLocker(cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	// 3. 整合ジョブとスケジューラ
	reg, collector := newMetricsRegistry()
	job := reconcile.NewJob(db, collector, slog.Default())
	scheduler := reconcile.NewScheduler(job, locker, slog.Default())

	// 4. 監視用HTTPサーバー（/health, /metrics）
	mux := chi.NewRouter()
	mux.Get("/health", handler.NewHealthHandler(db))
	mux.Method(http.MethodGet, "/metrics", metrics.Handler(reg))
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() { serverErr <- serveUntilDone(ctx, server, "worker metrics server") }()

	slog.Info("worker starting",
		slog.String("reconcile_schedule", cfg.ReconcileSchedule),
		slog.Bool("distributed_lock", locker != nil),
	)

	// スケジューラをメインgoroutineで実行（ブロッキング）
	if err := scheduler.Start(ctx, cfg.ReconcileSchedule); err != nil {
		return fmt.Errorf("failed to start reconcile scheduler: %w", err)
	}

	if err := <-serverErr; err != nil {
		slog.Error("worker metrics server error", slog.String("error", err.Error()))
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runReconcileOnce は整合ジョブを1回だけ実行する。
// 他のレプリカがロックを保持している場合は何もせずに終了する。
func runReconcileOnce(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	locker, closeLocker, err := newReconcileLocker(cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	_, collector := newMetricsRegistry()
	job := reconcile.NewJob(db, collector, slog.Default())
	if err := reconcile.NewScheduler(job, locker, slog.Default()).RunOnce(ctx); err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	return nil
}

// newReconcileLocker はREDIS_URLからロックを生成する。
// 未設定の場合はnilを返し、スケジューラは単一プロセス前提でロックなしに実行する。
func newReconcileLocker(cfg *config.Config) (reconcile.Locker, func(), error) {
	if cfg.RedisURL == "" {
		return nil, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	return reconcile.NewRedisLocker(client, cfg.ReconcileLockTTL), closeFn, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
