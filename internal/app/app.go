package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/rediscover/internal/auth"
	"github.com/hitoshi/rediscover/internal/cityfilter"
	"github.com/hitoshi/rediscover/internal/config"
	"github.com/hitoshi/rediscover/internal/database"
	"github.com/hitoshi/rediscover/internal/geo"
	"github.com/hitoshi/rediscover/internal/handler"
	"github.com/hitoshi/rediscover/internal/logger"
	"github.com/hitoshi/rediscover/internal/metrics"
	"github.com/hitoshi/rediscover/internal/middleware"
	"github.com/hitoshi/rediscover/internal/narrative"
	"github.com/hitoshi/rediscover/internal/repository"
	"github.com/hitoshi/rediscover/internal/security"
	"github.com/hitoshi/rediscover/internal/waitlist"

	"github.com/prometheus/client_golang/prometheus"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

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
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandInvite:
		if len(args) < 2 {
			return fmt.Errorf("invite command requires an email address argument")
		}
		return runInvite(cfg, args[1])
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	inviteRepo := repository.NewPostgresInviteRepo(db)
	googleRepo := repository.NewPostgresGoogleAuthRepo(db)
	waitlistRepo := repository.NewPostgresWaitlistRepo(db)
	locationRepo := repository.NewPostgresLocationRepo(db)
	infoRepo := repository.NewPostgresLocationInfoRepo(db)

	// 3. セキュリティサービスとメトリクスの初期化
	// 外部API（Maps、OAuth、AI）への全アウトバウンド通信はSSRF対策済みクライアントを通す
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. 認証サービスの初期化
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	invites := auth.NewInviteService(inviteRepo)
	authService := auth.NewService(userRepo, invites, tokens, collector)

	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, ssrfGuard.NewSafeClient(10*time.Second, 1<<20))
	googleService := auth.NewLinkingService(oauthProvider, userRepo, googleRepo, tokens, collector)

	// 5. 位置特定サービスの初期化
	mapsClient := geo.NewMapsClient(
		ssrfGuard.NewSafeClient(10*time.Second, 1<<20),
		slog.Default(), cfg.GoogleMapsAPIKey,
	)
	geoService := geo.NewService(locationRepo, mapsClient, collector, slog.Default(), cfg.GeohashPrecision)

	// 6. ナラティブ生成サービスの初期化
	aiClient := narrative.NewAIClient(
		ssrfGuard.NewSafeClient(60*time.Second, 4<<20),
		slog.Default(), cfg.OpenAIAPIKey, cfg.OpenAIModel,
	)
	narrativeService := narrative.NewService(infoRepo, aiClient, sanitizer, collector, slog.Default())

	// 7. 都市フィルタと待ちリストの初期化
	cityFilter, err := cityfilter.New()
	if err != nil {
		return fmt.Errorf("failed to load enabled cities: %w", err)
	}
	waitlistService := waitlist.NewService(waitlistRepo, collector, slog.Default())

	// 8. ルーターの構築
	// configのレート値はreq/min単位なのでreq/secに変換する
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.WaitlistRate = rate.Limit(float64(cfg.RateLimitWaitlist) / 60.0)
	rateLimiterCfg.WaitlistBurst = cfg.RateLimitWaitlist
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Authenticator:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		HealthChecker:     db,
		Logger:            slog.Default(),
		MetricsGatherer:   registry,

		AuthService:   authService,
		GoogleService: googleService,

		GeoService:       geoService,
		NarrativeService: narrativeService,
		CityFilter:       cityFilter,

		WaitlistService: waitlistService,
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runInvite は指定メールアドレス宛の招待コードを発行する。
// 運用者がCLIから新規メンバーを招待するためのサブコマンド。
func runInvite(cfg *config.Config, email string) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	inviteRepo := repository.NewPostgresInviteRepo(db)
	invites := auth.NewInviteService(inviteRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	invite, err := invites.CreateInvite(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	slog.Info("invite created",
		slog.String("email", invite.Email),
		slog.String("code", invite.Code),
	)
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
