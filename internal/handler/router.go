package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/rediscover/internal/metrics"
	"github.com/hitoshi/rediscover/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.TokenAuthenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HealthChecker     HealthChecker
	Logger            *slog.Logger
	MetricsGatherer   prometheus.Gatherer

	// 認証
	AuthService   AuthServiceInterface
	GoogleService GoogleAuthServiceInterface

	// 位置特定と観光ナラティブ
	GeoService       GeoServiceInterface
	NarrativeService NarrativeServiceInterface
	CityFilter       interface {
		CityFilterInterface
		CityListerInterface
	}

	// 待ちリスト
	WaitlistService WaitlistServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → (認証ルートのみ) Auth → RateLimit(General)
//
// 認証不要のルート（/v1/auth/*、/waitlist、/v1/cities、/health、/metrics）は
// 認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	// CORS ミドルウェアを全ルートに適用
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.GoogleService)
	locateHandler := NewLocateHandler(deps.GeoService, deps.CityFilter)
	infoHandler := NewLocationInfoHandler(deps.GeoService, deps.NarrativeService)
	citiesHandler := NewCitiesHandler(deps.CityFilter)
	waitlistHandler := NewWaitlistHandler(deps.WaitlistService)

	// --- 認証不要のルート ---

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// OAuthフロー
		r.Get("/google", authHandler.GoogleLogin)
		r.Post("/google", authHandler.GoogleCallback)
	})

	// 待ちリスト（IP単位のレート制限付き）
	r.With(deps.RateLimiter.WaitlistMiddleware()).Post("/waitlist", waitlistHandler.Subscribe)

	r.Get("/v1/cities", citiesHandler.List)
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	r.Get("/metrics", metrics.Handler(deps.MetricsGatherer).ServeHTTP)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/v1/locate", locateHandler.Locate)
		r.Get("/v1/location/info", infoHandler.GetInfo)
		r.Get("/v1/auth/me", authHandler.Me)
	})

	return r
}
