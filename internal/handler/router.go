// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pianoclass/internal/metrics"
	"github.com/hitoshi/pianoclass/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	Profiles          middleware.ProfileFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 監視
	DB             Pinger
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler

	// 公開ディレクトリ・問い合わせ
	Directory DirectoryServiceInterface
	Inquiries InquiryServiceInterface

	// オーナー操作
	Visibility VisibilityServiceInterface
	Dashboard  DashboardServiceInterface

	// 決済Webhook
	WebhookVerifier EventVerifier
	WebhookIngester EventIngester
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → StatusRecorder → Recovery → SecurityHeaders → CORS
//
// 認証が必要なルートにはさらに BearerAuth → RateLimit(General) を適用し、
// ダッシュボードでは DashboardAccess で利用者種別を確認する。
// 問い合わせのレート制限は接続元のRemoteAddrで数え、X-Forwarded-For等のヘッダーは参照しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(metrics.StatusRecorder(deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	classroomHandler := NewClassroomHandler(deps.Directory)
	inquiryHandler := NewInquiryHandler(deps.Inquiries)
	visibilityHandler := NewVisibilityHandler(deps.Visibility)
	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	webhookHandler := NewWebhookHandler(deps.WebhookVerifier, deps.WebhookIngester)

	authenticated := chi.Chain(
		middleware.NewBearerAuthMiddleware(deps.TokenVerifier),
		deps.RateLimiter.GeneralMiddleware(),
	)

	// --- 監視 ---
	r.Get("/health", NewHealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	// --- 決済Webhook（署名で認証する） ---
	r.Post("/api/webhooks/stripe", webhookHandler.Receive)

	// --- 認証不要のルート ---
	r.Get("/api/catalog", classroomHandler.Catalog)
	r.Get("/api/payment-plans", classroomHandler.Plans)

	r.Route("/api/classrooms", func(r chi.Router) {
		r.Get("/", classroomHandler.Search)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", classroomHandler.Get)

			// 公開フォーム（クライアントIP単位のレート制限）
			r.With(deps.RateLimiter.InquiryMiddleware()).Post("/inquiries", inquiryHandler.Create)

			// 公開切替（所有者の確認はサービス層で行う）
			r.With(authenticated...).Post("/visibility", visibilityHandler.SetVisibility)
		})
	})

	// --- ダッシュボード ---
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(authenticated...)
		r.Use(middleware.NewDashboardAccessMiddleware(deps.Profiles))

		r.Get("/classroom", dashboardHandler.GetClassroom)
		r.Post("/classroom", dashboardHandler.CreateClassroom)
		r.Put("/classroom", dashboardHandler.UpdateClassroom)
		r.Get("/subscription", dashboardHandler.GetSubscription)
		r.Get("/inquiries", dashboardHandler.ListInquiries)
		r.Patch("/inquiries/{id}", dashboardHandler.UpdateInquiryStatus)
	})

	return r
}
