package middleware

import (
	"net/http"
	"strings"
)

// ブラウザから呼ばれるルートが使うメソッドとヘッダー。
// 教室情報の更新はPUT、問い合わせの対応状態はPATCHで受け付ける。
var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsAllowedHeaders = strings.Join([]string{"Authorization", "Content-Type", "Stripe-Signature"}, ", ")
)

// corsMaxAgeSeconds はプリフライト結果のキャッシュ秒数（24時間）。
const corsMaxAgeSeconds = "86400"

// NewCORSMiddleware はフロントエンドのオリジンallowedOriginだけを許可するCORSミドルウェアを返す。
// ダッシュボードはBearerトークンを送るため、オリジンにワイルドカードは使わない。
// プリフライト（OPTIONS）は後段に渡さず204で終える。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Max-Age", corsMaxAgeSeconds)
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
