package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v79"

	"github.com/hitoshi/pianoclass/internal/middleware"
	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/webhook"
)

// maxWebhookBodyBytes はWebhookボディの上限サイズ。
const maxWebhookBodyBytes = 65536

// EventVerifier は生のボディと署名ヘッダーからイベントを復元する。
type EventVerifier interface {
	Verify(payload []byte, signature string) (stripe.Event, error)
}

// EventIngester は検証済みイベントを掲載契約へ反映する。
type EventIngester interface {
	Handle(ctx context.Context, event stripe.Event) (webhook.Outcome, error)
}

// WebhookHandler は決済ゲートウェイからのWebhookを受け付けるHTTPハンドラー。
type WebhookHandler struct {
	verifier EventVerifier
	ingester EventIngester
}

// NewWebhookHandler はWebhookHandlerを生成する。
func NewWebhookHandler(verifier EventVerifier, ingester EventIngester) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, ingester: ingester}
}

type webhookAckResponse struct {
	Received bool `json:"received"`
}

// Receive は署名を検証してからイベントを処理する。
// POST /api/webhooks/stripe
//
// 署名が無い・不正な場合は400を返し、何も変更しない。
// 対応する契約が無いイベントや対象外のイベントも200で受領を返す。
// 永続化に失敗した場合は500を返し、ゲートウェイの再送に任せる。
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		slog.WarnContext(r.Context(), "failed to read webhook body", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get(webhook.SignatureHeader))
	if err != nil {
		slog.WarnContext(r.Context(), "webhook signature verification failed",
			slog.String("client_ip", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			apiErr = model.NewInvalidSignatureError()
		}
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.ingester.Handle(r.Context(), event); err != nil {
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, webhookAckResponse{Received: true})
}
