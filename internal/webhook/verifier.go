// Package webhook は決済ゲートウェイ（Stripe）のWebhook受信処理を提供する。
package webhook

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	stripewebhook "github.com/stripe/stripe-go/v79/webhook"

	"github.com/hitoshi/pianoclass/internal/model"
)

// SignatureHeader は署名を運ぶHTTPヘッダー名。
const SignatureHeader = "Stripe-Signature"

// Verifier は生のリクエストボディと署名ヘッダーを検証し、イベントを復元する。
type Verifier struct {
	secret string
}

// NewVerifier はWebhookシークレットを保持するVerifierを生成する。
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify は署名を検証してからイベントをパースする。
// ヘッダーが無い場合や署名が一致しない場合はINVALID_SIGNATUREを返し、
// ボディの内容は一切解釈しない。
func (v *Verifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	if signature == "" {
		return stripe.Event{}, fmt.Errorf("署名ヘッダーがありません: %w", model.NewInvalidSignatureError())
	}

	event, err := stripewebhook.ConstructEventWithOptions(payload, signature, v.secret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("署名の検証に失敗しました: %v: %w", err, model.NewInvalidSignatureError())
	}
	return event, nil
}
