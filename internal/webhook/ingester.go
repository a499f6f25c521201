package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/hitoshi/pianoclass/internal/metrics"
	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/repository"
)

// 処理対象のイベント種別
const (
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventSubscriptionUpdated     = "customer.subscription.updated"
)

// Outcome はイベント1件の処理結果。
type Outcome string

const (
	// OutcomeApplied は契約行を更新した。
	OutcomeApplied Outcome = "applied"
	// OutcomeStale は保存済みより古い期間のイベントのため適用しなかった。
	OutcomeStale Outcome = "stale"
	// OutcomeNotFound は対応する契約行が無かった。
	OutcomeNotFound Outcome = "not_found"
	// OutcomeNoSubscription はイベントにゲートウェイ契約IDが含まれていなかった。
	OutcomeNoSubscription Outcome = "no_subscription"
	// OutcomeIgnored は処理対象外のイベント種別だった。
	OutcomeIgnored Outcome = "ignored"
	// OutcomeDecodeError は処理対象のイベントだがデータを解析できなかった。
	// 再送しても結果は変わらないため受領扱いにする。
	OutcomeDecodeError Outcome = "decode_error"
	// OutcomeError は永続化に失敗した。
	OutcomeError Outcome = "error"
)

// subscriptionStore はWebhook処理に必要な掲載契約データアクセス。
type subscriptionStore interface {
	FindByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*model.Subscription, error)
	ApplyUpdate(ctx context.Context, stripeSubscriptionID string, update repository.SubscriptionUpdate) (bool, error)
}

// Ingester は検証済みイベントを掲載契約の状態へ反映する。
// 同じイベントを何度適用しても同じ状態に収束する。
type Ingester struct {
	subs    subscriptionStore
	metrics metrics.MetricsCollector
	logger  *slog.Logger
	now     func() time.Time
}

// NewIngester はIngesterを生成する。
func NewIngester(subs repository.SubscriptionRepository, collector metrics.MetricsCollector, logger *slog.Logger) *Ingester {
	return &Ingester{
		subs:    subs,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle はイベントを種別ごとに処理する。
// エラーを返すのは永続化に失敗した場合のみで、呼び出し側はゲートウェイの再送に任せる。
// データを解析できないイベントはERRORで記録したうえでエラーを返さない。
func (i *Ingester) Handle(ctx context.Context, event stripe.Event) (Outcome, error) {
	eventType := string(event.Type)

	outcome, subID, err := i.dispatch(ctx, eventType, event)
	i.metrics.RecordWebhookEvent(eventType, string(outcome))
	if outcome == OutcomeDecodeError {
		i.logger.LogAttrs(ctx, slog.LevelError, "Webhookイベントのデータを解析できません",
			slog.String("event_id", event.ID),
			slog.String("event_type", eventType),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()),
		)
		return outcome, nil
	}

	attrs := []slog.Attr{
		slog.String("event_id", event.ID),
		slog.String("event_type", eventType),
		slog.String("stripe_subscription_id", subID),
		slog.String("outcome", string(outcome)),
	}
	switch {
	case err != nil:
		attrs = append(attrs, slog.String("error", err.Error()))
		i.logger.LogAttrs(ctx, slog.LevelError, "Webhookイベントの処理に失敗しました", attrs...)
	case outcome == OutcomeNotFound, outcome == OutcomeNoSubscription:
		i.logger.LogAttrs(ctx, slog.LevelWarn, "Webhookイベントに対応する掲載契約がありません", attrs...)
	default:
		i.logger.LogAttrs(ctx, slog.LevelInfo, "Webhookイベントを処理しました", attrs...)
	}
	return outcome, err
}

func (i *Ingester) dispatch(ctx context.Context, eventType string, event stripe.Event) (Outcome, string, error) {
	now := i.now()

	switch eventType {
	case EventInvoicePaymentSucceeded:
		inv, err := decodeInvoice(event)
		if err != nil {
			return OutcomeDecodeError, "", err
		}
		subID := invoiceSubscriptionID(inv)
		outcome, err := i.apply(ctx, subID, repository.SubscriptionUpdate{
			Status:             model.SubscriptionStatusActive,
			CurrentPeriodStart: unixTime(inv.PeriodStart),
			CurrentPeriodEnd:   unixTime(inv.PeriodEnd),
			UpdatedAt:          now,
		})
		return outcome, subID, err

	case EventInvoicePaymentFailed:
		inv, err := decodeInvoice(event)
		if err != nil {
			return OutcomeDecodeError, "", err
		}
		subID := invoiceSubscriptionID(inv)
		outcome, err := i.apply(ctx, subID, repository.SubscriptionUpdate{
			Status:    model.SubscriptionStatusPastDue,
			UpdatedAt: now,
		})
		return outcome, subID, err

	case EventSubscriptionDeleted:
		sub, err := decodeSubscription(event)
		if err != nil {
			return OutcomeDecodeError, "", err
		}
		outcome, err := i.apply(ctx, sub.ID, repository.SubscriptionUpdate{
			Status:      model.SubscriptionStatusCancelled,
			CancelledAt: &now,
			UpdatedAt:   now,
		})
		return outcome, sub.ID, err

	case EventSubscriptionUpdated:
		sub, err := decodeSubscription(event)
		if err != nil {
			return OutcomeDecodeError, "", err
		}
		outcome, err := i.apply(ctx, sub.ID, repository.SubscriptionUpdate{
			Status:             MapGatewayStatus(sub.Status),
			CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
			CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
			UpdatedAt:          now,
		})
		return outcome, sub.ID, err
	}

	return OutcomeIgnored, "", nil
}

// apply はゲートウェイ契約IDに対応する行を更新する。
func (i *Ingester) apply(ctx context.Context, subID string, update repository.SubscriptionUpdate) (Outcome, error) {
	if subID == "" {
		return OutcomeNoSubscription, nil
	}

	existing, err := i.subs.FindByStripeSubscriptionID(ctx, subID)
	if err != nil {
		return OutcomeError, err
	}
	if existing == nil {
		return OutcomeNotFound, nil
	}

	applied, err := i.subs.ApplyUpdate(ctx, subID, update)
	if err != nil {
		return OutcomeError, err
	}
	if !applied {
		return OutcomeStale, nil
	}
	return OutcomeApplied, nil
}

// MapGatewayStatus はゲートウェイの契約状態を掲載契約の状態に変換する。
func MapGatewayStatus(status stripe.SubscriptionStatus) model.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return model.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return model.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return model.SubscriptionStatusCancelled
	default:
		return model.SubscriptionStatusInactive
	}
}

func decodeInvoice(event stripe.Event) (*stripe.Invoice, error) {
	var inv stripe.Invoice
	if err := decodeObject(event, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func decodeSubscription(event stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := decodeObject(event, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func decodeObject(event stripe.Event, v any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("イベントにデータがありません: %s", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		return fmt.Errorf("イベントデータの解析に失敗しました: %w", err)
	}
	return nil
}

// invoiceSubscriptionID は請求書に紐づくゲートウェイ契約IDを返す。
// 文字列ID・展開済みオブジェクトのどちらでもstripe-goがIDを埋める。
func invoiceSubscriptionID(inv *stripe.Invoice) string {
	if inv.Subscription == nil {
		return ""
	}
	return inv.Subscription.ID
}

// unixTime はゲートウェイのUNIX秒をUTC時刻に変換する。0は未指定として扱う。
func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
