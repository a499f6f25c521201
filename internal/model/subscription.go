package model

import "time"

// SubscriptionStatus は掲載契約（月額掲載料）の状態を表す。
type SubscriptionStatus string

const (
	// SubscriptionStatusActive は支払い済みで有効な状態。
	SubscriptionStatusActive SubscriptionStatus = "active"
	// SubscriptionStatusInactive は未開始または不明な状態。
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	// SubscriptionStatusCancelled は解約済みの状態。
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	// SubscriptionStatusPastDue は支払い失敗による延滞状態。
	SubscriptionStatusPastDue SubscriptionStatus = "past_due"
)

// Subscription は教室ごとの掲載契約（課金期間）を表す。
// 決済ゲートウェイのWebhookによって状態が更新される。
type Subscription struct {
	ID                   string
	ClassroomID          string
	StripeSubscriptionID string
	StripeCustomerID     string
	Status               SubscriptionStatus
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	CancelledAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// EntitledAt は指定時刻において掲載権があるかどうかを返す。
// status == active かつ current_period_end が now より厳密に後の場合のみ true。
func (s *Subscription) EntitledAt(now time.Time) bool {
	if s == nil || s.Status != SubscriptionStatusActive || s.CurrentPeriodEnd == nil {
		return false
	}
	return s.CurrentPeriodEnd.After(now)
}

// PaymentStatus はダッシュボードに表示する決済状況。
type PaymentStatus struct {
	IsActive         bool
	Status           SubscriptionStatus
	CurrentPeriodEnd *time.Time
}

// PaymentPlan は掲載料金プランを表す。
type PaymentPlan struct {
	ID           string
	Name         string
	PriceMonthly int
	Description  string
	Features     []string
	IsActive     bool
	CreatedAt    time.Time
}
