// Package entitlement は教室の掲載権（有効な掲載契約の有無）を判定する。
package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/pianoclass/internal/model"
)

// subscriptionLister は判定に必要な掲載契約の取得処理。
type subscriptionLister interface {
	ListActiveByClassroomID(ctx context.Context, classroomID string) ([]*model.Subscription, error)
}

// Evaluator は掲載権の判定器。
// 判定のたびに保存済みの契約を読み直し、結果をキャッシュしない。
type Evaluator struct {
	subs subscriptionLister
	now  func() time.Time
}

// NewEvaluator はEvaluatorを生成する。nowがnilの場合はtime.Nowを使う。
func NewEvaluator(subs subscriptionLister, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{subs: subs, now: now}
}

// IsEntitled は教室が現時点で掲載権を持つかどうかを返す。
// status = active かつ current_period_end が現在時刻より後の契約が1件でもあればtrue。
// 教室や契約が存在しない場合はエラーではなくfalseを返す。
func (e *Evaluator) IsEntitled(ctx context.Context, classroomID string) (bool, error) {
	subs, err := e.subs.ListActiveByClassroomID(ctx, classroomID)
	if err != nil {
		return false, fmt.Errorf("掲載権の判定に失敗しました: %w", err)
	}

	now := e.now()
	for _, sub := range subs {
		if sub.EntitledAt(now) {
			return true, nil
		}
	}
	return false, nil
}
