package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/pianoclass/internal/model"
)

const subscriptionColumns = `id, classroom_id,
	COALESCE(stripe_subscription_id, ''), COALESCE(stripe_customer_id, ''),
	status, current_period_start, current_period_end, cancelled_at,
	created_at, updated_at`

// PostgresSubscriptionRepo はPostgreSQLを使用した掲載契約リポジトリ。
type PostgresSubscriptionRepo struct {
	db *sqlx.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sqlx.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(s rowScanner) (*model.Subscription, error) {
	sub := &model.Subscription{}
	var start, end, cancelled sql.NullTime
	if err := s.Scan(
		&sub.ID, &sub.ClassroomID,
		&sub.StripeSubscriptionID, &sub.StripeCustomerID,
		&sub.Status, &start, &end, &cancelled,
		&sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sub.CurrentPeriodStart = nullTimePtr(start)
	sub.CurrentPeriodEnd = nullTimePtr(end)
	sub.CancelledAt = nullTimePtr(cancelled)
	return sub, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// ListActiveByClassroomID は教室のstatus = activeの契約を取得する。
func (r *PostgresSubscriptionRepo) ListActiveByClassroomID(ctx context.Context, classroomID string) ([]*model.Subscription, error) {
	if !isUUID(classroomID) {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE classroom_id = $1 AND status = 'active'
		 ORDER BY current_period_end DESC NULLS LAST`,
		classroomID,
	)
	if err != nil {
		return nil, fmt.Errorf("有効な掲載契約の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("掲載契約行の読み取りに失敗しました: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("掲載契約一覧の走査に失敗しました: %w", err)
	}
	return subs, nil
}

// FindLatestByClassroomID は教室の最新の契約を取得する。見つからない場合はnilを返す。
func (r *PostgresSubscriptionRepo) FindLatestByClassroomID(ctx context.Context, classroomID string) (*model.Subscription, error) {
	if !isUUID(classroomID) {
		return nil, nil
	}
	sub, err := scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE classroom_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		classroomID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("掲載契約の取得に失敗しました: %w", err)
	}
	return sub, nil
}

// FindByStripeSubscriptionID はゲートウェイの契約IDで契約を取得する。見つからない場合はnilを返す。
func (r *PostgresSubscriptionRepo) FindByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*model.Subscription, error) {
	sub, err := scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE stripe_subscription_id = $1`,
		stripeSubscriptionID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ゲートウェイ契約IDによる掲載契約の検索に失敗しました: %w", err)
	}
	return sub, nil
}

// ApplyUpdate はゲートウェイの契約IDに対応する行を上書きする。
// 期間終了が指定された場合、保存済みの期間終了より古い更新は条件句で除外される。
// 解約済みの行は、解約の再適用か期間終了が進んだ更新でしか書き換えない。
// 同じ内容の再適用は同じ結果に収束する（冪等）。
func (r *PostgresSubscriptionRepo) ApplyUpdate(ctx context.Context, stripeSubscriptionID string, u SubscriptionUpdate) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET
			status = $2,
			current_period_start = COALESCE($3, current_period_start),
			current_period_end = COALESCE($4, current_period_end),
			cancelled_at = COALESCE($5, cancelled_at),
			updated_at = $6
		 WHERE stripe_subscription_id = $1
		   AND ($4::timestamptz IS NULL OR current_period_end IS NULL OR current_period_end <= $4)
		   AND (status <> 'cancelled' OR $2 = 'cancelled' OR current_period_end < $4::timestamptz)`,
		stripeSubscriptionID, string(u.Status),
		u.CurrentPeriodStart, u.CurrentPeriodEnd, u.CancelledAt, u.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("掲載契約の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)
