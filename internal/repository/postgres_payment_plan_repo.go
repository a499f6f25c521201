package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hitoshi/pianoclass/internal/model"
)

type paymentPlanRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	PriceMonthly int            `db:"price_monthly"`
	Description  string         `db:"description"`
	Features     pq.StringArray `db:"features"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
}

// PostgresPaymentPlanRepo はPostgreSQLを使用した料金プランリポジトリ。
type PostgresPaymentPlanRepo struct {
	db *sqlx.DB
}

// NewPostgresPaymentPlanRepo はPostgresPaymentPlanRepoを生成する。
func NewPostgresPaymentPlanRepo(db *sqlx.DB) *PostgresPaymentPlanRepo {
	return &PostgresPaymentPlanRepo{db: db}
}

// ListActive は有効な料金プランを月額料金の昇順で返す。
func (r *PostgresPaymentPlanRepo) ListActive(ctx context.Context) ([]*model.PaymentPlan, error) {
	var rows []paymentPlanRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, price_monthly, COALESCE(description, '') AS description,
			features, is_active, created_at
		 FROM payment_plans
		 WHERE is_active = TRUE
		 ORDER BY price_monthly ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("料金プランの取得に失敗しました: %w", err)
	}

	plans := make([]*model.PaymentPlan, len(rows))
	for i, p := range rows {
		plans[i] = &model.PaymentPlan{
			ID:           p.ID,
			Name:         p.Name,
			PriceMonthly: p.PriceMonthly,
			Description:  p.Description,
			Features:     []string(p.Features),
			IsActive:     p.IsActive,
			CreatedAt:    p.CreatedAt,
		}
	}
	return plans, nil
}

// compile-time interface check
var _ PaymentPlanRepository = (*PostgresPaymentPlanRepo)(nil)
