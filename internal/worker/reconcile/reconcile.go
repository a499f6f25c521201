// Package reconcile は掲載権を失った公開中教室の非公開化ジョブを提供する。
//
// 決済Webhookは掲載契約の行だけを更新し、教室のstatusは変更しない。
// このジョブが定期的に公開中かつ掲載権のない教室をsuspendedへ移すことで、
// 教室の状態を掲載契約に追従させる。
package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/pianoclass/internal/metrics"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB、*sqlx.DB、*sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// suspendQuery は公開中で掲載権のない教室を一括でsuspendedにする。
// 掲載権の条件はEntitledAtと同じく current_period_end > 評価時刻。
const suspendQuery = `UPDATE classrooms c
SET status = 'suspended', updated_at = $1
WHERE c.status = 'published'
  AND NOT EXISTS (
    SELECT 1 FROM subscriptions s
    WHERE s.classroom_id = c.id
      AND s.status = 'active'
      AND s.current_period_end > $1
  )`

// Job は掲載状態の整合ジョブ。
// 1回のUPDATEで完結するため、何度実行しても結果は同じになる。
type Job struct {
	db      Executor
	metrics metrics.MetricsCollector
	logger  *slog.Logger
	now     func() time.Time
}

// NewJob は新しいJobを生成する。
func NewJob(db Executor, collector metrics.MetricsCollector, logger *slog.Logger) *Job {
	return &Job{
		db:      db,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
}

// Run は掲載権のない公開中教室をsuspendedにし、変更した件数を返す。
func (j *Job) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	result, err := j.db.ExecContext(ctx, suspendQuery, j.now())
	if err != nil {
		j.logger.ErrorContext(ctx, "掲載状態の整合ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("掲載状態の整合に失敗: %w", err)
	}

	suspended, err := result.RowsAffected()
	if err != nil {
		j.logger.ErrorContext(ctx, "非公開化件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("非公開化件数の取得に失敗: %w", err)
	}

	duration := time.Since(start)
	j.metrics.RecordReconcileSuspended(suspended)
	j.metrics.RecordReconcileLatency(duration)

	j.logger.InfoContext(ctx, "掲載状態の整合ジョブが完了しました",
		slog.Int64("suspended_count", suspended),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)
	return suspended, nil
}
