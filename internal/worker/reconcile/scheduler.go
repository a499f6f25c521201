package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner は整合ジョブの実行インターフェース。
type Runner interface {
	Run(ctx context.Context) (int64, error)
}

// Scheduler はcron式に従って整合ジョブを実行する。
// lockerが設定されている場合、ロックを取得できたレプリカだけが実行する。
type Scheduler struct {
	job    Runner
	locker Locker
	logger *slog.Logger
}

// NewScheduler はSchedulerを生成する。lockerはnilでもよい（単一プロセス運用）。
func NewScheduler(job Runner, locker Locker, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		job:    job,
		locker: locker,
		logger: logger,
	}
}

// Start は起動直後に1回ジョブを実行し、以降はspec（秒付きのcron式）に従って実行する。
// コンテキストがキャンセルされると実行中のジョブの完了を待って戻る。
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, func() { s.runAndLog(ctx) }); err != nil {
		return fmt.Errorf("整合ジョブのスケジュールが不正です: %w", err)
	}

	s.logger.Info("整合ジョブのスケジューラを開始しました",
		slog.String("schedule", spec),
		slog.Bool("distributed_lock", s.locker != nil),
	)

	s.runAndLog(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info("整合ジョブのスケジューラを停止しました")
	return nil
}

// RunOnce はロックを取得してジョブを1回実行する。
// 他のレプリカが実行中の場合は何もせずnilを返す。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.locker != nil {
		unlock, err := s.locker.TryLock(ctx)
		if errors.Is(err, ErrLockHeld) {
			s.logger.InfoContext(ctx, "他のプロセスが実行中のため整合ジョブをスキップしました",
				slog.String("reason", err.Error()),
			)
			return nil
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.WarnContext(ctx, "整合ジョブのロック解放に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	_, err := s.job.Run(ctx)
	return err
}

func (s *Scheduler) runAndLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.RunOnce(ctx); err != nil {
		s.logger.ErrorContext(ctx, "整合ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}
