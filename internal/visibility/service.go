// Package visibility は教室の公開・非公開の切り替えを提供する。
//
// 公開（published）への遷移は掲載権がある場合のみ許可し、
// 下書き（draft）への遷移は常に許可する。
package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/pianoclass/internal/metrics"
	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/repository"
)

const (
	messagePublished = "教室を公開しました。"
	messageDraft     = "教室を下書きに戻しました。"
)

// 受け付けないステータスをメトリクスに記録するときのラベル
const requestedLabelInvalid = "invalid"

// 監査ログとメトリクスに記録する結果
const (
	outcomeApplied         = "applied"
	outcomeInvalidStatus   = "invalid_status"
	outcomeNotFound        = "not_found"
	outcomeForbidden       = "forbidden"
	outcomePaymentRequired = "payment_required"
	outcomeError           = "error"
)

// EntitlementChecker は掲載権の判定処理。
type EntitlementChecker interface {
	IsEntitled(ctx context.Context, classroomID string) (bool, error)
}

// classroomStore は公開切替に必要な教室データアクセス。
type classroomStore interface {
	FindByID(ctx context.Context, id string) (*model.Classroom, error)
	UpdateStatus(ctx context.Context, id string, status model.ClassroomStatus, updatedAt time.Time) (bool, error)
}

// Result は公開切替の結果。
type Result struct {
	ClassroomID string
	Status      model.ClassroomStatus
	Message     string
}

// Service は公開切替のサービス層。
type Service struct {
	classrooms  classroomStore
	entitlement EntitlementChecker
	metrics     metrics.MetricsCollector
	logger      *slog.Logger
	feeYen      int
	now         func() time.Time
}

// NewService はServiceを生成する。feeYenは支払い要求メッセージに表示する月額掲載料。
func NewService(
	classrooms repository.ClassroomRepository,
	entitlement EntitlementChecker,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	feeYen int,
) *Service {
	return &Service{
		classrooms:  classrooms,
		entitlement: entitlement,
		metrics:     collector,
		logger:      logger,
		feeYen:      feeYen,
		now:         time.Now,
	}
}

// SetVisibility は教室の公開状態を変更する。
//
// requestedはpublishedまたはdraftのみ受け付ける。所有者の確認はここで1度だけ行う。
// publishedの場合は掲載権がなければ状態を変えずにPAYMENT_REQUIREDを返す。
func (s *Service) SetVisibility(ctx context.Context, classroomID string, requested model.ClassroomStatus, requesterID string) (*Result, error) {
	result, outcome, err := s.setVisibility(ctx, classroomID, requested, requesterID)
	s.audit(ctx, classroomID, requested, requesterID, outcome, err)
	return result, err
}

func (s *Service) setVisibility(ctx context.Context, classroomID string, requested model.ClassroomStatus, requesterID string) (*Result, string, error) {
	if !requested.IsRequestable() {
		return nil, outcomeInvalidStatus, model.NewInvalidStatusError(string(requested))
	}

	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		return nil, outcomeError, fmt.Errorf("教室の取得に失敗しました: %w", err)
	}
	if classroom == nil {
		return nil, outcomeNotFound, model.NewClassroomNotFoundError(classroomID)
	}
	if classroom.OwnerID != requesterID {
		return nil, outcomeForbidden, model.NewForbiddenError()
	}

	message := messageDraft
	if requested == model.ClassroomStatusPublished {
		entitled, err := s.entitlement.IsEntitled(ctx, classroomID)
		if err != nil {
			return nil, outcomeError, err
		}
		if !entitled {
			return nil, outcomePaymentRequired, model.NewPaymentRequiredError(s.feeYen)
		}
		message = messagePublished
	}

	updated, err := s.classrooms.UpdateStatus(ctx, classroomID, requested, s.now())
	if err != nil {
		return nil, outcomeError, err
	}
	if !updated {
		return nil, outcomeNotFound, model.NewClassroomNotFoundError(classroomID)
	}

	return &Result{
		ClassroomID: classroomID,
		Status:      requested,
		Message:     message,
	}, outcomeApplied, nil
}

// audit は公開切替の監査ログとメトリクスを記録する。
func (s *Service) audit(ctx context.Context, classroomID string, requested model.ClassroomStatus, requesterID, outcome string, err error) {
	s.metrics.RecordVisibilityTransition(requestedLabel(requested), outcome)

	attrs := []slog.Attr{
		slog.String("classroom_id", classroomID),
		slog.String("requested", string(requested)),
		slog.String("requester_id", requesterID),
		slog.String("outcome", outcome),
	}
	level := slog.LevelInfo
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if outcome == outcomeError {
			level = slog.LevelError
		}
	}
	s.logger.LogAttrs(ctx, level, "教室の公開状態変更", attrs...)
}

// requestedLabel はメトリクスのrequestedラベル値を返す。
// 受け付けない値はすべてinvalidにまとめ、ラベルの値を有限に保つ。
func requestedLabel(requested model.ClassroomStatus) string {
	if !requested.IsRequestable() {
		return requestedLabelInvalid
	}
	return string(requested)
}
