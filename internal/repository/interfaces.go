// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/search"
)

// ProfileRepository はプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// ClassroomRepository は教室データの永続化インターフェース。
type ClassroomRepository interface {
	// FindByID は指定IDの教室を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Classroom, error)

	// FindByOwnerID はオーナーの教室を取得する。見つからない場合はnilを返す。
	FindByOwnerID(ctx context.Context, ownerID string) (*model.Classroom, error)

	// Create は教室を作成する。
	Create(ctx context.Context, classroom *model.Classroom) error

	// UpdateDetails は教室の表示項目を更新する。statusは変更しない。
	UpdateDetails(ctx context.Context, classroom *model.Classroom) error

	// UpdateStatus は教室の掲載状態とupdated_atを更新する。
	// 教室が存在しない場合はfalseを返す。
	UpdateStatus(ctx context.Context, id string, status model.ClassroomStatus, updatedAt time.Time) (bool, error)

	// SearchListed は検索条件に一致する掲載中の教室を作成日時の降順で返す。
	SearchListed(ctx context.Context, filter search.Filter, now time.Time) ([]*model.Classroom, error)

	// FindListed は指定IDの教室が掲載中の場合のみ返す。それ以外はnilを返す。
	FindListed(ctx context.Context, id string, now time.Time) (*model.Classroom, error)

	// ListPhotosByClassroomIDs は教室IDごとの写真一覧をdisplay_order順で返す。
	ListPhotosByClassroomIDs(ctx context.Context, classroomIDs []string) (map[string][]model.ClassroomPhoto, error)

	// ListCourses は教室のコース一覧をdisplay_order順で返す。
	ListCourses(ctx context.Context, classroomID string) ([]model.Course, error)
}

// SubscriptionUpdate はWebhookによる掲載契約の上書き内容。
// nilのフィールドは更新しない。
type SubscriptionUpdate struct {
	Status             model.SubscriptionStatus
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelledAt        *time.Time
	UpdatedAt          time.Time
}

// SubscriptionRepository は掲載契約データの永続化インターフェース。
type SubscriptionRepository interface {
	// ListActiveByClassroomID は教室のstatus = activeの契約を取得する。
	ListActiveByClassroomID(ctx context.Context, classroomID string) ([]*model.Subscription, error)

	// FindLatestByClassroomID は教室の最新の契約を取得する。見つからない場合はnilを返す。
	FindLatestByClassroomID(ctx context.Context, classroomID string) (*model.Subscription, error)

	// FindByStripeSubscriptionID はゲートウェイの契約IDで契約を取得する。見つからない場合はnilを返す。
	FindByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*model.Subscription, error)

	// ApplyUpdate はゲートウェイの契約IDに対応する行を上書きする。
	// CurrentPeriodEndが指定された場合、保存済みの期間終了より古い更新は適用しない。
	// 更新された行が無い場合はfalseを返す。
	ApplyUpdate(ctx context.Context, stripeSubscriptionID string, update SubscriptionUpdate) (bool, error)
}

// InquiryRepository は問い合わせの永続化インターフェース。
type InquiryRepository interface {
	// Create は問い合わせを作成する。
	Create(ctx context.Context, inquiry *model.Inquiry) error

	// FindByID は指定IDの問い合わせを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Inquiry, error)

	// ListByClassroomID は教室への問い合わせを新しい順に返す。
	ListByClassroomID(ctx context.Context, classroomID string) ([]*model.Inquiry, error)

	// UpdateStatus は問い合わせの対応状態を更新する。
	UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) error
}

// PaymentPlanRepository は料金プランの永続化インターフェース。
type PaymentPlanRepository interface {
	// ListActive は有効な料金プランを月額料金の昇順で返す。
	ListActive(ctx context.Context) ([]*model.PaymentPlan, error)
}
