package classroom

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/repository"
	"github.com/hitoshi/pianoclass/internal/security"
)

// subscriptionFinder はダッシュボードに必要な掲載契約データアクセス。
type subscriptionFinder interface {
	FindLatestByClassroomID(ctx context.Context, classroomID string) (*model.Subscription, error)
}

// OwnerClassroom はオーナー自身の教室と決済状況。
type OwnerClassroom struct {
	Classroom *model.Classroom
	Payment   model.PaymentStatus
}

// Dashboard は教室オーナー向けの管理機能のサービス層。
// 全ての操作はオーナーIDから自分の教室を解決して行う。
type Dashboard struct {
	classrooms repository.ClassroomRepository
	subs       subscriptionFinder
	inquiries  repository.InquiryRepository
	sanitizer  security.TextSanitizer
	newID      func() string
	now        func() time.Time
}

// NewDashboard はDashboardを生成する。
func NewDashboard(
	classrooms repository.ClassroomRepository,
	subs repository.SubscriptionRepository,
	inquiries repository.InquiryRepository,
	sanitizer security.TextSanitizer,
) *Dashboard {
	return &Dashboard{
		classrooms: classrooms,
		subs:       subs,
		inquiries:  inquiries,
		sanitizer:  sanitizer,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// GetClassroom はオーナーの教室と決済状況を返す。教室が無い場合はCLASSROOM_NOT_FOUND。
func (d *Dashboard) GetClassroom(ctx context.Context, ownerID string) (*OwnerClassroom, error) {
	c, err := d.ownClassroom(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sub, err := d.subs.FindLatestByClassroomID(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	payment := model.PaymentStatus{Status: model.SubscriptionStatusInactive}
	if sub != nil {
		payment = model.PaymentStatus{
			IsActive:         sub.EntitledAt(d.now()),
			Status:           sub.Status,
			CurrentPeriodEnd: sub.CurrentPeriodEnd,
		}
	}
	return &OwnerClassroom{Classroom: c, Payment: payment}, nil
}

// CreateClassroom はオーナーの教室を下書き状態で登録する。
// 1オーナーにつき1教室のため、既に登録済みの場合はCLASSROOM_ALREADY_EXISTSを返す。
func (d *Dashboard) CreateClassroom(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error) {
	existing, err := d.classrooms.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.NewClassroomAlreadyExistsError()
	}

	c, err := model.NewDraftClassroom(d.newID(), ownerID, sanitizeClassroomInput(d.sanitizer, in), d.now())
	if err != nil {
		return nil, err
	}
	if err := d.classrooms.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateClassroom はオーナーの教室の表示項目を更新する。掲載状態は変更しない。
func (d *Dashboard) UpdateClassroom(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error) {
	c, err := d.ownClassroom(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	in = sanitizeClassroomInput(d.sanitizer, in)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.ApplyTo(c)
	c.UpdatedAt = d.now()

	if err := d.classrooms.UpdateDetails(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetSubscription はオーナーの教室の最新の掲載契約を返す。無い場合はSUBSCRIPTION_NOT_FOUND。
func (d *Dashboard) GetSubscription(ctx context.Context, ownerID string) (*model.Subscription, error) {
	c, err := d.ownClassroom(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sub, err := d.subs.FindLatestByClassroomID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, model.NewSubscriptionNotFoundError()
	}
	return sub, nil
}

// ListInquiries はオーナーの教室への問い合わせを新しい順に返す。
func (d *Dashboard) ListInquiries(ctx context.Context, ownerID string) ([]*model.Inquiry, error) {
	c, err := d.ownClassroom(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	inquiries, err := d.inquiries.ListByClassroomID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if inquiries == nil {
		inquiries = []*model.Inquiry{}
	}
	return inquiries, nil
}

// UpdateInquiryStatus はオーナーの教室宛ての問い合わせの対応状態を変更する。
// 他の教室宛ての問い合わせはINQUIRY_NOT_FOUNDとして扱う。
func (d *Dashboard) UpdateInquiryStatus(ctx context.Context, ownerID, inquiryID string, status model.InquiryStatus) (*model.Inquiry, error) {
	if !status.IsValid() {
		return nil, model.NewValidationError("status")
	}

	c, err := d.ownClassroom(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	inq, err := d.inquiries.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inq == nil || inq.ClassroomID != c.ID {
		return nil, model.NewInquiryNotFoundError(inquiryID)
	}

	if err := d.inquiries.UpdateStatus(ctx, inquiryID, status); err != nil {
		return nil, err
	}
	inq.Status = status
	return inq, nil
}

func (d *Dashboard) ownClassroom(ctx context.Context, ownerID string) (*model.Classroom, error) {
	c, err := d.classrooms.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("オーナーの教室の取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewClassroomNotRegisteredError()
	}
	return c, nil
}

// sanitizeClassroomInput は自由記述の各項目からHTMLを除去する。
// 検証は除去後の値に対して行う。
func sanitizeClassroomInput(s security.TextSanitizer, in model.ClassroomInput) model.ClassroomInput {
	return model.ClassroomInput{
		Name:           s.Clean(in.Name),
		Description:    s.Clean(in.Description),
		Address:        s.Clean(in.Address),
		Prefecture:     s.Clean(in.Prefecture),
		City:           s.Clean(in.City),
		Phone:          s.Clean(in.Phone),
		Email:          s.Clean(in.Email),
		WebsiteURL:     s.Clean(in.WebsiteURL),
		TargetAges:     security.CleanAll(s, in.TargetAges),
		AvailableDays:  security.CleanAll(s, in.AvailableDays),
		AvailableTimes: s.Clean(in.AvailableTimes),
		InstructorInfo: s.Clean(in.InstructorInfo),
		PRPoints:       s.Clean(in.PRPoints),
	}
}
