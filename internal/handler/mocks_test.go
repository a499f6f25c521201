package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/hitoshi/pianoclass/internal/classroom"
	"github.com/hitoshi/pianoclass/internal/middleware"
	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/search"
	"github.com/hitoshi/pianoclass/internal/visibility"
	"github.com/hitoshi/pianoclass/internal/webhook"
)

// --- モック定義 ---

type mockDirectoryService struct {
	searchFn  func(ctx context.Context, filter search.Filter) ([]model.ClassroomWithPhotos, error)
	detailFn  func(ctx context.Context, classroomID string) (*model.ClassroomDetail, error)
	plansFn   func(ctx context.Context) ([]*model.PaymentPlan, error)
	catalogFn func() classroom.Catalog
}

func (m *mockDirectoryService) Search(ctx context.Context, filter search.Filter) ([]model.ClassroomWithPhotos, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, filter)
	}
	return []model.ClassroomWithPhotos{}, nil
}

func (m *mockDirectoryService) Detail(ctx context.Context, classroomID string) (*model.ClassroomDetail, error) {
	if m.detailFn != nil {
		return m.detailFn(ctx, classroomID)
	}
	return nil, model.NewClassroomNotFoundError(classroomID)
}

func (m *mockDirectoryService) Catalog() classroom.Catalog {
	if m.catalogFn != nil {
		return m.catalogFn()
	}
	return classroom.Catalog{Prefectures: model.Prefectures, TargetAges: model.TargetAges, AvailableDays: model.AvailableDays}
}

func (m *mockDirectoryService) Plans(ctx context.Context) ([]*model.PaymentPlan, error) {
	if m.plansFn != nil {
		return m.plansFn(ctx)
	}
	return []*model.PaymentPlan{}, nil
}

type mockVisibilityService struct {
	setVisibilityFn func(ctx context.Context, classroomID string, requested model.ClassroomStatus, requesterID string) (*visibility.Result, error)
}

func (m *mockVisibilityService) SetVisibility(ctx context.Context, classroomID string, requested model.ClassroomStatus, requesterID string) (*visibility.Result, error) {
	return m.setVisibilityFn(ctx, classroomID, requested, requesterID)
}

type mockDashboardService struct {
	getClassroomFn        func(ctx context.Context, ownerID string) (*classroom.OwnerClassroom, error)
	createClassroomFn     func(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error)
	updateClassroomFn     func(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error)
	getSubscriptionFn     func(ctx context.Context, ownerID string) (*model.Subscription, error)
	listInquiriesFn       func(ctx context.Context, ownerID string) ([]*model.Inquiry, error)
	updateInquiryStatusFn func(ctx context.Context, ownerID, inquiryID string, status model.InquiryStatus) (*model.Inquiry, error)
}

func (m *mockDashboardService) GetClassroom(ctx context.Context, ownerID string) (*classroom.OwnerClassroom, error) {
	return m.getClassroomFn(ctx, ownerID)
}

func (m *mockDashboardService) CreateClassroom(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error) {
	return m.createClassroomFn(ctx, ownerID, in)
}

func (m *mockDashboardService) UpdateClassroom(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error) {
	return m.updateClassroomFn(ctx, ownerID, in)
}

func (m *mockDashboardService) GetSubscription(ctx context.Context, ownerID string) (*model.Subscription, error) {
	return m.getSubscriptionFn(ctx, ownerID)
}

func (m *mockDashboardService) ListInquiries(ctx context.Context, ownerID string) ([]*model.Inquiry, error) {
	return m.listInquiriesFn(ctx, ownerID)
}

func (m *mockDashboardService) UpdateInquiryStatus(ctx context.Context, ownerID, inquiryID string, status model.InquiryStatus) (*model.Inquiry, error) {
	return m.updateInquiryStatusFn(ctx, ownerID, inquiryID, status)
}

type mockInquiryService struct {
	createFn func(ctx context.Context, classroomID string, in model.InquiryInput) (*model.Inquiry, error)
}

func (m *mockInquiryService) Create(ctx context.Context, classroomID string, in model.InquiryInput) (*model.Inquiry, error) {
	return m.createFn(ctx, classroomID, in)
}

type mockEventVerifier struct {
	verifyFn func(payload []byte, signature string) (stripe.Event, error)
}

func (m *mockEventVerifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	return m.verifyFn(payload, signature)
}

type mockEventIngester struct {
	handled []stripe.Event
	outcome webhook.Outcome
	err     error
}

func (m *mockEventIngester) Handle(ctx context.Context, event stripe.Event) (webhook.Outcome, error) {
	m.handled = append(m.handled, event)
	return m.outcome, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) PingContext(ctx context.Context) error { return m.err }

type noopMetrics struct{}

func (noopMetrics) RecordWebhookEvent(eventType, outcome string)         {}
func (noopMetrics) RecordVisibilityTransition(requested, outcome string) {}
func (noopMetrics) RecordReconcileSuspended(count int64)                 {}
func (noopMetrics) RecordReconcileLatency(duration time.Duration)        {}
func (noopMetrics) RecordHTTPStatus(statusCode int)                      {}

// --- ヘルパー ---

// withUserID はリクエストコンテキストに利用者IDを設定する。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

var fixedTime = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }
