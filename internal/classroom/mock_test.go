package classroom

import (
	"context"
	"time"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/search"
)

// --- モック ---

type mockClassroomRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.Classroom, error)
	findByOwnerIDFn func(ctx context.Context, ownerID string) (*model.Classroom, error)
	createFn        func(ctx context.Context, c *model.Classroom) error
	updateDetailsFn func(ctx context.Context, c *model.Classroom) error
	updateStatusFn  func(ctx context.Context, id string, status model.ClassroomStatus, updatedAt time.Time) (bool, error)
	searchListedFn  func(ctx context.Context, filter search.Filter, now time.Time) ([]*model.Classroom, error)
	findListedFn    func(ctx context.Context, id string, now time.Time) (*model.Classroom, error)
	listPhotosFn    func(ctx context.Context, ids []string) (map[string][]model.ClassroomPhoto, error)
	listCoursesFn   func(ctx context.Context, classroomID string) ([]model.Course, error)
}

func (m *mockClassroomRepo) FindByID(ctx context.Context, id string) (*model.Classroom, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockClassroomRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.Classroom, error) {
	return m.findByOwnerIDFn(ctx, ownerID)
}

func (m *mockClassroomRepo) Create(ctx context.Context, c *model.Classroom) error {
	return m.createFn(ctx, c)
}

func (m *mockClassroomRepo) UpdateDetails(ctx context.Context, c *model.Classroom) error {
	return m.updateDetailsFn(ctx, c)
}

func (m *mockClassroomRepo) UpdateStatus(ctx context.Context, id string, status model.ClassroomStatus, updatedAt time.Time) (bool, error) {
	return m.updateStatusFn(ctx, id, status, updatedAt)
}

func (m *mockClassroomRepo) SearchListed(ctx context.Context, filter search.Filter, now time.Time) ([]*model.Classroom, error) {
	return m.searchListedFn(ctx, filter, now)
}

func (m *mockClassroomRepo) FindListed(ctx context.Context, id string, now time.Time) (*model.Classroom, error) {
	return m.findListedFn(ctx, id, now)
}

func (m *mockClassroomRepo) ListPhotosByClassroomIDs(ctx context.Context, ids []string) (map[string][]model.ClassroomPhoto, error) {
	if m.listPhotosFn == nil {
		return map[string][]model.ClassroomPhoto{}, nil
	}
	return m.listPhotosFn(ctx, ids)
}

func (m *mockClassroomRepo) ListCourses(ctx context.Context, classroomID string) ([]model.Course, error) {
	if m.listCoursesFn == nil {
		return nil, nil
	}
	return m.listCoursesFn(ctx, classroomID)
}

type mockSubscriptionFinder struct {
	sub *model.Subscription
	err error
}

func (m *mockSubscriptionFinder) FindLatestByClassroomID(ctx context.Context, classroomID string) (*model.Subscription, error) {
	return m.sub, m.err
}

type mockInquiryRepo struct {
	inquiries     map[string]*model.Inquiry
	updatedStatus map[string]model.InquiryStatus
}

func newMockInquiryRepo(inquiries ...*model.Inquiry) *mockInquiryRepo {
	m := &mockInquiryRepo{
		inquiries:     map[string]*model.Inquiry{},
		updatedStatus: map[string]model.InquiryStatus{},
	}
	for _, inq := range inquiries {
		m.inquiries[inq.ID] = inq
	}
	return m
}

func (m *mockInquiryRepo) Create(ctx context.Context, inq *model.Inquiry) error {
	m.inquiries[inq.ID] = inq
	return nil
}

func (m *mockInquiryRepo) FindByID(ctx context.Context, id string) (*model.Inquiry, error) {
	inq, ok := m.inquiries[id]
	if !ok {
		return nil, nil
	}
	cp := *inq
	return &cp, nil
}

func (m *mockInquiryRepo) ListByClassroomID(ctx context.Context, classroomID string) ([]*model.Inquiry, error) {
	var result []*model.Inquiry
	for _, inq := range m.inquiries {
		if inq.ClassroomID == classroomID {
			result = append(result, inq)
		}
	}
	return result, nil
}

func (m *mockInquiryRepo) UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) error {
	m.updatedStatus[id] = status
	return nil
}

type mockPlanRepo struct {
	plans []*model.PaymentPlan
	err   error
}

func (m *mockPlanRepo) ListActive(ctx context.Context) ([]*model.PaymentPlan, error) {
	return m.plans, m.err
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Clean(raw string) string { return raw }

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }
