package inquiry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/security"
)

// --- モック ---

type mockListedFinder struct {
	classroom *model.Classroom
	err       error
	gotNow    time.Time
}

func (m *mockListedFinder) FindListed(ctx context.Context, id string, now time.Time) (*model.Classroom, error) {
	m.gotNow = now
	if m.err != nil {
		return nil, m.err
	}
	if m.classroom == nil || m.classroom.ID != id {
		return nil, nil
	}
	return m.classroom, nil
}

type mockInquiryCreator struct {
	created []*model.Inquiry
	err     error
}

func (m *mockInquiryCreator) Create(ctx context.Context, inq *model.Inquiry) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, inq)
	return nil
}

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newTestService(finder *mockListedFinder, creator *mockInquiryCreator, buf *bytes.Buffer) *Service {
	return &Service{
		classrooms: finder,
		inquiries:  creator,
		sanitizer:  security.NewTextSanitizer(),
		logger:     slog.New(slog.NewJSONHandler(buf, nil)),
		newID:      func() string { return "inquiry-1" },
		now:        func() time.Time { return fixedNow },
	}
}

func validInput() model.InquiryInput {
	return model.InquiryInput{
		SenderName:  "山田 花子",
		SenderEmail: "hanako@example.com",
		Subject:     "体験レッスンについて",
		Message:     "小学2年生の娘の体験レッスンを希望します。",
	}
}

// TestCreate_ListedClassroom は掲載中の教室への問い合わせが未読で保存されることを検証する。
func TestCreate_ListedClassroom(t *testing.T) {
	finder := &mockListedFinder{classroom: &model.Classroom{ID: "c-1"}}
	creator := &mockInquiryCreator{}
	var buf bytes.Buffer
	s := newTestService(finder, creator, &buf)

	in := validInput()
	in.Message = "<b>体験</b>希望です<script>alert(1)</script>"

	got, err := s.Create(context.Background(), "c-1", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creator.created) != 1 {
		t.Fatalf("created = %d, want 1", len(creator.created))
	}
	if got.ID != "inquiry-1" || got.ClassroomID != "c-1" {
		t.Errorf("ID/ClassroomID = %q/%q", got.ID, got.ClassroomID)
	}
	if got.Status != model.InquiryStatusUnread {
		t.Errorf("Status = %s, want unread", got.Status)
	}
	if got.Message != "体験希望です" {
		t.Errorf("Message = %q, want %q", got.Message, "体験希望です")
	}
	if !got.CreatedAt.Equal(fixedNow) || !finder.gotNow.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, FindListed now = %v, want %v", got.CreatedAt, finder.gotNow, fixedNow)
	}

	logged := buf.String()
	if !strings.Contains(logged, `"inquiry_id":"inquiry-1"`) {
		t.Errorf("log should contain inquiry_id: %s", logged)
	}
	if strings.Contains(logged, "hanako@example.com") {
		t.Errorf("log should not contain sender email: %s", logged)
	}
}

// TestCreate_UnlistedClassroom は掲載中でない教室への問い合わせが拒否されることを検証する。
func TestCreate_UnlistedClassroom(t *testing.T) {
	creator := &mockInquiryCreator{}
	var buf bytes.Buffer
	s := newTestService(&mockListedFinder{}, creator, &buf)

	_, err := s.Create(context.Background(), "c-draft", validInput())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeClassroomNotFound {
		t.Errorf("error = %v, want CLASSROOM_NOT_FOUND", err)
	}
	if len(creator.created) != 0 {
		t.Error("inquiry should not be stored")
	}
}

// TestCreate_Validation は入力検証の失敗で保存されないことを検証する。
func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *model.InquiryInput)
	}{
		{"名前なし", func(in *model.InquiryInput) { in.SenderName = "" }},
		{"不正なメールアドレス", func(in *model.InquiryInput) { in.SenderEmail = "hanako" }},
		{"本文なし", func(in *model.InquiryInput) { in.Message = "" }},
		{"タグのみの本文", func(in *model.InquiryInput) { in.Message = "<script>alert(1)</script>" }},
		{"本文が長すぎる", func(in *model.InquiryInput) { in.Message = strings.Repeat("あ", 5001) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &mockListedFinder{classroom: &model.Classroom{ID: "c-1"}}
			creator := &mockInquiryCreator{}
			var buf bytes.Buffer
			s := newTestService(finder, creator, &buf)

			in := validInput()
			tt.mutate(&in)
			_, err := s.Create(context.Background(), "c-1", in)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("error = %v, want VALIDATION_FAILED", err)
			}
			if len(creator.created) != 0 {
				t.Error("inquiry should not be stored")
			}
		})
	}
}

// TestCreate_PersistenceError は保存失敗のエラーがそのまま返ることを検証する。
func TestCreate_PersistenceError(t *testing.T) {
	dbErr := errors.New("insert failed")
	finder := &mockListedFinder{classroom: &model.Classroom{ID: "c-1"}}
	var buf bytes.Buffer
	s := newTestService(finder, &mockInquiryCreator{err: dbErr}, &buf)

	_, err := s.Create(context.Background(), "c-1", validInput())
	if !errors.Is(err, dbErr) {
		t.Errorf("error = %v, want %v", err, dbErr)
	}
}
