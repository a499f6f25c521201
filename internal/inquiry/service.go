// Package inquiry は一般利用者から教室への問い合わせ受付を提供する。
package inquiry

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/repository"
	"github.com/hitoshi/pianoclass/internal/security"
)

// listedFinder は掲載中の教室の取得。
type listedFinder interface {
	FindListed(ctx context.Context, id string, now time.Time) (*model.Classroom, error)
}

// inquiryCreator は問い合わせの保存。
type inquiryCreator interface {
	Create(ctx context.Context, inquiry *model.Inquiry) error
}

// Service は問い合わせ受付のサービス層。
type Service struct {
	classrooms listedFinder
	inquiries  inquiryCreator
	sanitizer  security.TextSanitizer
	logger     *slog.Logger
	newID      func() string
	now        func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	classrooms repository.ClassroomRepository,
	inquiries repository.InquiryRepository,
	sanitizer security.TextSanitizer,
	logger *slog.Logger,
) *Service {
	return &Service{
		classrooms: classrooms,
		inquiries:  inquiries,
		sanitizer:  sanitizer,
		logger:     logger,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Create は掲載中の教室への問い合わせを未読状態で保存する。
// 掲載中でない教室への問い合わせはCLASSROOM_NOT_FOUNDとして拒否する。
func (s *Service) Create(ctx context.Context, classroomID string, in model.InquiryInput) (*model.Inquiry, error) {
	in = model.InquiryInput{
		SenderName:  s.sanitizer.Clean(in.SenderName),
		SenderEmail: s.sanitizer.Clean(in.SenderEmail),
		Subject:     s.sanitizer.Clean(in.Subject),
		Message:     s.sanitizer.Clean(in.Message),
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	c, err := s.classrooms.FindListed(ctx, classroomID, now)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.NewClassroomNotFoundError(classroomID)
	}

	inq := &model.Inquiry{
		ID:          s.newID(),
		ClassroomID: c.ID,
		SenderName:  in.SenderName,
		SenderEmail: in.SenderEmail,
		Subject:     in.Subject,
		Message:     in.Message,
		Status:      model.InquiryStatusUnread,
		CreatedAt:   now,
	}
	if err := s.inquiries.Create(ctx, inq); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "問い合わせを受け付けました",
		slog.String("classroom_id", c.ID),
		slog.String("inquiry_id", inq.ID),
	)
	return inq, nil
}
