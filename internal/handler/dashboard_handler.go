package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pianoclass/internal/classroom"
	"github.com/hitoshi/pianoclass/internal/model"
)

// DashboardServiceInterface はダッシュボードのハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	GetClassroom(ctx context.Context, ownerID string) (*classroom.OwnerClassroom, error)
	CreateClassroom(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error)
	UpdateClassroom(ctx context.Context, ownerID string, in model.ClassroomInput) (*model.Classroom, error)
	GetSubscription(ctx context.Context, ownerID string) (*model.Subscription, error)
	ListInquiries(ctx context.Context, ownerID string) ([]*model.Inquiry, error)
	UpdateInquiryStatus(ctx context.Context, ownerID, inquiryID string, status model.InquiryStatus) (*model.Inquiry, error)
}

// DashboardHandler は教室オーナー向け管理画面のHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type paymentStatusResponse struct {
	IsActive         bool       `json:"is_active"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}

type ownerClassroomResponse struct {
	Classroom     classroomResponse     `json:"classroom"`
	PaymentStatus paymentStatusResponse `json:"payment_status"`
}

type subscriptionResponse struct {
	ID                 string     `json:"id"`
	ClassroomID        string     `json:"classroom_id"`
	Status             string     `json:"status"`
	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type inquiryResponse struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type inquiryStatusRequest struct {
	Status string `json:"status"`
}

// GetClassroom はオーナーの教室と決済状況を返す。
// GET /api/dashboard/classroom
func (h *DashboardHandler) GetClassroom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	oc, err := h.service.GetClassroom(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ownerClassroomResponse{
		Classroom: toClassroomResponse(oc.Classroom),
		PaymentStatus: paymentStatusResponse{
			IsActive:         oc.Payment.IsActive,
			Status:           string(oc.Payment.Status),
			CurrentPeriodEnd: oc.Payment.CurrentPeriodEnd,
		},
	})
}

// CreateClassroom はオーナーの教室を下書きで登録する。
// POST /api/dashboard/classroom
func (h *DashboardHandler) CreateClassroom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in model.ClassroomInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.service.CreateClassroom(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClassroomResponse(c))
}

// UpdateClassroom はオーナーの教室の表示項目を更新する。
// PUT /api/dashboard/classroom
func (h *DashboardHandler) UpdateClassroom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in model.ClassroomInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.service.UpdateClassroom(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassroomResponse(c))
}

// GetSubscription はオーナーの教室の掲載契約を返す。
// GET /api/dashboard/subscription
func (h *DashboardHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	sub, err := h.service.GetSubscription(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, subscriptionResponse{
		ID:                 sub.ID,
		ClassroomID:        sub.ClassroomID,
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelledAt:        sub.CancelledAt,
		UpdatedAt:          sub.UpdatedAt,
	})
}

// ListInquiries はオーナーの教室への問い合わせ一覧を返す。
// GET /api/dashboard/inquiries
func (h *DashboardHandler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	inquiries, err := h.service.ListInquiries(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]inquiryResponse, len(inquiries))
	for i, inq := range inquiries {
		resp[i] = toInquiryResponse(inq)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateInquiryStatus は問い合わせの対応状態を変更する。
// PATCH /api/dashboard/inquiries/{id}
func (h *DashboardHandler) UpdateInquiryStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req inquiryStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inq, err := h.service.UpdateInquiryStatus(r.Context(), userID, chi.URLParam(r, "id"), model.InquiryStatus(req.Status))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInquiryResponse(inq))
}

func toInquiryResponse(inq *model.Inquiry) inquiryResponse {
	return inquiryResponse{
		ID:          inq.ID,
		ClassroomID: inq.ClassroomID,
		SenderName:  inq.SenderName,
		SenderEmail: inq.SenderEmail,
		Subject:     inq.Subject,
		Message:     inq.Message,
		Status:      string(inq.Status),
		CreatedAt:   inq.CreatedAt,
	}
}
