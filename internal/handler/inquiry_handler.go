package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pianoclass/internal/model"
)

// InquiryServiceInterface は問い合わせ受付のハンドラーが必要とするサービスインターフェース。
type InquiryServiceInterface interface {
	Create(ctx context.Context, classroomID string, in model.InquiryInput) (*model.Inquiry, error)
}

// InquiryHandler は問い合わせフォームのHTTPハンドラー。
type InquiryHandler struct {
	service InquiryServiceInterface
}

// NewInquiryHandler はInquiryHandlerを生成する。
func NewInquiryHandler(service InquiryServiceInterface) *InquiryHandler {
	return &InquiryHandler{service: service}
}

type inquiryCreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Create は掲載中の教室への問い合わせを受け付ける。
// POST /api/classrooms/{id}/inquiries
func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.InquiryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	inq, err := h.service.Create(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, inquiryCreatedResponse{
		ID:      inq.ID,
		Message: "お問い合わせを送信しました。",
	})
}
