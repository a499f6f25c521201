package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/visibility"
)

// VisibilityServiceInterface は公開切替のハンドラーが必要とするサービスインターフェース。
type VisibilityServiceInterface interface {
	SetVisibility(ctx context.Context, classroomID string, requested model.ClassroomStatus, requesterID string) (*visibility.Result, error)
}

// VisibilityHandler は教室の公開切替のHTTPハンドラー。
// 利用者の識別のみを行い、所有者の確認はサービス層に任せる。
type VisibilityHandler struct {
	service VisibilityServiceInterface
}

// NewVisibilityHandler はVisibilityHandlerを生成する。
func NewVisibilityHandler(service VisibilityServiceInterface) *VisibilityHandler {
	return &VisibilityHandler{service: service}
}

type visibilityRequest struct {
	Status string `json:"status"`
}

type visibilityResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// SetVisibility は教室の公開状態を変更する。
// POST /api/classrooms/{id}/visibility
func (h *VisibilityHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req visibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.SetVisibility(r.Context(), chi.URLParam(r, "id"), model.ClassroomStatus(req.Status), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, visibilityResponse{
		Success: true,
		Message: result.Message,
		Status:  string(result.Status),
	})
}
