package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pianoclass/internal/classroom"
	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/search"
)

// DirectoryServiceInterface は公開ディレクトリのハンドラーが必要とするサービスインターフェース。
type DirectoryServiceInterface interface {
	// Search は検索条件に一致する掲載中の教室を写真付きで返す。
	Search(ctx context.Context, filter search.Filter) ([]model.ClassroomWithPhotos, error)
	// Detail は掲載中の教室の詳細を返す。
	Detail(ctx context.Context, classroomID string) (*model.ClassroomDetail, error)
	// Catalog は検索条件の選択肢を返す。
	Catalog() classroom.Catalog
	// Plans は有効な料金プランを返す。
	Plans(ctx context.Context) ([]*model.PaymentPlan, error)
}

// ClassroomHandler は教室の検索・詳細表示のHTTPハンドラー。
type ClassroomHandler struct {
	service DirectoryServiceInterface
}

// NewClassroomHandler はClassroomHandlerを生成する。
func NewClassroomHandler(service DirectoryServiceInterface) *ClassroomHandler {
	return &ClassroomHandler{service: service}
}

// classroomResponse は教室情報のAPIレスポンス。
type classroomResponse struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Address        string    `json:"address"`
	Prefecture     string    `json:"prefecture"`
	City           string    `json:"city"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	WebsiteURL     string    `json:"website_url"`
	TargetAges     []string  `json:"target_ages"`
	AvailableDays  []string  `json:"available_days"`
	AvailableTimes string    `json:"available_times"`
	InstructorInfo string    `json:"instructor_info"`
	PRPoints       string    `json:"pr_points"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type photoResponse struct {
	ID           string `json:"id"`
	PhotoURL     string `json:"photo_url"`
	DisplayOrder int    `json:"display_order"`
}

type courseResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TargetAudience string `json:"target_audience"`
	PriceRange     string `json:"price_range"`
	Description    string `json:"description"`
	DisplayOrder   int    `json:"display_order"`
}

// classroomListItem は検索結果の1件。
type classroomListItem struct {
	classroomResponse
	Photos []photoResponse `json:"photos"`
}

// classroomDetailResponse は公開詳細のAPIレスポンス。
type classroomDetailResponse struct {
	classroomResponse
	Photos  []photoResponse  `json:"photos"`
	Courses []courseResponse `json:"courses"`
}

type catalogResponse struct {
	Prefectures   []string `json:"prefectures"`
	TargetAges    []string `json:"target_ages"`
	AvailableDays []string `json:"available_days"`
}

type paymentPlanResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PriceMonthly int      `json:"price_monthly"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
}

// Search は教室を検索する。
// GET /api/classrooms?prefecture=&city=&keyword=&target_age=&available_day=
func (h *ClassroomHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := search.Filter{
		Prefecture:   q.Get("prefecture"),
		City:         q.Get("city"),
		Keyword:      q.Get("keyword"),
		TargetAge:    q.Get("target_age"),
		AvailableDay: q.Get("available_day"),
	}

	results, err := h.service.Search(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	items := make([]classroomListItem, len(results))
	for i, c := range results {
		items[i] = classroomListItem{
			classroomResponse: toClassroomResponse(&c.Classroom),
			Photos:            toPhotoResponses(c.Photos),
		}
	}
	writeJSON(w, http.StatusOK, items)
}

// Get は掲載中の教室の詳細を返す。
// GET /api/classrooms/{id}
func (h *ClassroomHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	courses := make([]courseResponse, len(detail.Courses))
	for i, c := range detail.Courses {
		courses[i] = courseResponse{
			ID:             c.ID,
			Name:           c.Name,
			TargetAudience: c.TargetAudience,
			PriceRange:     c.PriceRange,
			Description:    c.Description,
			DisplayOrder:   c.DisplayOrder,
		}
	}
	writeJSON(w, http.StatusOK, classroomDetailResponse{
		classroomResponse: toClassroomResponse(&detail.Classroom),
		Photos:            toPhotoResponses(detail.Photos),
		Courses:           courses,
	})
}

// Catalog は検索条件の選択肢を返す。
// GET /api/catalog
func (h *ClassroomHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	c := h.service.Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{
		Prefectures:   c.Prefectures,
		TargetAges:    c.TargetAges,
		AvailableDays: c.AvailableDays,
	})
}

// Plans は料金プランの一覧を返す。
// GET /api/payment-plans
func (h *ClassroomHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.Plans(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]paymentPlanResponse, len(plans))
	for i, p := range plans {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		resp[i] = paymentPlanResponse{
			ID:           p.ID,
			Name:         p.Name,
			PriceMonthly: p.PriceMonthly,
			Description:  p.Description,
			Features:     features,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func toClassroomResponse(c *model.Classroom) classroomResponse {
	return classroomResponse{
		ID:             c.ID,
		OwnerID:        c.OwnerID,
		Name:           c.Name,
		Description:    c.Description,
		Address:        c.Address,
		Prefecture:     c.Prefecture,
		City:           c.City,
		Phone:          c.Phone,
		Email:          c.Email,
		WebsiteURL:     c.WebsiteURL,
		TargetAges:     nonNilStrings(c.TargetAges),
		AvailableDays:  nonNilStrings(c.AvailableDays),
		AvailableTimes: c.AvailableTimes,
		InstructorInfo: c.InstructorInfo,
		PRPoints:       c.PRPoints,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toPhotoResponses(photos []model.ClassroomPhoto) []photoResponse {
	resp := make([]photoResponse, len(photos))
	for i, p := range photos {
		resp[i] = photoResponse{ID: p.ID, PhotoURL: p.PhotoURL, DisplayOrder: p.DisplayOrder}
	}
	return resp
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
