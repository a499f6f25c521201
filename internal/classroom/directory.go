// Package classroom は教室の公開ディレクトリとオーナー向けダッシュボードのドメインロジックを提供する。
package classroom

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/repository"
	"github.com/hitoshi/pianoclass/internal/search"
)

// directoryStore は公開ディレクトリに必要な教室データアクセス。
type directoryStore interface {
	SearchListed(ctx context.Context, filter search.Filter, now time.Time) ([]*model.Classroom, error)
	FindListed(ctx context.Context, id string, now time.Time) (*model.Classroom, error)
	ListPhotosByClassroomIDs(ctx context.Context, classroomIDs []string) (map[string][]model.ClassroomPhoto, error)
	ListCourses(ctx context.Context, classroomID string) ([]model.Course, error)
}

// Catalog は検索・入力フォームの選択肢。
type Catalog struct {
	Prefectures   []string
	TargetAges    []string
	AvailableDays []string
}

// Directory は一般利用者向けの教室検索・詳細表示のサービス層。
// 掲載中（公開かつ掲載権あり）の教室のみを返す。
type Directory struct {
	classrooms directoryStore
	plans      repository.PaymentPlanRepository
	now        func() time.Time
}

// NewDirectory はDirectoryを生成する。
func NewDirectory(classrooms repository.ClassroomRepository, plans repository.PaymentPlanRepository) *Directory {
	return &Directory{
		classrooms: classrooms,
		plans:      plans,
		now:        time.Now,
	}
}

// Search は検索条件に一致する掲載中の教室を写真付きで返す。
func (d *Directory) Search(ctx context.Context, filter search.Filter) ([]model.ClassroomWithPhotos, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	classrooms, err := d.classrooms.SearchListed(ctx, filter, d.now())
	if err != nil {
		return nil, err
	}
	if len(classrooms) == 0 {
		return []model.ClassroomWithPhotos{}, nil
	}

	ids := make([]string, len(classrooms))
	for i, c := range classrooms {
		ids[i] = c.ID
	}
	photos, err := d.classrooms.ListPhotosByClassroomIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]model.ClassroomWithPhotos, len(classrooms))
	for i, c := range classrooms {
		results[i] = model.ClassroomWithPhotos{
			Classroom: *c,
			Photos:    nonNilPhotos(photos[c.ID]),
		}
	}
	return results, nil
}

// Detail は掲載中の教室の詳細を写真・コース付きで返す。
// 掲載中でない教室は存在しないものとして扱う。
func (d *Directory) Detail(ctx context.Context, classroomID string) (*model.ClassroomDetail, error) {
	c, err := d.classrooms.FindListed(ctx, classroomID, d.now())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.NewClassroomNotFoundError(classroomID)
	}

	photos, err := d.classrooms.ListPhotosByClassroomIDs(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	courses, err := d.classrooms.ListCourses(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}

	return &model.ClassroomDetail{
		Classroom: *c,
		Photos:    nonNilPhotos(photos[c.ID]),
		Courses:   courses,
	}, nil
}

// Catalog は都道府県・対象年齢・曜日の選択肢を返す。
func (d *Directory) Catalog() Catalog {
	return Catalog{
		Prefectures:   model.Prefectures,
		TargetAges:    model.TargetAges,
		AvailableDays: model.AvailableDays,
	}
}

// Plans は有効な掲載料金プランを月額料金の昇順で返す。
func (d *Directory) Plans(ctx context.Context) ([]*model.PaymentPlan, error) {
	plans, err := d.plans.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("料金プランの取得に失敗しました: %w", err)
	}
	if plans == nil {
		plans = []*model.PaymentPlan{}
	}
	return plans, nil
}

func nonNilPhotos(p []model.ClassroomPhoto) []model.ClassroomPhoto {
	if p == nil {
		return []model.ClassroomPhoto{}
	}
	return p
}
