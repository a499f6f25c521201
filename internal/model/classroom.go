// Package model はドメインモデルを定義する。
package model

import "time"

// ClassroomStatus は教室の掲載状態を表す。
type ClassroomStatus string

const (
	// ClassroomStatusDraft は下書き状態。検索結果には表示されない。
	ClassroomStatusDraft ClassroomStatus = "draft"
	// ClassroomStatusPending は審査待ち状態。
	ClassroomStatusPending ClassroomStatus = "pending"
	// ClassroomStatusPublished は公開状態。有効な掲載契約がある間のみ一覧に表示される。
	ClassroomStatusPublished ClassroomStatus = "published"
	// ClassroomStatusSuspended は掲載契約の失効により停止された状態。
	ClassroomStatusSuspended ClassroomStatus = "suspended"
)

// IsRequestable はオーナーが公開切替で指定できる状態かどうかを返す。
// 指定できるのは published と draft のみ。
func (s ClassroomStatus) IsRequestable() bool {
	return s == ClassroomStatusPublished || s == ClassroomStatusDraft
}

// Classroom はピアノ教室の掲載情報を表す。
// 1オーナーにつき1教室（アプリケーション側で保証する）。
type Classroom struct {
	ID             string
	OwnerID        string
	Name           string
	Description    string
	Address        string
	Prefecture     string
	City           string
	Phone          string
	Email          string
	WebsiteURL     string
	TargetAges     []string
	AvailableDays  []string
	AvailableTimes string
	InstructorInfo string
	PRPoints       string
	Status         ClassroomStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClassroomPhoto は教室の写真を表す。DisplayOrderの昇順で表示する。
type ClassroomPhoto struct {
	ID           string
	ClassroomID  string
	PhotoURL     string
	DisplayOrder int
	CreatedAt    time.Time
}

// Course は教室が提供するコースを表す。
type Course struct {
	ID             string
	ClassroomID    string
	Name           string
	TargetAudience string
	PriceRange     string
	Description    string
	DisplayOrder   int
	CreatedAt      time.Time
}

// ClassroomWithPhotos は検索結果の1件。教室と写真一覧を結合したもの。
type ClassroomWithPhotos struct {
	Classroom
	Photos []ClassroomPhoto
}

// ClassroomDetail は公開詳細ページ用に写真とコースを結合したもの。
type ClassroomDetail struct {
	Classroom
	Photos  []ClassroomPhoto
	Courses []Course
}
