package model

import "time"

// UserType はプロフィールの利用者種別を表す。
type UserType string

const (
	// UserTypeGeneral は教室を探す一般利用者。
	UserTypeGeneral UserType = "general"
	// UserTypeClassroomOwner は教室を掲載する運営者。
	UserTypeClassroomOwner UserType = "classroom_owner"
	// UserTypeAdmin は管理者。
	UserTypeAdmin UserType = "admin"
)

// CanUseDashboard はダッシュボードを利用できる種別かどうかを返す。
func (t UserType) CanUseDashboard() bool {
	return t == UserTypeClassroomOwner || t == UserTypeAdmin
}

// Profile は認証プロバイダーのユーザーに1:1で対応するプロフィール。
type Profile struct {
	ID        string
	UserType  UserType
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InquiryStatus は問い合わせの対応状態を表す。
type InquiryStatus string

const (
	InquiryStatusUnread  InquiryStatus = "unread"
	InquiryStatusRead    InquiryStatus = "read"
	InquiryStatusReplied InquiryStatus = "replied"
)

// IsValid は定義済みの対応状態かどうかを返す。
func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryStatusUnread, InquiryStatusRead, InquiryStatusReplied:
		return true
	}
	return false
}

// Inquiry は教室への問い合わせを表す。
type Inquiry struct {
	ID          string
	ClassroomID string
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
	Status      InquiryStatus
	CreatedAt   time.Time
}
