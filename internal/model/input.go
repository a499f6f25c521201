package model

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator は教室・問い合わせ入力用のバリデータを生成する。
// 都道府県・対象年齢・曜日はカタログに定義された値のみ許可する。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラー時のフィールド名をJSONタグ名に揃える
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "prefecture", func(fl validator.FieldLevel) bool {
		return IsPrefecture(fl.Field().String())
	})
	mustRegister(v, "target_age", func(fl validator.FieldLevel) bool {
		return IsTargetAge(fl.Field().String())
	})
	mustRegister(v, "weekday", func(fl validator.FieldLevel) bool {
		return IsAvailableDay(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validationError はvalidatorのエラーをAPIErrorに変換する。
// 最初に失敗したフィールド名のみを返す。
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return NewValidationError(verrs[0].Field())
	}
	return NewValidationError("unknown")
}

// ClassroomInput はダッシュボードから受け付ける教室の表示項目。
// statusはここでは扱わない（公開切替は専用の操作で行う）。
type ClassroomInput struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Description    string   `json:"description" validate:"max=2000"`
	Address        string   `json:"address" validate:"max=200"`
	Prefecture     string   `json:"prefecture" validate:"omitempty,prefecture"`
	City           string   `json:"city" validate:"max=100"`
	Phone          string   `json:"phone" validate:"omitempty,max=20"`
	Email          string   `json:"email" validate:"omitempty,email"`
	WebsiteURL     string   `json:"website_url" validate:"omitempty,url"`
	TargetAges     []string `json:"target_ages" validate:"omitempty,dive,target_age"`
	AvailableDays  []string `json:"available_days" validate:"omitempty,dive,weekday"`
	AvailableTimes string   `json:"available_times" validate:"max=500"`
	InstructorInfo string   `json:"instructor_info" validate:"max=2000"`
	PRPoints       string   `json:"pr_points" validate:"max=2000"`
}

// Validate は入力値を検証する。失敗時は*APIErrorを返す。
func (in *ClassroomInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}
	return nil
}

// NewDraftClassroom は検証済みの入力から下書き状態の教室を生成する。
// 新規教室は常にdraftで作成され、公開には公開切替操作を経る必要がある。
func NewDraftClassroom(id, ownerID string, in ClassroomInput, now time.Time) (*Classroom, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := &Classroom{
		ID:        id,
		OwnerID:   ownerID,
		Status:    ClassroomStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.ApplyTo(c)
	return c, nil
}

// ApplyTo は入力値を教室の表示項目に反映する。IDやstatusは変更しない。
func (in ClassroomInput) ApplyTo(c *Classroom) {
	c.Name = in.Name
	c.Description = in.Description
	c.Address = in.Address
	c.Prefecture = in.Prefecture
	c.City = in.City
	c.Phone = in.Phone
	c.Email = in.Email
	c.WebsiteURL = in.WebsiteURL
	c.TargetAges = nonNil(in.TargetAges)
	c.AvailableDays = nonNil(in.AvailableDays)
	c.AvailableTimes = in.AvailableTimes
	c.InstructorInfo = in.InstructorInfo
	c.PRPoints = in.PRPoints
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// InquiryInput は問い合わせフォームの入力値。
type InquiryInput struct {
	SenderName  string `json:"sender_name" validate:"required,max=100"`
	SenderEmail string `json:"sender_email" validate:"required,email"`
	Subject     string `json:"subject" validate:"max=200"`
	Message     string `json:"message" validate:"required,max=5000"`
}

// Validate は入力値を検証する。失敗時は*APIErrorを返す。
func (in *InquiryInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}
	return nil
}
