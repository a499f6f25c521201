package model

import (
	"errors"
	"testing"
	"time"
)

func TestSubscription_EntitledAt(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(30 * 24 * time.Hour)
	past := now.Add(-time.Second)

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"active_future_end", &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &future}, true},
		{"active_end_equals_now", &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &now}, false},
		{"active_past_end", &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &past}, false},
		{"active_no_end", &Subscription{Status: SubscriptionStatusActive}, false},
		{"cancelled_future_end", &Subscription{Status: SubscriptionStatusCancelled, CurrentPeriodEnd: &future}, false},
		{"past_due_future_end", &Subscription{Status: SubscriptionStatusPastDue, CurrentPeriodEnd: &future}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.EntitledAt(now); got != tt.want {
				t.Errorf("EntitledAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassroomStatus_IsRequestable(t *testing.T) {
	tests := []struct {
		status ClassroomStatus
		want   bool
	}{
		{ClassroomStatusPublished, true},
		{ClassroomStatusDraft, true},
		{ClassroomStatusPending, false},
		{ClassroomStatusSuspended, false},
		{ClassroomStatus("deleted"), false},
	}
	for _, tt := range tests {
		if got := tt.status.IsRequestable(); got != tt.want {
			t.Errorf("%q.IsRequestable() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestUserType_CanUseDashboard(t *testing.T) {
	if UserTypeGeneral.CanUseDashboard() {
		t.Error("general はダッシュボードを利用できないはず")
	}
	if !UserTypeClassroomOwner.CanUseDashboard() {
		t.Error("classroom_owner はダッシュボードを利用できるはず")
	}
	if !UserTypeAdmin.CanUseDashboard() {
		t.Error("admin はダッシュボードを利用できるはず")
	}
}

func TestCatalog_Lookups(t *testing.T) {
	if len(Prefectures) != 47 {
		t.Errorf("len(Prefectures) = %d, want 47", len(Prefectures))
	}
	if !IsPrefecture("東京都") {
		t.Error("東京都 は都道府県として有効なはず")
	}
	if IsPrefecture("東京") {
		t.Error("東京 は都道府県として無効なはず")
	}
	if !IsTargetAge("小学生") || IsTargetAge("幼児") {
		t.Error("対象年齢の判定が不正")
	}
	if !IsAvailableDay("土曜日") || IsAvailableDay("土") {
		t.Error("曜日の判定が不正")
	}
}

func validClassroomInput() ClassroomInput {
	return ClassroomInput{
		Name:          "さくらピアノ教室",
		Description:   "初心者から上級者まで丁寧に指導します。",
		Prefecture:    "東京都",
		City:          "渋谷区",
		Email:         "info@sakura-piano.com",
		WebsiteURL:    "https://sakura-piano.com",
		TargetAges:    []string{"小学生", "大人"},
		AvailableDays: []string{"月曜日", "水曜日"},
	}
}

func TestClassroomInput_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *ClassroomInput)
		wantField string
	}{
		{"valid", func(in *ClassroomInput) {}, ""},
		{"missing_name", func(in *ClassroomInput) { in.Name = "" }, "name"},
		{"unknown_prefecture", func(in *ClassroomInput) { in.Prefecture = "東京" }, "prefecture"},
		{"bad_email", func(in *ClassroomInput) { in.Email = "not-an-email" }, "email"},
		{"bad_website", func(in *ClassroomInput) { in.WebsiteURL = "sakura piano" }, "website_url"},
		{"unknown_target_age", func(in *ClassroomInput) { in.TargetAges = []string{"幼児"} }, "target_ages[0]"},
		{"unknown_weekday", func(in *ClassroomInput) { in.AvailableDays = []string{"月曜日", "祝日"} }, "available_days[1]"},
		{"empty_optional_fields", func(in *ClassroomInput) {
			in.Prefecture, in.Email, in.WebsiteURL = "", "", ""
			in.TargetAges, in.AvailableDays = nil, nil
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validClassroomInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Validate() = %v, want *APIError", err)
			}
			if apiErr.Code != ErrCodeValidationFailed {
				t.Errorf("Code = %q, want %q", apiErr.Code, ErrCodeValidationFailed)
			}
			want := "入力内容に誤りがあります: " + tt.wantField
			if apiErr.Message != want {
				t.Errorf("Message = %q, want %q", apiErr.Message, want)
			}
		})
	}
}

func TestNewDraftClassroom_AlwaysDraft(t *testing.T) {
	now := time.Now()
	c, err := NewDraftClassroom("c-1", "owner-1", validClassroomInput(), now)
	if err != nil {
		t.Fatalf("NewDraftClassroom() error = %v", err)
	}
	if c.Status != ClassroomStatusDraft {
		t.Errorf("Status = %q, want %q", c.Status, ClassroomStatusDraft)
	}
	if c.OwnerID != "owner-1" || c.ID != "c-1" {
		t.Errorf("ID/OwnerID = %q/%q", c.ID, c.OwnerID)
	}
	if !c.CreatedAt.Equal(now) || !c.UpdatedAt.Equal(now) {
		t.Error("CreatedAt/UpdatedAt が now と一致しない")
	}
}

func TestNewDraftClassroom_NilSlicesBecomeEmpty(t *testing.T) {
	in := validClassroomInput()
	in.TargetAges = nil
	in.AvailableDays = nil

	c, err := NewDraftClassroom("c-1", "owner-1", in, time.Now())
	if err != nil {
		t.Fatalf("NewDraftClassroom() error = %v", err)
	}
	if c.TargetAges == nil || c.AvailableDays == nil {
		t.Error("nilスライスは空スライスに正規化されるべき")
	}
}

func TestNewDraftClassroom_InvalidInput(t *testing.T) {
	in := validClassroomInput()
	in.Name = ""
	if _, err := NewDraftClassroom("c-1", "owner-1", in, time.Now()); err == nil {
		t.Fatal("名前が空の入力でエラーが返らなかった")
	}
}

func TestInquiryInput_Validate(t *testing.T) {
	valid := InquiryInput{
		SenderName:  "山田 花子",
		SenderEmail: "hanako@example.com",
		Message:     "体験レッスンを希望します。",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	noMessage := valid
	noMessage.Message = ""
	if err := noMessage.Validate(); err == nil {
		t.Error("本文が空でもエラーにならなかった")
	}

	badEmail := valid
	badEmail.SenderEmail = "hanako"
	if err := badEmail.Validate(); err == nil {
		t.Error("不正なメールアドレスでもエラーにならなかった")
	}
}

func TestNewPaymentRequiredError_Message(t *testing.T) {
	err := NewPaymentRequiredError(500)
	want := "教室を公開するには月額掲載料（500円）のお支払いが必要です。"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if err.Code != ErrCodePaymentRequired {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodePaymentRequired)
	}
}
