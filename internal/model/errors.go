// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, classroom, payment, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeInvalidStatus          = "INVALID_STATUS"
	ErrCodeInvalidFilter          = "INVALID_FILTER"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodePaymentRequired        = "PAYMENT_REQUIRED"
	ErrCodeClassroomNotFound      = "CLASSROOM_NOT_FOUND"
	ErrCodeClassroomAlreadyExists = "CLASSROOM_ALREADY_EXISTS"
	ErrCodeSubscriptionNotFound   = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeInquiryNotFound        = "INQUIRY_NOT_FOUND"
	ErrCodeInvalidSignature       = "INVALID_SIGNATURE"
	ErrCodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認証情報が無い・無効な場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は操作対象の所有者ではない場合のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "教室のオーナーアカウントでログインしてください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析に失敗した場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidStatusError は公開切替で指定できない状態が指定された場合のエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには published または draft を指定してください。",
	}
}

// NewInvalidFilterError は検索条件に未定義の値が指定された場合のエラーを生成する。
func NewInvalidFilterError(field, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効な検索条件です: %s=%s", field, value),
		Category: "validation",
		Action:   "選択肢の中から検索条件を指定してください。",
	}
}

// NewValidationError は入力値の検証に失敗した場合のエラーを生成する。
func NewValidationError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", field),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewPaymentRequiredError は掲載料の支払いが確認できず公開できない場合のエラーを生成する。
func NewPaymentRequiredError(feeYen int) *APIError {
	return &APIError{
		Code:     ErrCodePaymentRequired,
		Message:  fmt.Sprintf("教室を公開するには月額掲載料（%d円）のお支払いが必要です。", feeYen),
		Category: "payment",
		Action:   "サブスクリプション画面から月額掲載料のお支払いを完了してください。",
	}
}

// NewClassroomNotFoundError は教室が見つからない場合のエラーを生成する。
func NewClassroomNotFoundError(classroomID string) *APIError {
	return &APIError{
		Code:     ErrCodeClassroomNotFound,
		Message:  fmt.Sprintf("指定された教室が見つかりません: %s", classroomID),
		Category: "classroom",
		Action:   "教室IDを確認してください。",
	}
}

// NewClassroomNotRegisteredError はオーナーがまだ教室を登録していない場合のエラーを生成する。
func NewClassroomNotRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeClassroomNotFound,
		Message:  "教室が登録されていません。",
		Category: "classroom",
		Action:   "先に教室情報を登録してください。",
	}
}

// NewClassroomAlreadyExistsError は2つ目の教室を登録しようとした場合のエラーを生成する。
func NewClassroomAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeClassroomAlreadyExists,
		Message:  "教室は既に登録されています。",
		Category: "classroom",
		Action:   "登録済みの教室情報を編集してください。",
	}
}

// NewSubscriptionNotFoundError は掲載契約が見つからない場合のエラーを生成する。
func NewSubscriptionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionNotFound,
		Message:  "掲載契約が見つかりません。",
		Category: "payment",
		Action:   "月額掲載料のお支払いを開始してください。",
	}
}

// NewInquiryNotFoundError は問い合わせが見つからない場合のエラーを生成する。
func NewInquiryNotFoundError(inquiryID string) *APIError {
	return &APIError{
		Code:     ErrCodeInquiryNotFound,
		Message:  fmt.Sprintf("指定された問い合わせが見つかりません: %s", inquiryID),
		Category: "classroom",
		Action:   "問い合わせIDを確認してください。",
	}
}

// NewInvalidSignatureError はWebhook署名の検証に失敗した場合のエラーを生成する。
func NewInvalidSignatureError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSignature,
		Message:  "署名の検証に失敗しました。",
		Category: "payment",
		Action:   "Webhookシークレットの設定を確認してください。",
	}
}

// NewRateLimitError はレート制限を超えた場合のエラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。しばらくしてから再度お試しください。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再試行してください。",
	}
}

// NewInternalError は原因を利用者に開示しない内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
