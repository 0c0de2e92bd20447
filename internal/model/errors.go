package model

import (
	"errors"
	"fmt"
)

// 業務上の確定結果を表すセンチネルエラー。
// サービス層はストレージやネットワークの生エラーをハンドラーに漏らさず、
// 必ずこのいずれか（または%wでラップしたもの）に変換して返す。
var (
	// ErrEmailTaken は登録済みメールアドレスでの登録試行を表す。
	// 事前チェックとINSERT時の一意制約違反の両方がこのエラーに収束する。
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidInvite は招待コードの検証失敗を表す。
	// 招待が存在しない・メールが違う・コードが違うは区別しない。
	ErrInvalidInvite = errors.New("invalid invite code for this email")

	// ErrDuplicateInvite は同一メールアドレスへの招待の重複作成を表す。
	ErrDuplicateInvite = errors.New("invite already exists for this email")

	// ErrCodeGenerationExhausted は招待コード生成の衝突リトライ上限超過を表す。
	ErrCodeGenerationExhausted = errors.New("failed to generate unique invite code")

	// ErrInvalidCredentials はログイン失敗を表す。
	// ユーザー不存在・パスワード未設定・パスワード不一致は区別しない
	// （アカウント列挙を防ぐため）。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken は認証トークンの検証失敗を表す。
	// 不正な形式・署名不一致・期限切れ・userIdクレーム欠落のすべてを含む。
	ErrInvalidToken = errors.New("invalid auth token")

	// ErrProviderAuthFailed はOAuthプロバイダーとのトークン交換・
	// プロフィール取得の失敗を表す。
	ErrProviderAuthFailed = errors.New("provider authentication failed")

	// ErrStoreUnavailable はデータストアへの接続障害を表す。
	// 唯一リクエスト致命として扱い、一般的なサーバーエラーで応答する。
	ErrStoreUnavailable = errors.New("data store unavailable")

	// ErrCityNotEnabled は指定座標が公開対象都市の範囲外であることを表す。
	ErrCityNotEnabled = errors.New("location is not in an enabled city")

	// ErrLocationNotFound はリバースジオコーディングで住所が得られなかったことを表す。
	ErrLocationNotFound = errors.New("no address found for coordinates")
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, location, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidInvite      = "INVALID_INVITE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeProviderAuthFailed = "PROVIDER_AUTH_FAILED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeCityNotEnabled     = "CITY_NOT_ENABLED"
	ErrCodeLocationNotFound   = "LOCATION_NOT_FOUND"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewEmailTakenError は登録済みメールアドレスエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewInvalidInviteError は招待コード検証失敗エラーを生成する。
func NewInvalidInviteError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInvite,
		Message:  "このメールアドレスに対する招待コードが正しくありません。",
		Category: "auth",
		Action:   "招待メールに記載されたコードとメールアドレスの組み合わせを確認してください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// どの要素が誤っていたかは意図的に明かさない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は認証必須エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewProviderAuthFailedError はOAuth認証失敗エラーを生成する。
func NewProviderAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeProviderAuthFailed,
		Message:  "Google認証に失敗しました。",
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewCityNotEnabledError は対象都市範囲外エラーを生成する。
func NewCityNotEnabledError() *APIError {
	return &APIError{
		Code:     ErrCodeCityNotEnabled,
		Message:  "現在地はまだサービス対象の都市ではありません。",
		Category: "location",
		Action:   "対象都市の一覧は /v1/cities で確認できます。",
	}
}

// NewLocationNotFoundError は位置情報未検出エラーを生成する。
func NewLocationNotFoundError(geohash string) *APIError {
	return &APIError{
		Code:     ErrCodeLocationNotFound,
		Message:  fmt.Sprintf("指定された位置の情報が見つかりません: %s", geohash),
		Category: "location",
		Action:   "先に /v1/locate で位置を解決してください。",
	}
}
