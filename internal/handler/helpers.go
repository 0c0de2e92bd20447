// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/rediscover/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// authResponse はトークン発行を伴う認証APIのレスポンス。
type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// googleAuthResponse はGoogle OAuthコールバックのレスポンス。
// 新規アカウント作成かログインかをクライアントに伝える。
type googleAuthResponse struct {
	authResponse
	IsNewUser bool `json:"is_new_user"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidRequest はリクエスト形式不正のエラーレスポンスを書き込む。
func writeInvalidRequest(w http.ResponseWriter, message string) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  message,
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// センチネルエラーは統一エラーフォーマットに、それ以外は内部エラーとして扱う。
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		writeAPIErrorResponse(w, http.StatusConflict, model.NewEmailTakenError())
	case errors.Is(err, model.ErrInvalidInvite):
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInviteError())
	case errors.Is(err, model.ErrInvalidCredentials):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
	case errors.Is(err, model.ErrInvalidToken):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
	case errors.Is(err, model.ErrProviderAuthFailed):
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewProviderAuthFailedError())
	case errors.Is(err, model.ErrCityNotEnabled):
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewCityNotEnabledError())
	case errors.Is(err, model.ErrLocationNotFound):
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewLocationNotFoundError(""))
	default:
		slog.Error("internal server error", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
			Code:     model.ErrCodeInternal,
			Message:  "内部エラーが発生しました。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
	}
}
