package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/rediscover/internal/auth"
	"github.com/hitoshi/rediscover/internal/middleware"
	"github.com/hitoshi/rediscover/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, inviteCode string) (*auth.AuthResult, error)
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
}

// GoogleAuthServiceInterface はGoogle認証ハンドラーが必要とするサービスインターフェース。
type GoogleAuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*auth.GoogleAuthResult, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service       AuthServiceInterface
	googleService GoogleAuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, googleService GoogleAuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service:       service,
		googleService: googleService,
	}
}

// registerRequest は登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// googleCallbackRequest はGoogle OAuthコールバックのボディ。
type googleCallbackRequest struct {
	Code string `json:"code"`
}

// Register は招待コード付きのアカウント登録を処理する。
// POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "リクエストボディの解析に失敗しました。")
		return
	}
	if req.Email == "" || req.Password == "" || req.Code == "" {
		writeInvalidRequest(w, "email、password、codeは必須です。")
		return
	}

	result, err := h.service.Register(r.Context(), req.Email, req.Password, req.Code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result.User, result.Token))
}

// Login はメールアドレスとパスワードによるログインを処理する。
// POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "リクエストボディの解析に失敗しました。")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result.User, result.Token))
}

// GoogleLogin はGoogle OAuthフローを開始する。
// GET /v1/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
			Code:     model.ErrCodeInternal,
			Message:  "内部エラーが発生しました。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
		return
	}

	http.Redirect(w, r, h.googleService.GetLoginURL(state), http.StatusFound)
}

// GoogleCallback はGoogle OAuthの認可コードを処理してトークンを返す。
// POST /v1/auth/google
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req googleCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "リクエストボディの解析に失敗しました。")
		return
	}
	if req.Code == "" {
		writeInvalidRequest(w, "codeは必須です。")
		return
	}

	result, err := h.googleService.HandleCallback(r.Context(), req.Code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, googleAuthResponse{
		authResponse: toAuthResponse(result.User, result.Token),
		IsNewUser:    result.IsNewUser,
	})
}

// Me は認証済みユーザー自身の情報を返す。
// GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

// toAuthResponse はユーザーとトークンをAPIレスポンスに変換する。
func toAuthResponse(user *model.User, token string) authResponse {
	return authResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email},
	}
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
