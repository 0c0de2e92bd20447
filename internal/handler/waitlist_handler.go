package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/hitoshi/rediscover/internal/waitlist"
)

// WaitlistServiceInterface は待ちリストハンドラーが必要とするサービスインターフェース。
type WaitlistServiceInterface interface {
	Subscribe(ctx context.Context, email string) (*waitlist.SubscribeResult, error)
}

// WaitlistHandler は待ちリスト登録のHTTPハンドラー。
type WaitlistHandler struct {
	service WaitlistServiceInterface
}

// NewWaitlistHandler はWaitlistHandlerを生成する。
func NewWaitlistHandler(service WaitlistServiceInterface) *WaitlistHandler {
	return &WaitlistHandler{service: service}
}

// waitlistRequest は待ちリスト登録リクエストのボディ。
type waitlistRequest struct {
	Email string `json:"email"`
}

// waitlistResponse は待ちリスト登録のレスポンス。
type waitlistResponse struct {
	Message           string `json:"message"`
	Email             string `json:"email"`
	AlreadySubscribed bool   `json:"alreadySubscribed"`
}

// Subscribe はメールアドレスを待ちリストに登録する。
// POST /waitlist
func (h *WaitlistHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "リクエストボディの解析に失敗しました。")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeInvalidRequest(w, "有効なメールアドレスを指定してください。")
		return
	}

	result, err := h.service.Subscribe(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := "待ちリストに登録しました。"
	if result.AlreadySubscribed {
		message = "このメールアドレスは既に登録されています。"
	}

	writeJSON(w, http.StatusOK, waitlistResponse{
		Message:           message,
		Email:             result.Entry.Email,
		AlreadySubscribed: result.AlreadySubscribed,
	})
}
