// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/rediscover/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// TokenAuthenticator はAuthorizationヘッダー値からユーザーを特定するインターフェース。
// auth.Serviceの部分集合として定義する。
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, authHeader string) (*model.User, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのJWTを検証するミドルウェアを返す。
// 認証済みユーザーをリクエストコンテキストに注入する。
// 認証失敗の理由（ヘッダーなし、トークン不正、ユーザー不在）はログでのみ区別し、
// レスポンスは常に同一の401を返す。
// データストア障害はトークンの有効性を判定できないため、401ではなく500で応答する。
func NewAuthMiddleware(authenticator TokenAuthenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticator.AuthenticateToken(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if !errors.Is(err, model.ErrInvalidToken) {
					slog.Error("token authentication failed",
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
					return
				}
				slog.Debug("unauthorized request",
					slog.String("reason", err.Error()),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	user, err := UserFromContext(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
