package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/rediscover/internal/metrics"
	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
)

// Service はアカウント登録、ログイン、トークン認証のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	invites  *InviteService
	tokens   *TokenService
	metrics  *metrics.Collector
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	invites *InviteService,
	tokens *TokenService,
	collector *metrics.Collector,
) *Service {
	return &Service{
		userRepo: userRepo,
		invites:  invites,
		tokens:   tokens,
		metrics:  collector,
	}
}

// AuthResult はログインまたは登録の結果。
type AuthResult struct {
	User  *model.User
	Token string
}

// Register は招待コードによる新規登録を行い、トークンを発行する。
// メールアドレスの重複チェックを先に行い、その後に招待コードを検証する。
// 登録完了後の招待削除が失敗しても登録自体は成功扱いにする。
func (s *Service) Register(ctx context.Context, email, password, inviteCode string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		s.metrics.RecordAuthFailure("register")
		return nil, model.ErrEmailTaken
	}

	if _, err := s.invites.ValidateInvite(ctx, email, inviteCode); err != nil {
		if errors.Is(err, model.ErrInvalidInvite) {
			s.metrics.RecordAuthFailure("register")
		}
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 重複チェック後に他のリクエストが同じメールで登録した場合
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordAuthFailure("register")
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.invites.ConsumeInvite(ctx, email); err != nil {
		slog.Warn("failed to consume invite after registration",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordAuthSuccess("register")
	slog.Info("user registered", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// Login はメールアドレスとパスワードでログインし、トークンを発行する。
// ユーザー不在、パスワード未設定（OAuth専用アカウント）、パスワード不一致は
// いずれも同一のErrInvalidCredentialsを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.HasPassword() || !VerifyPassword(user.PasswordHash, password) {
		s.metrics.RecordAuthFailure("login")
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordAuthSuccess("login")
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// AuthenticateToken はAuthorizationヘッダー値からユーザーを特定する。
// ヘッダー空、トークン不正、ユーザー不在はいずれもErrInvalidTokenをラップした
// エラーを返す。区別はログでのみ行う。
func (s *Service) AuthenticateToken(ctx context.Context, authHeader string) (*model.User, error) {
	if authHeader == "" {
		return nil, fmt.Errorf("%w: missing authorization header", model.ErrInvalidToken)
	}

	claims, err := s.tokens.Verify(ExtractBearerToken(authHeader))
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		// ストア障害ではトークンの有効性を判定できない
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", model.ErrInvalidToken)
	}

	return user, nil
}

// GetUserByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (s *Service) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
