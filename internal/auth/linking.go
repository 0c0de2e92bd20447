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

// LinkingService はGoogleアカウントとサービスアカウントの紐付けを管理する。
type LinkingService struct {
	oauth      OAuthProvider
	userRepo   repository.UserRepository
	googleRepo repository.GoogleAuthRepository
	tokens     *TokenService
	metrics    *metrics.Collector
}

// NewLinkingService はLinkingServiceを生成する。
func NewLinkingService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	googleRepo repository.GoogleAuthRepository,
	tokens *TokenService,
	collector *metrics.Collector,
) *LinkingService {
	return &LinkingService{
		oauth:      oauth,
		userRepo:   userRepo,
		googleRepo: googleRepo,
		tokens:     tokens,
		metrics:    collector,
	}
}

// GetLoginURL はGoogle OAuthの認証URLを生成する。
func (s *LinkingService) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// GoogleAuthResult はGoogleログインの結果。
type GoogleAuthResult struct {
	User      *model.User
	Token     string
	IsNewUser bool
}

// HandleCallback はGoogle OAuthコールバックを処理し、トークンを発行する。
// ユーザーの特定は次の順で行う:
//  1. google_id既存紐付け → トークンを最新値で上書きしてログイン
//  2. 同じメールアドレスの既存ユーザー → そのユーザーに紐付けを作成（マージ）
//  3. どちらもなし → パスワードなしユーザーを新規作成して紐付け
func (s *LinkingService) HandleCallback(ctx context.Context, code string) (*GoogleAuthResult, error) {
	profile, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.metrics.RecordAuthFailure("google")
		return nil, err
	}

	user, isNewUser, err := s.findOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordAuthSuccess("google")

	return &GoogleAuthResult{User: user, Token: token, IsNewUser: isNewUser}, nil
}

// findOrCreateUser はGoogleプロフィールからユーザーを特定または作成する。
func (s *LinkingService) findOrCreateUser(ctx context.Context, profile *GoogleProfile) (*model.User, bool, error) {
	// 1. 既存の紐付けを検索
	link, err := s.googleRepo.FindByGoogleID(ctx, profile.GoogleID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find google link: %w", err)
	}

	if link != nil {
		if err := s.refreshLink(ctx, link, profile); err != nil {
			return nil, false, err
		}

		user, err := s.userRepo.FindByID(ctx, link.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to find linked user: %w", err)
		}
		if user == nil {
			return nil, false, fmt.Errorf("linked user not found: %s", link.UserID)
		}

		slog.Info("google user logged in", slog.String("user_id", user.ID))
		return user, false, nil
	}

	// 2. 同じメールアドレスの既存ユーザーを検索（パスワード登録済みアカウントへのマージ）
	email := NormalizeEmail(profile.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user by email: %w", err)
	}

	isNewUser := false
	if user == nil {
		// 3. パスワードなしユーザーを新規作成
		now := time.Now()
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			// 並行リクエストが同じメールで作成した場合は既存ユーザーを使う
			if errors.Is(err, repository.ErrDuplicate) {
				user, err = s.userRepo.FindByEmail(ctx, email)
				if err != nil {
					return nil, false, fmt.Errorf("failed to re-read user: %w", err)
				}
				if user == nil {
					return nil, false, fmt.Errorf("user vanished after duplicate insert: %s", email)
				}
			} else {
				return nil, false, fmt.Errorf("failed to create user: %w", err)
			}
		} else {
			isNewUser = true
			slog.Info("new google user created", slog.String("user_id", user.ID))
		}
	} else {
		slog.Info("google account merged into existing user", slog.String("user_id", user.ID))
	}

	if err := s.createLink(ctx, user.ID, profile); err != nil {
		return nil, false, err
	}

	return user, isNewUser, nil
}

// refreshLink は既存紐付けのトークンと表示属性を最新値で上書きする。
func (s *LinkingService) refreshLink(ctx context.Context, link *model.GoogleAuth, profile *GoogleProfile) error {
	link.Email = NormalizeEmail(profile.Email)
	link.Name = profile.Name
	link.Picture = profile.Picture
	link.AccessToken = profile.AccessToken
	// refresh_tokenは初回同意時のみ返るため、空の場合は既存値を保持する
	if profile.RefreshToken != "" {
		link.RefreshToken = profile.RefreshToken
	}
	link.UpdatedAt = time.Now()

	if err := s.googleRepo.UpdateTokens(ctx, link); err != nil {
		return fmt.Errorf("failed to refresh google link: %w", err)
	}
	return nil
}

// createLink は紐付けを作成する。並行リクエストが先に作成していた場合は
// 既存紐付けを読み直してトークン上書きにフォールバックする。
func (s *LinkingService) createLink(ctx context.Context, userID string, profile *GoogleProfile) error {
	now := time.Now()
	link := &model.GoogleAuth{
		ID:           uuid.New().String(),
		UserID:       userID,
		GoogleID:     profile.GoogleID,
		Email:        NormalizeEmail(profile.Email),
		Name:         profile.Name,
		Picture:      profile.Picture,
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.googleRepo.Create(ctx, link)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, err := s.googleRepo.FindByGoogleID(ctx, profile.GoogleID)
		if err != nil {
			return fmt.Errorf("failed to re-read google link: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("google link vanished after duplicate insert: %s", profile.GoogleID)
		}
		return s.refreshLink(ctx, existing, profile)
	}
	if err != nil {
		return fmt.Errorf("failed to create google link: %w", err)
	}
	return nil
}
