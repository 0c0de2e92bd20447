package auth

import (
	"context"

	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
)

// mockUserRepo はテスト用のUserRepository実装。
type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// mockInviteRepo はテスト用のInviteRepository実装。
type mockInviteRepo struct {
	findByEmailFn   func(ctx context.Context, email string) (*model.Invite, error)
	findByCodeFn    func(ctx context.Context, code string) (*model.Invite, error)
	createFn        func(ctx context.Context, invite *model.Invite) error
	deleteByEmailFn func(ctx context.Context, email string) error
}

func (m *mockInviteRepo) FindByEmail(ctx context.Context, email string) (*model.Invite, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockInviteRepo) FindByCode(ctx context.Context, code string) (*model.Invite, error) {
	if m.findByCodeFn != nil {
		return m.findByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockInviteRepo) Create(ctx context.Context, invite *model.Invite) error {
	if m.createFn != nil {
		return m.createFn(ctx, invite)
	}
	return nil
}

func (m *mockInviteRepo) DeleteByEmail(ctx context.Context, email string) error {
	if m.deleteByEmailFn != nil {
		return m.deleteByEmailFn(ctx, email)
	}
	return nil
}

var _ repository.InviteRepository = (*mockInviteRepo)(nil)

// mockGoogleAuthRepo はテスト用のGoogleAuthRepository実装。
type mockGoogleAuthRepo struct {
	findByGoogleIDFn func(ctx context.Context, googleID string) (*model.GoogleAuth, error)
	createFn         func(ctx context.Context, ga *model.GoogleAuth) error
	updateTokensFn   func(ctx context.Context, ga *model.GoogleAuth) error
}

func (m *mockGoogleAuthRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.GoogleAuth, error) {
	if m.findByGoogleIDFn != nil {
		return m.findByGoogleIDFn(ctx, googleID)
	}
	return nil, nil
}

func (m *mockGoogleAuthRepo) Create(ctx context.Context, ga *model.GoogleAuth) error {
	if m.createFn != nil {
		return m.createFn(ctx, ga)
	}
	return nil
}

func (m *mockGoogleAuthRepo) UpdateTokens(ctx context.Context, ga *model.GoogleAuth) error {
	if m.updateTokensFn != nil {
		return m.updateTokensFn(ctx, ga)
	}
	return nil
}

var _ repository.GoogleAuthRepository = (*mockGoogleAuthRepo)(nil)

// mockOAuthProvider はテスト用のOAuthProvider実装。
type mockOAuthProvider struct {
	getLoginURLFn  func(state string) string
	exchangeCodeFn func(ctx context.Context, code string) (*GoogleProfile, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*GoogleProfile, error) {
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return nil, nil
}

var _ OAuthProvider = (*mockOAuthProvider)(nil)
