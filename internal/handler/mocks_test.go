package handler

import (
	"context"

	"github.com/hitoshi/rediscover/internal/auth"
	"github.com/hitoshi/rediscover/internal/cityfilter"
	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/waitlist"
)

// mockAuthService はAuthServiceInterfaceのテスト用モック。
type mockAuthService struct {
	registerFunc func(ctx context.Context, email, password, inviteCode string) (*auth.AuthResult, error)
	loginFunc    func(ctx context.Context, email, password string) (*auth.AuthResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, inviteCode string) (*auth.AuthResult, error) {
	return m.registerFunc(ctx, email, password, inviteCode)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.AuthResult, error) {
	return m.loginFunc(ctx, email, password)
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

// mockGoogleService はGoogleAuthServiceInterfaceのテスト用モック。
type mockGoogleService struct {
	getLoginURLFunc    func(state string) string
	handleCallbackFunc func(ctx context.Context, code string) (*auth.GoogleAuthResult, error)
}

func (m *mockGoogleService) GetLoginURL(state string) string {
	return m.getLoginURLFunc(state)
}

func (m *mockGoogleService) HandleCallback(ctx context.Context, code string) (*auth.GoogleAuthResult, error) {
	return m.handleCallbackFunc(ctx, code)
}

var _ GoogleAuthServiceInterface = (*mockGoogleService)(nil)

// mockGeoService はGeoServiceInterfaceのテスト用モック。
type mockGeoService struct {
	locateFunc       func(ctx context.Context, lat, lng float64) (*model.Location, error)
	getByGeohashFunc func(ctx context.Context, gh string) (*model.Location, error)
}

func (m *mockGeoService) Locate(ctx context.Context, lat, lng float64) (*model.Location, error) {
	return m.locateFunc(ctx, lat, lng)
}

func (m *mockGeoService) GetByGeohash(ctx context.Context, gh string) (*model.Location, error) {
	return m.getByGeohashFunc(ctx, gh)
}

var _ GeoServiceInterface = (*mockGeoService)(nil)

// mockNarrativeService はNarrativeServiceInterfaceのテスト用モック。
type mockNarrativeService struct {
	getInfoFunc func(ctx context.Context, location *model.Location) (*model.LocationInfo, error)
}

func (m *mockNarrativeService) GetInfo(ctx context.Context, location *model.Location) (*model.LocationInfo, error) {
	return m.getInfoFunc(ctx, location)
}

var _ NarrativeServiceInterface = (*mockNarrativeService)(nil)

// mockWaitlistService はWaitlistServiceInterfaceのテスト用モック。
type mockWaitlistService struct {
	subscribeFunc func(ctx context.Context, email string) (*waitlist.SubscribeResult, error)
}

func (m *mockWaitlistService) Subscribe(ctx context.Context, email string) (*waitlist.SubscribeResult, error) {
	return m.subscribeFunc(ctx, email)
}

var _ WaitlistServiceInterface = (*mockWaitlistService)(nil)

// stubCityFilter は都市判定と一覧のテスト用スタブ。
type stubCityFilter struct {
	enabled bool
	cities  []cityfilter.CitySummary
}

func (s *stubCityFilter) IsEnabled(lat, lng float64) bool {
	return s.enabled
}

func (s *stubCityFilter) List() []cityfilter.CitySummary {
	return s.cities
}

// stubHealthChecker は疎通確認のテスト用スタブ。
type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) Ping() error {
	return s.err
}
