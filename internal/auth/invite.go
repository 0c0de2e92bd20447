package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
)

const (
	inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	inviteCodeLength   = 8
	// コード衝突時の再生成上限。36^8の空間に対して十分な回数。
	inviteCodeMaxAttempts = 10
)

// InviteService は招待の発行、検証、消費を行う。
type InviteService struct {
	inviteRepo repository.InviteRepository
}

// NewInviteService はInviteServiceを生成する。
func NewInviteService(inviteRepo repository.InviteRepository) *InviteService {
	return &InviteService{inviteRepo: inviteRepo}
}

// CreateInvite は指定メールアドレスへの招待を発行する。
// 同じメールアドレスに有効な招待が既にある場合はErrDuplicateInviteを返す。
func (s *InviteService) CreateInvite(ctx context.Context, email string) (*model.Invite, error) {
	email = NormalizeEmail(email)

	existing, err := s.inviteRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invite: %w", err)
	}
	if existing != nil {
		return nil, model.ErrDuplicateInvite
	}

	// コード衝突時は再生成してリトライする
	for attempt := 0; attempt < inviteCodeMaxAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		invite := &model.Invite{
			ID:        uuid.New().String(),
			Email:     email,
			Code:      code,
			CreatedAt: time.Now(),
		}

		err = s.inviteRepo.Create(ctx, invite)
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// 事前チェックとレースした同一メールへの同時発行。再生成では回復しない
			return nil, model.ErrDuplicateInvite
		}
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create invite: %w", err)
		}

		slog.Info("invite created", slog.String("email", email))
		return invite, nil
	}

	return nil, model.ErrCodeGenerationExhausted
}

// ValidateInvite は招待コードが指定メールアドレス宛てに有効かを検証する。
// コード不明、またはメールアドレス不一致の場合はErrInvalidInviteを返す。
func (s *InviteService) ValidateInvite(ctx context.Context, email, code string) (*model.Invite, error) {
	email = NormalizeEmail(email)
	code = strings.ToLower(strings.TrimSpace(code))

	invite, err := s.inviteRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	if invite == nil || invite.Email != email {
		return nil, model.ErrInvalidInvite
	}

	return invite, nil
}

// ConsumeInvite は登録完了した招待を削除する。
// 既に削除済みでもエラーにしない（冪等）。
func (s *InviteService) ConsumeInvite(ctx context.Context, email string) error {
	if err := s.inviteRepo.DeleteByEmail(ctx, NormalizeEmail(email)); err != nil {
		return fmt.Errorf("failed to consume invite: %w", err)
	}
	return nil
}

// GetInviteByEmail はメールアドレス宛ての有効な招待を取得する。見つからない場合はnilを返す。
func (s *InviteService) GetInviteByEmail(ctx context.Context, email string) (*model.Invite, error) {
	invite, err := s.inviteRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find invite by email: %w", err)
	}
	return invite, nil
}

// NormalizeEmail はメールアドレスを小文字化しトリムする。
// 保存、検索は常にこの正規化形で行う。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateInviteCode は[a-z0-9]からなる8文字の招待コードを生成する。
func generateInviteCode() (string, error) {
	b := make([]byte, inviteCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = inviteCodeAlphabet[int(b[i])%len(inviteCodeAlphabet)]
	}
	return string(b), nil
}
