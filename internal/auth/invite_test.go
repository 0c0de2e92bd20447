package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
)

// TestGenerateInviteCode_Format は招待コードが8文字の[a-z0-9]であることを検証する。
func TestGenerateInviteCode_Format(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateInviteCode()
		if err != nil {
			t.Fatalf("generateInviteCode failed: %v", err)
		}
		if len(code) != inviteCodeLength {
			t.Fatalf("code length = %d, want %d", len(code), inviteCodeLength)
		}
		for _, ch := range code {
			if !strings.ContainsRune(inviteCodeAlphabet, ch) {
				t.Fatalf("code %q contains invalid character %q", code, ch)
			}
		}
	}
}

// TestCreateInvite_Success は招待が正常に発行されることを検証する。
func TestCreateInvite_Success(t *testing.T) {
	var created *model.Invite
	repo := &mockInviteRepo{
		createFn: func(ctx context.Context, invite *model.Invite) error {
			created = invite
			return nil
		},
	}
	svc := NewInviteService(repo)

	invite, err := svc.CreateInvite(context.Background(), "Taro@Example.com")
	if err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	if invite.Email != "taro@example.com" {
		t.Errorf("email = %q, want normalized %q", invite.Email, "taro@example.com")
	}
	if len(invite.Code) != inviteCodeLength {
		t.Errorf("code length = %d, want %d", len(invite.Code), inviteCodeLength)
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
}

// TestCreateInvite_DuplicateEmail は既に有効な招待がある場合にErrDuplicateInviteを返すことを検証する。
func TestCreateInvite_DuplicateEmail(t *testing.T) {
	repo := &mockInviteRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Invite, error) {
			return &model.Invite{ID: "invite-1", Email: email, Code: "abcd1234"}, nil
		},
	}
	svc := NewInviteService(repo)

	if _, err := svc.CreateInvite(context.Background(), "taro@example.com"); !errors.Is(err, model.ErrDuplicateInvite) {
		t.Errorf("expected ErrDuplicateInvite, got %v", err)
	}
}

// TestCreateInvite_ConcurrentDuplicateEmail は事前チェックをすり抜けた
// 同一メールへの同時発行がリトライされずに重複エラーになることを検証する。
func TestCreateInvite_ConcurrentDuplicateEmail(t *testing.T) {
	attempts := 0
	repo := &mockInviteRepo{
		createFn: func(ctx context.Context, invite *model.Invite) error {
			attempts++
			return fmt.Errorf("invite email already exists: %w", repository.ErrDuplicateEmail)
		},
	}
	svc := NewInviteService(repo)

	if _, err := svc.CreateInvite(context.Background(), "taro@example.com"); !errors.Is(err, model.ErrDuplicateInvite) {
		t.Errorf("expected ErrDuplicateInvite, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

// TestCreateInvite_CodeCollisionRetries はコード衝突時に再生成してリトライすることを検証する。
func TestCreateInvite_CodeCollisionRetries(t *testing.T) {
	attempts := 0
	repo := &mockInviteRepo{
		createFn: func(ctx context.Context, invite *model.Invite) error {
			attempts++
			if attempts < 3 {
				return fmt.Errorf("invite code collision: %w", repository.ErrDuplicate)
			}
			return nil
		},
	}
	svc := NewInviteService(repo)

	invite, err := svc.CreateInvite(context.Background(), "taro@example.com")
	if err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}
	if invite == nil {
		t.Fatal("expected invite after retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

// TestCreateInvite_CodeGenerationExhausted は衝突が続く場合に上限で打ち切ることを検証する。
func TestCreateInvite_CodeGenerationExhausted(t *testing.T) {
	attempts := 0
	repo := &mockInviteRepo{
		createFn: func(ctx context.Context, invite *model.Invite) error {
			attempts++
			return fmt.Errorf("invite code collision: %w", repository.ErrDuplicate)
		},
	}
	svc := NewInviteService(repo)

	if _, err := svc.CreateInvite(context.Background(), "taro@example.com"); !errors.Is(err, model.ErrCodeGenerationExhausted) {
		t.Errorf("expected ErrCodeGenerationExhausted, got %v", err)
	}
	if attempts != inviteCodeMaxAttempts {
		t.Errorf("attempts = %d, want %d", attempts, inviteCodeMaxAttempts)
	}
}

// TestValidateInvite_Success は正しいコードとメールアドレスの組で検証が通ることを検証する。
func TestValidateInvite_Success(t *testing.T) {
	repo := &mockInviteRepo{
		findByCodeFn: func(ctx context.Context, code string) (*model.Invite, error) {
			if code != "abcd1234" {
				return nil, nil
			}
			return &model.Invite{ID: "invite-1", Email: "taro@example.com", Code: code}, nil
		},
	}
	svc := NewInviteService(repo)

	// コードとメールアドレスは正規化されてから照合される
	invite, err := svc.ValidateInvite(context.Background(), "Taro@Example.com", " ABCD1234 ")
	if err != nil {
		t.Fatalf("ValidateInvite failed: %v", err)
	}
	if invite.ID != "invite-1" {
		t.Errorf("invite ID = %q, want %q", invite.ID, "invite-1")
	}
}

// TestValidateInvite_UnknownCode は不明なコードがErrInvalidInviteになることを検証する。
func TestValidateInvite_UnknownCode(t *testing.T) {
	svc := NewInviteService(&mockInviteRepo{})

	if _, err := svc.ValidateInvite(context.Background(), "taro@example.com", "unknown1"); !errors.Is(err, model.ErrInvalidInvite) {
		t.Errorf("expected ErrInvalidInvite, got %v", err)
	}
}

// TestValidateInvite_EmailMismatch は他人宛てのコードがErrInvalidInviteになることを検証する。
func TestValidateInvite_EmailMismatch(t *testing.T) {
	repo := &mockInviteRepo{
		findByCodeFn: func(ctx context.Context, code string) (*model.Invite, error) {
			return &model.Invite{ID: "invite-1", Email: "hanako@example.com", Code: code}, nil
		},
	}
	svc := NewInviteService(repo)

	if _, err := svc.ValidateInvite(context.Background(), "taro@example.com", "abcd1234"); !errors.Is(err, model.ErrInvalidInvite) {
		t.Errorf("expected ErrInvalidInvite, got %v", err)
	}
}

// TestConsumeInvite_Idempotent は削除対象がなくてもエラーにならないことを検証する。
func TestConsumeInvite_Idempotent(t *testing.T) {
	deleted := ""
	repo := &mockInviteRepo{
		deleteByEmailFn: func(ctx context.Context, email string) error {
			deleted = email
			return nil
		},
	}
	svc := NewInviteService(repo)

	if err := svc.ConsumeInvite(context.Background(), "Taro@Example.com"); err != nil {
		t.Fatalf("ConsumeInvite failed: %v", err)
	}
	if deleted != "taro@example.com" {
		t.Errorf("deleted email = %q, want normalized %q", deleted, "taro@example.com")
	}
}

// TestNormalizeEmail は小文字化とトリムを検証する。
func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Taro@Example.COM "); got != "taro@example.com" {
		t.Errorf("NormalizeEmail = %q, want %q", got, "taro@example.com")
	}
}
