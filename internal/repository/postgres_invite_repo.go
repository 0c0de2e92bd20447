package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/rediscover/internal/model"
)

// PostgresInviteRepo はPostgreSQLを使用した招待リポジトリ。
type PostgresInviteRepo struct {
	db *sql.DB
}

// NewPostgresInviteRepo はPostgresInviteRepoを生成する。
func NewPostgresInviteRepo(db *sql.DB) *PostgresInviteRepo {
	return &PostgresInviteRepo{db: db}
}

// FindByEmail はメールアドレスで招待を検索する。見つからない場合はnilを返す。
func (r *PostgresInviteRepo) FindByEmail(ctx context.Context, email string) (*model.Invite, error) {
	invite := &model.Invite{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, code, created_at FROM invites WHERE email = $1`,
		email,
	).Scan(&invite.ID, &invite.Email, &invite.Code, &invite.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invite by email: %w", err)
	}

	return invite, nil
}

// FindByCode は招待コードで招待を検索する。見つからない場合はnilを返す。
func (r *PostgresInviteRepo) FindByCode(ctx context.Context, code string) (*model.Invite, error) {
	invite := &model.Invite{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, code, created_at FROM invites WHERE code = $1`,
		code,
	).Scan(&invite.ID, &invite.Email, &invite.Code, &invite.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invite by code: %w", err)
	}

	return invite, nil
}

// Create は招待を作成する。
// メールアドレスの一意制約違反の場合はErrDuplicateEmailを、
// コードの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
// 呼び出し側はメール重複（同時発行）とコード衝突（再生成で回復可能）を区別できる。
func (r *PostgresInviteRepo) Create(ctx context.Context, invite *model.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (id, email, code, created_at)
		 VALUES ($1, $2, $3, $4)`,
		invite.ID, invite.Email, invite.Code, invite.CreatedAt,
	)
	if isUniqueViolationOn(err, "invites_email_key") {
		return fmt.Errorf("invite email already exists: %w", ErrDuplicateEmail)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("invite code already exists: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// DeleteByEmail は指定メールアドレスの招待を削除する。
// 該当行が存在しなくてもエラーにしない（冪等）。
func (r *PostgresInviteRepo) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invites WHERE email = $1`,
		email,
	)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return nil
}

// compile-time interface check
var _ InviteRepository = (*PostgresInviteRepo)(nil)
