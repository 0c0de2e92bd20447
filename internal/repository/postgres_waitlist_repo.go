package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/rediscover/internal/model"
)

// PostgresWaitlistRepo はPostgreSQLを使用した待ちリストリポジトリ。
type PostgresWaitlistRepo struct {
	db *sql.DB
}

// NewPostgresWaitlistRepo はPostgresWaitlistRepoを生成する。
func NewPostgresWaitlistRepo(db *sql.DB) *PostgresWaitlistRepo {
	return &PostgresWaitlistRepo{db: db}
}

// FindByEmail はメールアドレスで登録を検索する。見つからない場合はnilを返す。
func (r *PostgresWaitlistRepo) FindByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	entry := &model.WaitlistEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT email, created_at FROM waitlist WHERE email = $1`,
		email,
	).Scan(&entry.Email, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find waitlist entry: %w", err)
	}

	return entry, nil
}

// Create は登録を作成する。
// 一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
func (r *PostgresWaitlistRepo) Create(ctx context.Context, entry *model.WaitlistEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO waitlist (email, created_at) VALUES ($1, $2)`,
		entry.Email, entry.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("email already on waitlist: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert waitlist entry: %w", err)
	}
	return nil
}

// compile-time interface check
var _ WaitlistRepository = (*PostgresWaitlistRepo)(nil)
