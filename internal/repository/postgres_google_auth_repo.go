package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/rediscover/internal/model"
)

// PostgresGoogleAuthRepo はPostgreSQLを使用したGoogle紐付けリポジトリ。
type PostgresGoogleAuthRepo struct {
	db *sql.DB
}

// NewPostgresGoogleAuthRepo はPostgresGoogleAuthRepoを生成する。
func NewPostgresGoogleAuthRepo(db *sql.DB) *PostgresGoogleAuthRepo {
	return &PostgresGoogleAuthRepo{db: db}
}

// FindByGoogleID はGoogle側のsubject IDで紐付けを検索する。見つからない場合はnilを返す。
func (r *PostgresGoogleAuthRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.GoogleAuth, error) {
	ga := &model.GoogleAuth{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, google_id, email, name, picture, access_token, refresh_token, created_at, updated_at
		 FROM google_auths WHERE google_id = $1`,
		googleID,
	).Scan(&ga.ID, &ga.UserID, &ga.GoogleID, &ga.Email, &ga.Name, &ga.Picture,
		&ga.AccessToken, &ga.RefreshToken, &ga.CreatedAt, &ga.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find google auth by google ID: %w", err)
	}

	return ga, nil
}

// Create は紐付けを作成する。
// google_idの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
func (r *PostgresGoogleAuthRepo) Create(ctx context.Context, ga *model.GoogleAuth) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO google_auths (id, user_id, google_id, email, name, picture, access_token, refresh_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ga.ID, ga.UserID, ga.GoogleID, ga.Email, ga.Name, ga.Picture,
		ga.AccessToken, ga.RefreshToken, ga.CreatedAt, ga.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("google account already linked: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert google auth: %w", err)
	}
	return nil
}

// UpdateTokens は既存紐付けのトークンと表示属性を上書きし、updated_atを更新する。
func (r *PostgresGoogleAuthRepo) UpdateTokens(ctx context.Context, ga *model.GoogleAuth) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE google_auths
		 SET email = $1, name = $2, picture = $3, access_token = $4, refresh_token = $5, updated_at = $6
		 WHERE google_id = $7`,
		ga.Email, ga.Name, ga.Picture, ga.AccessToken, ga.RefreshToken, ga.UpdatedAt, ga.GoogleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update google auth: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("google auth not found: %s", ga.GoogleID)
	}
	return nil
}

// compile-time interface check
var _ GoogleAuthRepository = (*PostgresGoogleAuthRepo)(nil)
