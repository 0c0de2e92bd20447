package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/rediscover/internal/model"
)

// PostgresLocationRepo はPostgreSQLを使用したジオコーディングキャッシュリポジトリ。
type PostgresLocationRepo struct {
	db *sql.DB
}

// NewPostgresLocationRepo はPostgresLocationRepoを生成する。
func NewPostgresLocationRepo(db *sql.DB) *PostgresLocationRepo {
	return &PostgresLocationRepo{db: db}
}

// FindByGeohash はgeohashでキャッシュ済みレコードを検索する。見つからない場合はnilを返す。
func (r *PostgresLocationRepo) FindByGeohash(ctx context.Context, geohash string) (*model.Location, error) {
	loc := &model.Location{}
	err := r.db.QueryRowContext(ctx,
		`SELECT geohash, latitude, longitude, country, city, locality, neighborhood, street, created_at
		 FROM locations WHERE geohash = $1`,
		geohash,
	).Scan(&loc.Geohash, &loc.Latitude, &loc.Longitude, &loc.Country, &loc.City,
		&loc.Locality, &loc.Neighborhood, &loc.Street, &loc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find location by geohash: %w", err)
	}

	return loc, nil
}

// Create はレコードを作成する。
// geohashの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
func (r *PostgresLocationRepo) Create(ctx context.Context, loc *model.Location) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (geohash, latitude, longitude, country, city, locality, neighborhood, street, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		loc.Geohash, loc.Latitude, loc.Longitude, loc.Country, loc.City,
		loc.Locality, loc.Neighborhood, loc.Street, loc.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("location already cached: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// compile-time interface check
var _ LocationRepository = (*PostgresLocationRepo)(nil)
