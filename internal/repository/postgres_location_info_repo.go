package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/rediscover/internal/model"
)

// PostgresLocationInfoRepo はPostgreSQLを使用したナラティブリポジトリ。
// attractionsはjsonbカラムに格納する。
type PostgresLocationInfoRepo struct {
	db *sql.DB
}

// NewPostgresLocationInfoRepo はPostgresLocationInfoRepoを生成する。
func NewPostgresLocationInfoRepo(db *sql.DB) *PostgresLocationInfoRepo {
	return &PostgresLocationInfoRepo{db: db}
}

// FindByGeohash はgeohashでナラティブを検索する。見つからない場合はnilを返す。
func (r *PostgresLocationInfoRepo) FindByGeohash(ctx context.Context, geohash string) (*model.LocationInfo, error) {
	info := &model.LocationInfo{}
	var attractions []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT geohash, name, description, history, culture, attractions, climate, demographics, economy, created_at
		 FROM location_info WHERE geohash = $1`,
		geohash,
	).Scan(&info.Geohash, &info.Name, &info.Description, &info.History, &info.Culture,
		&attractions, &info.Climate, &info.Demographics, &info.Economy, &info.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find location info by geohash: %w", err)
	}

	if len(attractions) > 0 {
		if err := json.Unmarshal(attractions, &info.Attractions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attractions: %w", err)
		}
	}

	return info, nil
}

// Create はナラティブを作成する。
// geohashの一意制約違反の場合はErrDuplicateをラップしたエラーを返す。
func (r *PostgresLocationInfoRepo) Create(ctx context.Context, info *model.LocationInfo) error {
	attractions, err := json.Marshal(info.Attractions)
	if err != nil {
		return fmt.Errorf("failed to marshal attractions: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO location_info (geohash, name, description, history, culture, attractions, climate, demographics, economy, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		info.Geohash, info.Name, info.Description, info.History, info.Culture,
		attractions, info.Climate, info.Demographics, info.Economy, info.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("location info already generated: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert location info: %w", err)
	}
	return nil
}

// compile-time interface check
var _ LocationInfoRepository = (*PostgresLocationInfoRepo)(nil)
