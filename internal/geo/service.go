package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/hitoshi/rediscover/internal/metrics"
	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
)

// DefaultGeohashPrecision はキャッシュキーに使うgeohashの桁数。
// 精度6は約1.2km x 0.6kmのセルに相当する。
const DefaultGeohashPrecision = 6

// Service は座標の位置特定を行うサービス。
// geohash単位でリバースジオコーディング結果をキャッシュする。
type Service struct {
	locationRepo repository.LocationRepository
	geocoder     ReverseGeocoder
	metrics      *metrics.Collector
	logger       *slog.Logger
	precision    uint
}

// NewService はServiceの新しいインスタンスを生成する。
// precisionが0の場合はDefaultGeohashPrecisionを使う。
func NewService(locationRepo repository.LocationRepository, geocoder ReverseGeocoder, collector *metrics.Collector, logger *slog.Logger, precision uint) *Service {
	if precision == 0 {
		precision = DefaultGeohashPrecision
	}
	return &Service{
		locationRepo: locationRepo,
		geocoder:     geocoder,
		metrics:      collector,
		logger:       logger,
		precision:    precision,
	}
}

// Encode は座標をキャッシュキーとなるgeohashに変換する。
func (s *Service) Encode(lat, lng float64) string {
	return geohash.EncodeWithPrecision(lat, lng, s.precision)
}

// GetByGeohash は解決済みの位置レコードを返す。未解決の場合はnilを返す。
func (s *Service) GetByGeohash(ctx context.Context, gh string) (*model.Location, error) {
	location, err := s.locationRepo.FindByGeohash(ctx, gh)
	if err != nil {
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}
	return location, nil
}

// Locate は座標の住所を解決する。
// 同じgeohashセルの解決結果があればそれを返し、なければ
// Geocoding APIを呼び出して結果を保存する。
func (s *Service) Locate(ctx context.Context, lat, lng float64) (*model.Location, error) {
	gh := s.Encode(lat, lng)

	cached, err := s.locationRepo.FindByGeohash(ctx, gh)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cached location: %w", err)
	}
	if cached != nil {
		s.metrics.RecordGeocodeCacheHit()
		return cached, nil
	}
	s.metrics.RecordGeocodeCacheMiss()

	start := time.Now()
	addr, err := s.geocoder.ReverseGeocode(ctx, lat, lng)
	s.metrics.RecordUpstreamLatency("maps", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode: %w", err)
	}
	if addr == nil {
		return nil, model.ErrLocationNotFound
	}

	location := &model.Location{
		Geohash:      gh,
		Latitude:     lat,
		Longitude:    lng,
		Country:      addr.Country,
		City:         addr.City,
		Locality:     addr.Locality,
		Neighborhood: addr.Neighborhood,
		Street:       addr.Street,
		CreatedAt:    time.Now(),
	}

	if err := s.locationRepo.Create(ctx, location); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 同じセルの解決が並行して完了した。保存済みの行を正とする。
			existing, findErr := s.locationRepo.FindByGeohash(ctx, gh)
			if findErr != nil {
				return nil, fmt.Errorf("failed to re-read location after duplicate: %w", findErr)
			}
			if existing != nil {
				return existing, nil
			}
			return location, nil
		}
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	s.logger.Info("位置を解決しました",
		slog.String("geohash", gh),
		slog.String("city", location.City),
	)

	return location, nil
}
