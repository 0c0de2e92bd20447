package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/rediscover/internal/metrics"
	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
	"github.com/hitoshi/rediscover/internal/security"
)

// Service は観光ナラティブの取得を行うサービス。
// geohash単位で生成結果をキャッシュし、生成は1セルにつき1回だけ行う。
type Service struct {
	infoRepo  repository.LocationInfoRepository
	generator Generator
	sanitizer security.ContentSanitizerService
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(infoRepo repository.LocationInfoRepository, generator Generator, sanitizer security.ContentSanitizerService, collector *metrics.Collector, logger *slog.Logger) *Service {
	return &Service{
		infoRepo:  infoRepo,
		generator: generator,
		sanitizer: sanitizer,
		metrics:   collector,
		logger:    logger,
	}
}

// GetInfo は位置のナラティブを返す。
// キャッシュがあればそれを返し、なければ生成して保存する。
// 生成の失敗はそのまま返し、不完全なレコードは保存しない。
func (s *Service) GetInfo(ctx context.Context, location *model.Location) (*model.LocationInfo, error) {
	cached, err := s.infoRepo.FindByGeohash(ctx, location.Geohash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cached narrative: %w", err)
	}
	if cached != nil {
		return cached, nil
	}

	start := time.Now()
	narrative, err := s.generator.Generate(ctx, location)
	s.metrics.RecordUpstreamLatency("ai", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to generate narrative: %w", err)
	}

	info := s.sanitize(location.Geohash, narrative)

	if err := s.infoRepo.Create(ctx, info); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 同じセルの生成が並行して完了した。保存済みの行を正とする。
			existing, findErr := s.infoRepo.FindByGeohash(ctx, location.Geohash)
			if findErr != nil {
				return nil, fmt.Errorf("failed to re-read narrative after duplicate: %w", findErr)
			}
			if existing != nil {
				return existing, nil
			}
			return info, nil
		}
		return nil, fmt.Errorf("failed to save narrative: %w", err)
	}

	s.metrics.RecordNarrativeGenerated()
	s.logger.Info("ナラティブを生成しました",
		slog.String("geohash", location.Geohash),
		slog.String("name", info.Name),
	)

	return info, nil
}

// sanitize は生成されたテキストからHTMLタグを除去してレコードに詰める。
// AIの出力は信頼しない。
func (s *Service) sanitize(geohash string, narrative *Narrative) *model.LocationInfo {
	attractions := make([]string, 0, len(narrative.Attractions))
	for _, a := range narrative.Attractions {
		if cleaned := s.sanitizer.Sanitize(a); cleaned != "" {
			attractions = append(attractions, cleaned)
		}
	}

	return &model.LocationInfo{
		Geohash:      geohash,
		Name:         s.sanitizer.Sanitize(narrative.Name),
		Description:  s.sanitizer.Sanitize(narrative.Description),
		History:      s.sanitizer.Sanitize(narrative.History),
		Culture:      s.sanitizer.Sanitize(narrative.Culture),
		Attractions:  attractions,
		Climate:      s.sanitizer.Sanitize(narrative.Climate),
		Demographics: s.sanitizer.Sanitize(narrative.Demographics),
		Economy:      s.sanitizer.Sanitize(narrative.Economy),
		CreatedAt:    time.Now(),
	}
}
