// Package waitlist はサービス公開待ちリストへの登録を提供する。
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/rediscover/internal/metrics"
	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
)

// SubscribeResult は登録結果を表す。
type SubscribeResult struct {
	Entry             *model.WaitlistEntry
	AlreadySubscribed bool
}

// Service は待ちリスト登録を行うサービス。
type Service struct {
	waitlistRepo repository.WaitlistRepository
	metrics      *metrics.Collector
	logger       *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(waitlistRepo repository.WaitlistRepository, collector *metrics.Collector, logger *slog.Logger) *Service {
	return &Service{
		waitlistRepo: waitlistRepo,
		metrics:      collector,
		logger:       logger,
	}
}

// Subscribe はメールアドレスを待ちリストに登録する。
// 登録済みのメールアドレスはエラーにせずAlreadySubscribedで返す。
func (s *Service) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.waitlistRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up waitlist entry: %w", err)
	}
	if existing != nil {
		return &SubscribeResult{Entry: existing, AlreadySubscribed: true}, nil
	}

	entry := &model.WaitlistEntry{
		Email:     email,
		CreatedAt: time.Now(),
	}

	if err := s.waitlistRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 同じメールアドレスの登録が並行して完了した
			return &SubscribeResult{Entry: entry, AlreadySubscribed: true}, nil
		}
		return nil, fmt.Errorf("failed to create waitlist entry: %w", err)
	}

	s.metrics.RecordWaitlistSignup()
	s.logger.Info("待ちリストに登録しました",
		slog.String("email", email),
	)

	return &SubscribeResult{Entry: entry, AlreadySubscribed: false}, nil
}
