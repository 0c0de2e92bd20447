package narrative

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/rediscover/internal/metrics"
	"github.com/hitoshi/rediscover/internal/model"
	"github.com/hitoshi/rediscover/internal/repository"
	"github.com/hitoshi/rediscover/internal/security"
)

type mockInfoRepo struct {
	findByGeohashFunc func(ctx context.Context, gh string) (*model.LocationInfo, error)
	createFunc        func(ctx context.Context, info *model.LocationInfo) error
}

func (m *mockInfoRepo) FindByGeohash(ctx context.Context, gh string) (*model.LocationInfo, error) {
	return m.findByGeohashFunc(ctx, gh)
}

func (m *mockInfoRepo) Create(ctx context.Context, info *model.LocationInfo) error {
	return m.createFunc(ctx, info)
}

var _ repository.LocationInfoRepository = (*mockInfoRepo)(nil)

type mockGenerator struct {
	generateFunc func(ctx context.Context, location *model.Location) (*Narrative, error)
}

func (m *mockGenerator) Generate(ctx context.Context, location *model.Location) (*Narrative, error) {
	return m.generateFunc(ctx, location)
}

var _ Generator = (*mockGenerator)(nil)

func newTestService(repo repository.LocationInfoRepository, generator Generator) *Service {
	collector := metrics.NewCollector(prometheus.NewRegistry())
	return NewService(repo, generator, security.NewContentSanitizer(), collector, testLogger())
}

func TestService_GetInfo_CacheHit(t *testing.T) {
	cached := &model.LocationInfo{Geohash: "xn76ur", Name: "Dogenzaka"}
	generatorCalled := false

	svc := newTestService(
		&mockInfoRepo{
			findByGeohashFunc: func(ctx context.Context, gh string) (*model.LocationInfo, error) {
				return cached, nil
			},
		},
		&mockGenerator{
			generateFunc: func(ctx context.Context, location *model.Location) (*Narrative, error) {
				generatorCalled = true
				return nil, nil
			},
		},
	)

	got, err := svc.GetInfo(context.Background(), testLocation())
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if got != cached {
		t.Error("GetInfo() did not return the cached narrative")
	}
	if generatorCalled {
		t.Error("generator was called despite cache hit")
	}
}

func TestService_GetInfo_GeneratesAndSanitizes(t *testing.T) {
	var saved *model.LocationInfo

	svc := newTestService(
		&mockInfoRepo{
			findByGeohashFunc: func(ctx context.Context, gh string) (*model.LocationInfo, error) {
				return nil, nil
			},
			createFunc: func(ctx context.Context, info *model.LocationInfo) error {
				saved = info
				return nil
			},
		},
		&mockGenerator{
			generateFunc: func(ctx context.Context, location *model.Location) (*Narrative, error) {
				return &Narrative{
					Name:        "<script>alert(1)</script>Dogenzaka",
					Description: "A lively <b>slope</b> in Shibuya.",
					Attractions: []string{"Shibuya Crossing", "<img src=x onerror=alert(1)>"},
				}, nil
			},
		},
	)

	got, err := svc.GetInfo(context.Background(), testLocation())
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if got.Name != "Dogenzaka" {
		t.Errorf("Name = %q, want script tag stripped", got.Name)
	}
	if got.Description != "A lively slope in Shibuya." {
		t.Errorf("Description = %q", got.Description)
	}
	if len(got.Attractions) != 1 || got.Attractions[0] != "Shibuya Crossing" {
		t.Errorf("Attractions = %v, want the empty sanitized entry dropped", got.Attractions)
	}
	if saved == nil {
		t.Fatal("narrative was not saved")
	}
	if saved.Geohash != "xn76ur" {
		t.Errorf("saved geohash = %q, want %q", saved.Geohash, "xn76ur")
	}
}

func TestService_GetInfo_ConcurrentInsert(t *testing.T) {
	winner := &model.LocationInfo{Geohash: "xn76ur", Name: "Dogenzaka"}
	calls := 0

	svc := newTestService(
		&mockInfoRepo{
			findByGeohashFunc: func(ctx context.Context, gh string) (*model.LocationInfo, error) {
				calls++
				if calls == 1 {
					return nil, nil
				}
				return winner, nil
			},
			createFunc: func(ctx context.Context, info *model.LocationInfo) error {
				return fmt.Errorf("failed to insert location info: %w", repository.ErrDuplicate)
			},
		},
		&mockGenerator{
			generateFunc: func(ctx context.Context, location *model.Location) (*Narrative, error) {
				return &Narrative{Name: "Dogenzaka"}, nil
			},
		},
	)

	got, err := svc.GetInfo(context.Background(), testLocation())
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if got != winner {
		t.Error("GetInfo() did not return the concurrently inserted row")
	}
}

func TestService_GetInfo_GeneratorError(t *testing.T) {
	createCalled := false

	svc := newTestService(
		&mockInfoRepo{
			findByGeohashFunc: func(ctx context.Context, gh string) (*model.LocationInfo, error) {
				return nil, nil
			},
			createFunc: func(ctx context.Context, info *model.LocationInfo) error {
				createCalled = true
				return nil
			},
		},
		&mockGenerator{
			generateFunc: func(ctx context.Context, location *model.Location) (*Narrative, error) {
				return nil, errors.New("upstream unavailable")
			},
		},
	)

	if _, err := svc.GetInfo(context.Background(), testLocation()); err == nil {
		t.Fatal("GetInfo() expected error")
	}
	if createCalled {
		t.Error("a partial record was saved despite generation failure")
	}
}
