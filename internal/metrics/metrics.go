// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層から利用する。
type MetricsCollector interface {
	RecordAuthSuccess(operation string)
	RecordAuthFailure(operation string)
	RecordGeocodeCacheHit()
	RecordGeocodeCacheMiss()
	RecordNarrativeGenerated()
	RecordUpstreamLatency(upstream string, duration time.Duration)
	RecordWaitlistSignup()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authSuccess        *prometheus.CounterVec
	authFail           *prometheus.CounterVec
	geocodeCacheHit    prometheus.Counter
	geocodeCacheMiss   prometheus.Counter
	narrativeGenerated prometheus.Counter
	upstreamLatency    *prometheus.HistogramVec
	waitlistSignups    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rediscover_auth_success_total",
			Help: "認証成功の合計数（操作別）",
		}, []string{"operation"}),
		authFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rediscover_auth_fail_total",
			Help: "認証失敗の合計数（操作別）",
		}, []string{"operation"}),
		geocodeCacheHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rediscover_geocode_cache_hit_total",
			Help: "ジオコーディングキャッシュヒットの合計数",
		}),
		geocodeCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rediscover_geocode_cache_miss_total",
			Help: "ジオコーディングキャッシュミスの合計数",
		}),
		narrativeGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rediscover_narrative_generated_total",
			Help: "AI生成されたナラティブの合計数",
		}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rediscover_upstream_latency_seconds",
			Help:    "外部APIコールのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream"}),
		waitlistSignups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rediscover_waitlist_signups_total",
			Help: "待ちリスト登録の合計数",
		}),
	}

	reg.MustRegister(
		c.authSuccess,
		c.authFail,
		c.geocodeCacheHit,
		c.geocodeCacheMiss,
		c.narrativeGenerated,
		c.upstreamLatency,
		c.waitlistSignups,
	)

	return c
}

// RecordAuthSuccess は認証成功を記録する。operationは"register"、"login"、"google"。
func (c *Collector) RecordAuthSuccess(operation string) {
	c.authSuccess.WithLabelValues(operation).Inc()
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure(operation string) {
	c.authFail.WithLabelValues(operation).Inc()
}

// RecordGeocodeCacheHit はジオコーディングキャッシュヒットを記録する。
func (c *Collector) RecordGeocodeCacheHit() {
	c.geocodeCacheHit.Inc()
}

// RecordGeocodeCacheMiss はジオコーディングキャッシュミスを記録する。
func (c *Collector) RecordGeocodeCacheMiss() {
	c.geocodeCacheMiss.Inc()
}

// RecordNarrativeGenerated はナラティブ生成を記録する。
func (c *Collector) RecordNarrativeGenerated() {
	c.narrativeGenerated.Inc()
}

// RecordUpstreamLatency は外部APIコールのレイテンシを記録する。
// upstreamは"maps"、"ai"、"oauth"。
func (c *Collector) RecordUpstreamLatency(upstream string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(upstream).Observe(duration.Seconds())
}

// RecordWaitlistSignup は待ちリスト登録を記録する。
func (c *Collector) RecordWaitlistSignup() {
	c.waitlistSignups.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターが/metricsに直接マウントする。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
