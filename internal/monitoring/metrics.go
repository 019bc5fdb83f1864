package monitoring

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Ticket purchase attempts by outcome",
		},
		[]string{"event_id", "status"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_checkins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"event_id", "status"},
	)

	mintPipeline = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_mint_pipeline_total",
			Help: "Mint pipeline stage outcomes",
		},
		[]string{"stage", "status"},
	)

	mintDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nft_mint_duration_seconds",
			Help:    "End to end duration of a mint attempt",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	activeMintLocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nft_mint_locks_active",
			Help: "Mint single-flight locks currently held",
		},
	)
)

func TrackPurchase(eventID, status string) {
	purchases.WithLabelValues(eventID, status).Inc()
}

func TrackCheckIn(eventID, status string) {
	checkIns.WithLabelValues(eventID, status).Inc()
}

func TrackMintStage(stage, status string) {
	mintPipeline.WithLabelValues(stage, status).Inc()
}

func TrackMintDuration(d time.Duration) {
	mintDuration.Observe(d.Seconds())
}

// Monitor periodically samples redis for lock gauges.
type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}
	go monitor.collectMetrics()
	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()
		keys, err := m.redis.Keys(ctx, "mint_lock:*").Result()
		if err != nil {
			continue
		}
		count := 0
		for _, key := range keys {
			if strings.HasPrefix(key, "mint_lock:") {
				count++
			}
		}
		activeMintLocks.Set(float64(count))
	}
}
