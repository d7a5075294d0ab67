package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SocialMetrics tracks ledger activity for the /metrics endpoint.
type SocialMetrics struct {
	profilesCreated prometheus.Counter
	postsCreated    prometheus.Counter
	likes           *prometheus.CounterVec
	feesCollected   prometheus.Counter
}

var (
	socialOnce     sync.Once
	socialRegistry *SocialMetrics
)

// Social returns the process-wide ledger metrics, registering them on first
// use.
func Social() *SocialMetrics {
	socialOnce.Do(func() {
		socialRegistry = &SocialMetrics{
			profilesCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pulse_profiles_created_total",
				Help: "Count of soulbound profiles minted.",
			}),
			postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pulse_posts_created_total",
				Help: "Count of posts registered.",
			}),
			likes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "pulse_likes_total",
				Help: "Count of settled likes by kind.",
			}, []string{"kind"}),
			feesCollected: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pulse_fees_collected_wei_total",
				Help: "Cumulative paid-like fees collected, in wei.",
			}),
		}
		prometheus.MustRegister(
			socialRegistry.profilesCreated,
			socialRegistry.postsCreated,
			socialRegistry.likes,
			socialRegistry.feesCollected,
		)
	})
	return socialRegistry
}

// ProfileCreated records a profile mint.
func (m *SocialMetrics) ProfileCreated() {
	if m == nil {
		return
	}
	m.profilesCreated.Inc()
}

// PostCreated records a post registration.
func (m *SocialMetrics) PostCreated() {
	if m == nil {
		return
	}
	m.postsCreated.Inc()
}

// FreeLike records a settled free like.
func (m *SocialMetrics) FreeLike() {
	if m == nil {
		return
	}
	m.likes.WithLabelValues("free").Inc()
}

// PaidLike records a settled paid like and its fee.
func (m *SocialMetrics) PaidLike(fee *big.Int) {
	if m == nil {
		return
	}
	m.likes.WithLabelValues("paid").Inc()
	if fee != nil {
		f, _ := new(big.Float).SetInt(fee).Float64()
		m.feesCollected.Add(f)
	}
}
