package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gin-gorm-market/internal/domain"
)

var (
	Moderation = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "market_moderation_total", Help: "Moderation workflow actions by outcome"},
		[]string{"action", "outcome"},
	)
	Engagement = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "market_engagement_total", Help: "Engagement ledger actions by outcome"},
		[]string{"action", "outcome"},
	)
	Profile = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "market_profile_total", Help: "Profile mutations by outcome"},
		[]string{"action", "outcome"},
	)
)

func init() { prometheus.MustRegister(Moderation, Engagement, Profile) }

// Observe 成功记 ok，失败按错误分类记
func Observe(vec *prometheus.CounterVec, action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domain.KindOf(err).String()
	}
	vec.WithLabelValues(action, outcome).Inc()
}

func Handler() http.Handler { return promhttp.Handler() }
