// Package metrics exposes Prometheus counters for engagement and feed traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EngagementToggles counts toggle outcomes by action (like, comment_like, follow, save) and result (on, off).
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanogram_engagement_toggles_total",
		Help: "Total number of engagement toggles by action and resulting state",
	}, []string{"action", "result"})

	// NotificationsEmitted counts notification rows written by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanogram_notifications_emitted_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})

	// StoreConflicts counts unique-index violations that were normalised into toggle results.
	StoreConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanogram_store_conflicts_total",
		Help: "Total number of duplicate-key conflicts absorbed by the engagement layer",
	}, []string{"store"})

	// FeedRequests counts feed compositions by view (home, explore, explore_sample).
	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanogram_feed_requests_total",
		Help: "Total number of feed compositions by view",
	}, []string{"view"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
