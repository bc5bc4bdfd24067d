package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application counters scraped from /metrics.
var (
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snipurl_links_created_total",
		Help: "Total number of short links created.",
	})

	ClicksRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snipurl_clicks_recorded_total",
		Help: "Total number of clicks recorded on short links.",
	})

	LinksExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snipurl_links_expired_total",
		Help: "Total number of links demoted to inactive by the expiry sweep.",
	})
)
