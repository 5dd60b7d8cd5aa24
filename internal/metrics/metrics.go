package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yamdb_http_requests_total",
		Help: "The total number of requests by method, route and status code",
	}, []string{"method", "path", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yamdb_http_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// SignupsTotal counts signup attempts by outcome: created, repeated, rejected.
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yamdb_signups_total",
		Help: "The total number of signup attempts",
	}, []string{"status"})

	TokensIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yamdb_token_exchanges_total",
		Help: "The total number of confirmation code exchanges",
	}, []string{"status"})

	MailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yamdb_mails_total",
		Help: "The total number of outgoing emails",
	}, []string{"status"})
)
