package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// intentsTotal counts classified chat messages by intent.
	intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemebot_intents_total",
			Help: "Chat messages classified, by intent.",
		},
		[]string{"intent"},
	)

	// chatLogFailures counts chat log appends or event publishes that failed
	// after the reply was sent.
	chatLogFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemebot_chatlog_append_failures_total",
			Help: "Chat log side effects that failed, by stage.",
		},
		[]string{"stage"},
	)

	// schemeCache counts scheme listing cache lookups by result (hit|miss|error).
	schemeCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemebot_scheme_cache_total",
			Help: "Scheme listing cache lookups, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(intentsTotal, chatLogFailures, schemeCache)
}
