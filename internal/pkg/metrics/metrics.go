package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ContractDecodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgate_contract_decodes_total",
		Help: "Contract payloads processed, by outcome",
	}, []string{"contract", "outcome"})

	ContractViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgate_contract_violations_total",
		Help: "Constraint violations reported while validating contracts",
	}, []string{"contract", "rule"})

	EnumRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgate_enum_rejects_total",
		Help: "Labels rejected by a closed enum",
	}, []string{"enum"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "econgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "econgate_stream_subscribers",
		Help: "Connected event stream subscribers",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgate_events_published_total",
		Help: "Events fanned out to stream subscribers",
	}, []string{"contract"})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgate_events_dropped_total",
		Help: "Events not delivered because a subscriber was too slow",
	}, []string{"contract"})
)

// Outcome labels for ContractDecodes.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeEnum      = "unrecognized_enum"
	OutcomeMalformed = "malformed"
	OutcomeUnknown   = "unknown_contract"
)
