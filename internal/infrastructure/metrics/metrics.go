package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the CRM bot
type Metrics struct {
	// Chat command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Lead ingress metrics
	LeadsSubmitted *prometheus.CounterVec

	// Broadcast metrics
	BroadcastDeliveries *prometheus.CounterVec
	BroadcastDuration   prometheus.Histogram

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
	KafkaProduceDuration  prometheus.Histogram
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics registers all collectors on the default registry
func NewMetrics() *Metrics {
	return &Metrics{
		CommandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_bot_commands_total",
				Help: "Total number of handled chat events by command and result",
			},
			[]string{"command", "result"},
		),
		CommandDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_bot_command_duration_seconds",
				Help:    "Duration of chat event handling in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"command"},
		),
		LeadsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_bot_leads_submitted_total",
				Help: "Total number of lead submissions by outcome",
			},
			[]string{"outcome"},
		),
		BroadcastDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_bot_broadcast_deliveries_total",
				Help: "Total number of lead notification sends by status",
			},
			[]string{"status"},
		),
		BroadcastDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crm_bot_broadcast_duration_seconds",
			Help:    "Duration of a full lead broadcast in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		KafkaMessagesProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_bot_kafka_messages_produced_total",
			Help: "Total number of lead events produced to Kafka",
		}),
		KafkaProduceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_bot_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"error_type"},
		),
		KafkaProduceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crm_bot_kafka_produce_duration_seconds",
			Help:    "Duration of Kafka produce calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// RecordCommand records one handled chat event
func (m *Metrics) RecordCommand(command, result string, duration float64) {
	if command == "" {
		command = "unknown"
	}
	m.CommandsTotal.WithLabelValues(command, result).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration)
}

// RecordLeadSubmission records a lead submission outcome
func (m *Metrics) RecordLeadSubmission(outcome string) {
	m.LeadsSubmitted.WithLabelValues(outcome).Inc()
}

// RecordBroadcast records the result of one lead broadcast
func (m *Metrics) RecordBroadcast(delivered, failed int, duration float64) {
	// Only add positive values to prevent counter from going backwards
	if delivered > 0 {
		m.BroadcastDeliveries.WithLabelValues("delivered").Add(float64(delivered))
	}
	if failed > 0 {
		m.BroadcastDeliveries.WithLabelValues("failed").Add(float64(failed))
	}
	m.BroadcastDuration.Observe(duration)
}

// RecordKafkaMessage records a produced Kafka message
func (m *Metrics) RecordKafkaMessage(duration float64) {
	m.KafkaMessagesProduced.Inc()
	m.KafkaProduceDuration.Observe(duration)
}

// RecordKafkaError records a Kafka produce error with error type
func (m *Metrics) RecordKafkaError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	m.KafkaProduceErrors.WithLabelValues(errorType).Inc()
}
