package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "leadbot_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// DatabaseOperations tracks store operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbot_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)

	// SMSDispatch tracks outbound SMS per provider
	SMSDispatch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbot_sms_dispatch_total",
			Help: "Number of SMS dispatch attempts",
		},
		[]string{"provider", "status"},
	)

	// SMSDispatchDuration tracks carrier round trips
	SMSDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadbot_sms_dispatch_duration_seconds",
			Help:    "Duration of SMS dispatch calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	// Verifications tracks verification code issuance and checks
	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbot_verification_total",
			Help: "Number of verification operations",
		},
		[]string{"operation", "status"},
	)

	// QuestionMutations tracks admin edits to the question set
	QuestionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbot_question_mutations_total",
			Help: "Number of question repository mutations",
		},
		[]string{"operation", "status"},
	)

	// FlowCompilations counts flow graph rebuilds
	FlowCompilations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadbot_flow_compilations_total",
			Help: "Number of flow graph compilations",
		},
	)

	// ChatTransitions tracks answers submitted to chat sessions
	ChatTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbot_chat_transitions_total",
			Help: "Number of chat answer submissions by outcome",
		},
		[]string{"outcome"},
	)

	// LeadsCaptured counts saved leads
	LeadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadbot_leads_captured_total",
			Help: "Number of leads persisted",
		},
		[]string{"verified"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadbot_active_connections",
			Help: "Number of active connections",
		},
	)
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusLabel maps an error to a metric status label.
func StatusLabel(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
