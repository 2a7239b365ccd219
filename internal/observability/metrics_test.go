package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsExist(t *testing.T) {
	assert.NotNil(t, RequestDuration)
	assert.NotNil(t, DatabaseOperations)
	assert.NotNil(t, SMSDispatch)
	assert.NotNil(t, SMSDispatchDuration)
	assert.NotNil(t, Verifications)
	assert.NotNil(t, QuestionMutations)
	assert.NotNil(t, FlowCompilations)
	assert.NotNil(t, ChatTransitions)
	assert.NotNil(t, LeadsCaptured)
	assert.NotNil(t, ActiveConnections)
}

func TestSMSDispatchCounter(t *testing.T) {
	before := testutil.ToFloat64(SMSDispatch.WithLabelValues("demo", StatusSuccess))
	SMSDispatch.WithLabelValues("demo", StatusSuccess).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SMSDispatch.WithLabelValues("demo", StatusSuccess)))
}

func TestRequestDuration(t *testing.T) {
	RequestDuration.WithLabelValues("/v1/health", "GET", "200").Observe(0.01)
	RequestDuration.WithLabelValues("/v1/chat/sessions", "POST", "201").Observe(0.2)
}

func TestActiveConnections(t *testing.T) {
	ActiveConnections.Set(0)
	ActiveConnections.Inc()
	ActiveConnections.Inc()
	ActiveConnections.Dec()
	assert.Equal(t, float64(1), testutil.ToFloat64(ActiveConnections))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusLabel(nil))
	assert.Equal(t, StatusError, StatusLabel(errors.New("boom")))
}
