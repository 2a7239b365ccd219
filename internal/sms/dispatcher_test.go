package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	to     []string
	err    error
	block  bool
	health bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) SendSMS(ctx context.Context, to, message string) (*models.SMSResult, error) {
	s.to = append(s.to, to)
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return newResult(s.name, "stub-1"), nil
}

func (s *stubProvider) HealthCheck(context.Context) bool { return s.health }

func TestNewDispatcher_FallsBackToDemo(t *testing.T) {
	d := NewDispatcher(KindSENS, Settings{}, 0, nil)

	assert.Equal(t, "demo", d.ProviderName())
	assert.True(t, d.IsDemo())

	health := d.HealthCheck(context.Background())
	assert.True(t, health.Fallback)
	assert.True(t, health.Reachable)
}

func TestNewDispatcher_ConfiguredProvider(t *testing.T) {
	d := NewDispatcher(KindAligo, aligoSettings("http://127.0.0.1:1"), time.Second, nil)
	assert.Equal(t, "aligo", d.ProviderName())
	assert.False(t, d.IsDemo())
}

func TestDispatcher_SendSMS(t *testing.T) {
	stub := &stubProvider{name: "stub"}
	d := NewDispatcherWithProvider(stub, false, time.Second, nil)

	res, err := d.SendSMS(context.Background(), "+82 10-1111-2222", "hello")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "stub-1", res.MessageID)
	assert.Equal(t, []string{"01011112222"}, stub.to, "provider receives the local form")
}

func TestDispatcher_InvalidPhone(t *testing.T) {
	stub := &stubProvider{name: "stub"}
	d := NewDispatcherWithProvider(stub, false, time.Second, nil)

	for _, phone := range []string{"", "02-123-4567", "010-123-4567", "abc"} {
		res, err := d.SendSMS(context.Background(), phone, "hello")
		require.Error(t, err, phone)
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	}
	assert.Empty(t, stub.to, "invalid numbers never reach the provider")
}

func TestDispatcher_ProviderError(t *testing.T) {
	stub := &stubProvider{name: "stub", err: errors.New("connection reset")}
	d := NewDispatcherWithProvider(stub, false, time.Second, nil)

	res, err := d.SendSMS(context.Background(), "010-1111-2222", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSMSProvider)
	assert.False(t, res.Success)
	assert.Equal(t, "stub", res.Provider)

	var perr *models.SMSProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "stub", perr.Provider)
	assert.Contains(t, perr.Error(), "connection reset")
}

func TestDispatcher_Timeout(t *testing.T) {
	stub := &stubProvider{name: "stub", block: true}
	d := NewDispatcherWithProvider(stub, false, 20*time.Millisecond, nil)

	_, err := d.SendSMS(context.Background(), "010-1111-2222", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSMSProvider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatcher_CarrierTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d := NewDispatcher(KindAligo, aligoSettings(srv.URL), 50*time.Millisecond, nil)
	res, err := d.SendSMS(context.Background(), "010-1111-2222", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSMSProvider)
	assert.False(t, res.Success)
}

func TestDispatcher_HealthCheck(t *testing.T) {
	d := NewDispatcherWithProvider(&stubProvider{name: "stub", health: false}, false, time.Second, nil)
	health := d.HealthCheck(context.Background())
	assert.Equal(t, models.ProviderHealth{Provider: "stub"}, health)
}

func TestDispatcher_RateLimit(t *testing.T) {
	stub := &stubProvider{name: "stub"}
	d := NewDispatcherWithProvider(stub, false, time.Second, nil)
	d.SetRateLimit(2)

	for i := 0; i < 2; i++ {
		_, err := d.SendSMS(context.Background(), "010-1111-2222", "hello")
		require.NoError(t, err)
	}

	res, err := d.SendSMS(context.Background(), "010-1111-2222", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSMSProvider)
	assert.ErrorIs(t, err, ErrThrottled)
	assert.False(t, res.Success)
	assert.Len(t, stub.to, 2, "throttled messages never reach the provider")

	health := d.HealthCheck(context.Background())
	require.NotNil(t, health.RateLimit)
	assert.Equal(t, 2, health.RateLimit.PerMinute)
	assert.LessOrEqual(t, health.RateLimit.Available, 1)
}
