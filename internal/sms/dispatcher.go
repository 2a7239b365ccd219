package sms

import (
	"context"
	"errors"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/bizlab-kr/leadbot/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one carrier round trip.
const DefaultTimeout = 10 * time.Second

// Dispatcher forwards messages to the single configured provider.
type Dispatcher struct {
	provider Provider
	fallback bool
	timeout  time.Duration
	limiter  *RateLimiter
	logger   *logging.SafeLogger
}

// ErrThrottled is wrapped in the provider error returned when the send rate is exhausted.
var ErrThrottled = errors.New("sms send rate exceeded")

// NewDispatcher builds the provider for kind. When the provider cannot be constructed
// the dispatcher logs a warning and falls back to the demo provider.
func NewDispatcher(kind Kind, s Settings, timeout time.Duration, logger *logging.SafeLogger) *Dispatcher {
	if logger == nil {
		logger = logging.Logger
	}
	logger = logger.Named("sms")
	s.Logger = logger

	provider, err := NewProvider(kind, s)
	fallback := false
	if err != nil {
		logger.Warn("sms provider unavailable, falling back to demo",
			zap.String("provider", string(kind)),
			zap.Error(err))
		provider = NewDemoProvider(logger)
		fallback = true
	}
	return NewDispatcherWithProvider(provider, fallback, timeout, logger)
}

// NewDispatcherWithProvider wraps an already constructed provider.
func NewDispatcherWithProvider(p Provider, fallback bool, timeout time.Duration, logger *logging.SafeLogger) *Dispatcher {
	if logger == nil {
		logger = logging.Logger
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{provider: p, fallback: fallback, timeout: timeout, logger: logger}
}

// SetRateLimit bounds outgoing messages to perMinute. Zero disables the bound.
func (d *Dispatcher) SetRateLimit(perMinute int) {
	d.limiter = NewRateLimiter(perMinute)
}

// ProviderName returns the active provider.
func (d *Dispatcher) ProviderName() string {
	return d.provider.Name()
}

// IsDemo reports whether messages are not actually delivered.
func (d *Dispatcher) IsDemo() bool {
	return d.provider.Name() == string(KindDemo)
}

// SendSMS validates phone and forwards message. On failure the returned result has
// Success=false and the error is a *models.ValidationError or *models.SMSProviderError.
func (d *Dispatcher) SendSMS(ctx context.Context, phone, message string) (*models.SMSResult, error) {
	name := d.provider.Name()
	ctx, span := observability.Tracer().Start(ctx, "sms.send")
	defer span.End()
	span.SetAttributes(attribute.String("sms.provider", name))

	parsed, err := utils.ParseKoreanMobile(phone)
	if err != nil {
		observability.SMSDispatch.WithLabelValues(name, "invalid").Inc()
		span.SetStatus(codes.Error, "invalid phone")
		return failed(name, err), err
	}

	if !d.limiter.Allow() {
		observability.SMSDispatch.WithLabelValues(name, "throttled").Inc()
		span.SetStatus(codes.Error, "throttled")
		d.logger.Warn("sms dispatch throttled",
			zap.String("provider", name),
			zap.String("phone", observability.MaskPhone(parsed.Local)))
		perr := &models.SMSProviderError{Provider: name, Err: ErrThrottled}
		return failed(name, perr), perr
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	result, err := d.provider.SendSMS(ctx, parsed.Local, message)
	observability.SMSDispatchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err == nil && (result == nil || !result.Success) {
		err = errors.New("provider reported failure")
	}
	if err != nil {
		var perr *models.SMSProviderError
		if !errors.As(err, &perr) {
			perr = &models.SMSProviderError{Provider: name, Err: err}
		}
		if ctx.Err() != nil && !errors.Is(perr.Err, ctx.Err()) {
			perr.Err = errors.Join(perr.Err, ctx.Err())
		}
		observability.SMSDispatch.WithLabelValues(name, observability.StatusError).Inc()
		span.RecordError(perr)
		span.SetStatus(codes.Error, "dispatch failed")
		d.logger.Error("sms dispatch failed",
			zap.String("provider", name),
			zap.String("phone", observability.MaskPhone(parsed.Local)),
			zap.Int("status_code", perr.StatusCode),
			zap.String("payload", perr.Payload),
			zap.Error(perr.Err))
		return failed(name, perr), perr
	}

	observability.SMSDispatch.WithLabelValues(name, observability.StatusSuccess).Inc()
	d.logger.Info("sms dispatched",
		zap.String("provider", name),
		zap.String("phone", observability.MaskPhone(parsed.Local)),
		zap.String("message_id", result.MessageID))
	return result, nil
}

// HealthCheck reports the provider state for diagnostics. It never gates sending.
func (d *Dispatcher) HealthCheck(ctx context.Context) models.ProviderHealth {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	health := models.ProviderHealth{
		Provider:  d.provider.Name(),
		Reachable: d.provider.HealthCheck(ctx),
		Fallback:  d.fallback,
	}
	if d.limiter != nil {
		available, perMinute := d.limiter.Status()
		health.RateLimit = &models.RateLimitStatus{Available: available, PerMinute: perMinute}
	}
	return health
}

func failed(provider string, err error) *models.SMSResult {
	return &models.SMSResult{
		Provider:  provider,
		Timestamp: time.Now().UTC(),
		Error:     err.Error(),
	}
}
