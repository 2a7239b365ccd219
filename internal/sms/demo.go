package sms

import (
	"context"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DemoProvider pretends to deliver every message. It performs no I/O.
type DemoProvider struct {
	logger *logging.SafeLogger
}

// NewDemoProvider creates the no-op provider. A nil logger is allowed.
func NewDemoProvider(logger *logging.SafeLogger) *DemoProvider {
	if logger == nil {
		logger = logging.Logger
	}
	return &DemoProvider{logger: logger}
}

func (p *DemoProvider) Name() string { return string(KindDemo) }

func (p *DemoProvider) SendSMS(_ context.Context, to, message string) (*models.SMSResult, error) {
	id := "demo-" + uuid.NewString()
	p.logger.Info("demo sms not delivered",
		zap.String("message_id", id),
		zap.String("to", observability.MaskPhone(to)))
	// The body carries the verification code.
	p.logger.Debug("demo sms body", zap.String("message_id", id), zap.String("message", message))
	return newResult(p.Name(), id), nil
}

func (p *DemoProvider) HealthCheck(context.Context) bool { return true }
