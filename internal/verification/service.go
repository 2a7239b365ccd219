package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/bizlab-kr/leadbot/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultTTL   = 3 * time.Minute
	DefaultBrand = "창업컨설팅"
)

// Sender delivers a text message. *sms.Dispatcher satisfies it.
type Sender interface {
	SendSMS(ctx context.Context, phone, message string) (*models.SMSResult, error)
}

// Config tunes the Service. Zero values select the defaults.
type Config struct {
	TTL   time.Duration
	Brand string
	Now   func() time.Time
}

// Service runs the issue/send/verify protocol over a Store.
type Service struct {
	store    Store
	sender   Sender
	ttl      time.Duration
	brand    string
	now      func() time.Time
	generate func() (string, error)
	logger   *logging.SafeLogger
}

func NewService(store Store, sender Sender, cfg Config, logger *logging.SafeLogger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Brand == "" {
		cfg.Brand = DefaultBrand
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = logging.Logger
	}
	return &Service{
		store:    store,
		sender:   sender,
		ttl:      cfg.TTL,
		brand:    cfg.Brand,
		now:      cfg.Now,
		generate: utils.GenerateVerificationCode,
		logger:   logger.Named("verification"),
	}
}

// TTL returns how long an issued code stays valid.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// NormalizePhone returns the storage key for phone: digits only, in the domestic form.
func NormalizePhone(phone string) string {
	return utils.ToLocal(phone)
}

// Issue stores a fresh code for phone, superseding any previous one, and returns it.
func (s *Service) Issue(ctx context.Context, phone string) (*models.VerificationRecord, error) {
	key := NormalizePhone(phone)
	if key == "" {
		observability.Verifications.WithLabelValues("issue", "invalid").Inc()
		return nil, models.NewValidationError("phone", "휴대폰 번호를 입력해주세요.")
	}

	code, err := s.generate()
	if err != nil {
		observability.Verifications.WithLabelValues("issue", observability.StatusError).Inc()
		return nil, err
	}

	now := s.now()
	rec := models.VerificationRecord{
		Phone:     key,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		observability.Verifications.WithLabelValues("issue", observability.StatusError).Inc()
		return nil, err
	}

	observability.Verifications.WithLabelValues("issue", observability.StatusSuccess).Inc()
	return &rec, nil
}

// Message renders the SMS body carrying code.
func (s *Service) Message(code string) string {
	return fmt.Sprintf("[%s] 인증번호 [%s]를 입력해주세요.", s.brand, code)
}

// Send validates phone, issues a code and dispatches it. When dispatch fails the record
// stays pending and the user may request another send.
func (s *Service) Send(ctx context.Context, phone string) (*models.VerificationRecord, *models.SMSResult, error) {
	if _, err := utils.ParseKoreanMobile(phone); err != nil {
		observability.Verifications.WithLabelValues("send", "invalid").Inc()
		return nil, nil, err
	}

	rec, err := s.Issue(ctx, phone)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.sender.SendSMS(ctx, phone, s.Message(rec.Code))
	if err != nil {
		observability.Verifications.WithLabelValues("send", observability.StatusError).Inc()
		return rec, result, err
	}

	observability.Verifications.WithLabelValues("send", observability.StatusSuccess).Inc()
	s.logger.Debug("verification code sent",
		zap.String("phone", observability.MaskPhone(rec.Phone)),
		zap.Time("expires_at", rec.ExpiresAt))
	return rec, result, nil
}

// Verify consumes the pending code for phone. Every failure is an *models.InvalidCodeError
// unless the store itself fails.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	key := NormalizePhone(phone)
	code = utils.NormalizeCode(code)
	if key == "" || len(code) != models.VerificationCodeLength {
		observability.Verifications.WithLabelValues("verify", "rejected").Inc()
		return &models.InvalidCodeError{}
	}

	ok, err := s.store.Consume(ctx, key, code, s.now())
	if err != nil {
		observability.Verifications.WithLabelValues("verify", observability.StatusError).Inc()
		return err
	}
	if !ok {
		observability.Verifications.WithLabelValues("verify", "rejected").Inc()
		return &models.InvalidCodeError{}
	}

	observability.Verifications.WithLabelValues("verify", observability.StatusSuccess).Inc()
	return nil
}
