package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bizlab-kr/leadbot/internal/flow"
	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/bizlab-kr/leadbot/internal/store"
	"github.com/bizlab-kr/leadbot/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User-facing chat messages.
const (
	msgCodeSent        = "입력하신 번호로 인증번호를 발송했습니다."
	msgCodeResent      = "인증번호를 다시 발송했습니다."
	msgInvalidCode     = "인증번호가 올바르지 않거나 만료되었습니다. 다시 확인해주세요."
	msgDispatchSkipped = "문자 발송이 원활하지 않아 인증 없이 진행합니다."
	msgResendFailed    = "문자 발송에 실패했습니다. 잠시 후 다시 시도해주세요."
	msgAlreadyComplete = "이미 상담 신청이 완료되었습니다."
	msgNotVerifying    = "인증번호 입력 단계가 아닙니다."
)

// FlowSource provides the current compiled flow.
type FlowSource interface {
	Flow(ctx context.Context) (*flow.Graph, error)
}

// PhoneVerifier sends and checks verification codes. *verification.Service satisfies it.
type PhoneVerifier interface {
	Send(ctx context.Context, phone string) (*models.VerificationRecord, *models.SMSResult, error)
	Verify(ctx context.Context, phone, code string) error
}

// ChatService drives chat sessions through the compiled flow.
type ChatService struct {
	flows    FlowSource
	sessions store.SessionStore
	leads    store.LeadStore
	verifier PhoneVerifier
	logger   *logging.SafeLogger
	now      func() time.Time
}

// NewChatService wires the chat state machine.
func NewChatService(flows FlowSource, sessions store.SessionStore, leads store.LeadStore, verifier PhoneVerifier, logger *logging.SafeLogger) *ChatService {
	if logger == nil {
		logger = logging.Logger
	}
	return &ChatService{
		flows:    flows,
		sessions: sessions,
		leads:    leads,
		verifier: verifier,
		logger:   logger.Named("chat"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a session positioned on the first step.
func (s *ChatService) Start(ctx context.Context) (*models.ChatReply, error) {
	graph, err := s.flows.Flow(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	session := &models.ChatSession{
		ID:          uuid.NewString(),
		CurrentStep: graph.Start().ID,
		Fields:      models.LeadFields{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Debug("chat session started", zap.String("session_id", session.ID))
	return reply(graph, session), nil
}

// Get returns the session and the step it waits on.
func (s *ChatService) Get(ctx context.Context, id string) (*models.ChatReply, error) {
	session, graph, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return reply(graph, session), nil
}

// Submit answers the current step. Invalid answers leave the session untouched and come
// back with an error message for the same step.
func (s *ChatService) Submit(ctx context.Context, id, value string) (*models.ChatReply, error) {
	session, graph, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	step, _ := graph.Step(session.CurrentStep)

	if session.Completed || step.IsTerminal() {
		r := reply(graph, session)
		r.Notice = msgAlreadyComplete
		return r, nil
	}

	if err := step.Validate(value); err != nil {
		return s.reprompt(graph, session, err, "invalid")
	}

	notice := ""
	next := ""
	switch {
	case step.IsVerification():
		if err := s.verifier.Verify(ctx, session.Phone, value); err != nil {
			if errors.Is(err, models.ErrInvalidCode) {
				return s.reprompt(graph, session, err, "invalid_code")
			}
			return nil, err
		}
		session.Verified = true
		next = step.Next(value)

	case step.IsPhoneCollector():
		_, _, err := s.verifier.Send(ctx, value)
		switch {
		case err == nil:
			notice = msgCodeSent
			next = step.Next(value)
		case errors.Is(err, models.ErrValidation):
			return s.reprompt(graph, session, err, "invalid")
		case errors.Is(err, models.ErrSMSProvider):
			s.logger.Warn("verification skipped after dispatch failure",
				zap.String("session_id", session.ID), zap.Error(err))
			session.VerificationSkipped = true
			notice = msgDispatchSkipped
			next = skipVerification(graph, step, value)
			observability.ChatTransitions.WithLabelValues("degraded").Inc()
		default:
			return nil, err
		}
		session.Phone = strings.TrimSpace(value)

	default:
		next = step.Next(value)
	}

	if err := session.Fields.Set(step.ID, step.ValueKind(), step.Value(value)); err != nil {
		return s.reprompt(graph, session, err, "invalid")
	}
	session.CurrentStep = next
	session.UpdatedAt = s.now()

	if target, ok := graph.Step(next); ok && target.IsTerminal() {
		if err := s.complete(ctx, session); err != nil {
			return nil, err
		}
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	observability.ChatTransitions.WithLabelValues("advanced").Inc()
	r := reply(graph, session)
	r.Notice = notice
	return r, nil
}

// Resend dispatches a fresh code while the session waits on the verification step.
func (s *ChatService) Resend(ctx context.Context, id string) (*models.ChatReply, error) {
	session, graph, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	step, _ := graph.Step(session.CurrentStep)
	if session.Completed || !step.IsVerification() {
		return nil, models.NewValidationError("step", msgNotVerifying)
	}

	r := reply(graph, session)
	if _, _, err := s.verifier.Send(ctx, session.Phone); err != nil {
		if errors.Is(err, models.ErrSMSProvider) || errors.Is(err, models.ErrValidation) {
			r.Error = msgResendFailed
			return r, nil
		}
		return nil, err
	}
	r.Notice = msgCodeResent
	return r, nil
}

// load fetches the session and the flow, repairing the position when the flow changed
// underneath the session. A repair that leaves nothing to answer captures the lead.
func (s *ChatService) load(ctx context.Context, id string) (*models.ChatSession, *flow.Graph, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	graph, err := s.flows.Flow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := graph.Step(session.CurrentStep); !ok {
		session.CurrentStep = resumeStep(graph, session)
		s.logger.Info("session moved after flow change",
			zap.String("session_id", session.ID),
			zap.String("step", session.CurrentStep))
		if step, _ := graph.Step(session.CurrentStep); step.IsTerminal() && session.LeadID == "" {
			if err := s.complete(ctx, session); err != nil {
				return nil, nil, err
			}
		}
		session.UpdatedAt = s.now()
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, nil, err
		}
	}
	return session, graph, nil
}

// complete persists the lead once.
func (s *ChatService) complete(ctx context.Context, session *models.ChatSession) error {
	if session.LeadID != "" {
		return nil
	}
	now := s.now()
	lead := &models.Lead{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Fields:    session.Fields.Clone(),
		Phone:     session.Phone,
		Verified:  session.Verified,
		CreatedAt: now,
	}
	if session.Verified {
		lead.VerifiedAt = &now
	}
	if session.Phone != "" {
		if parsed, err := utils.ParseKoreanMobile(session.Phone); err == nil {
			lead.PhoneE164 = parsed.E164
		}
	}
	if err := s.leads.Save(ctx, lead); err != nil {
		return err
	}

	session.LeadID = lead.ID
	session.Completed = true
	observability.LeadsCaptured.WithLabelValues(boolLabel(lead.Verified)).Inc()
	s.logger.Info("lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("session_id", session.ID),
		zap.Bool("verified", lead.Verified),
		zap.String("phone", observability.MaskPhone(lead.Phone)))
	s.logger.Debug("lead fields", zap.String("lead_id", lead.ID), zap.Any("fields", maskedFields(lead)))
	return nil
}

func maskedFields(lead *models.Lead) map[string]any {
	fields := make(map[string]any, len(lead.Fields))
	var phoneKeys []string
	for k, v := range lead.Fields {
		fields[k] = v.Text()
		if lead.Phone != "" && v.Text() == lead.Phone {
			phoneKeys = append(phoneKeys, k)
		}
	}
	return observability.MaskSensitiveData(fields, phoneKeys...)
}

func (s *ChatService) reprompt(graph *flow.Graph, session *models.ChatSession, err error, outcome string) (*models.ChatReply, error) {
	observability.ChatTransitions.WithLabelValues(outcome).Inc()
	r := reply(graph, session)
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		r.Error = verr.Message
	case errors.Is(err, models.ErrInvalidCode):
		r.Error = msgInvalidCode
	default:
		r.Error = err.Error()
	}
	return r, nil
}

// skipVerification resolves where a phone step leads when no code could be sent.
func skipVerification(graph *flow.Graph, phone *flow.Step, value string) string {
	next := phone.Next(value)
	if verify, ok := graph.Step(next); ok && verify.IsVerification() {
		return verify.Next("")
	}
	return next
}

// resumeStep picks the first real step the session has not answered yet.
func resumeStep(graph *flow.Graph, session *models.ChatSession) string {
	for _, id := range graph.Order() {
		step, _ := graph.Step(id)
		if step.Synthetic || step.IsTerminal() {
			continue
		}
		if _, answered := session.Fields[id]; !answered {
			return id
		}
	}
	return graph.Terminal()
}

func reply(graph *flow.Graph, session *models.ChatSession) *models.ChatReply {
	step, _ := graph.Step(session.CurrentStep)
	return &models.ChatReply{Session: session, Step: step.View()}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
