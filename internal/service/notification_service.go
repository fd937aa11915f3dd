package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/recruiting-service/internal/config"
	"github.com/spec-kit/recruiting-service/internal/events"
)

// EmailSender delivers a single message. Implementations are
// best-effort; the caller logs and swallows failures.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogEmailSender writes outgoing mail to the log instead of a mailbox.
type LogEmailSender struct {
	logger *zap.Logger
}

// NewLogEmailSender constructs the sender.
func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

// Send logs the message.
func (s *LogEmailSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info("email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// NotificationService emits candidate notifications for domain events.
// Delivery failures never affect the transition that triggered them.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     EmailSender
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender EmailSender, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCandidateRegistered, n.handleCandidateRegistered)
	n.dispatcher.Subscribe(events.EventCandidateStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleCandidateRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CandidateRegisteredPayload)
	if !ok {
		return nil
	}
	n.logger.Info("CandidateRegistered", zap.String("candidate_id", event.CandidateID))
	body := fmt.Sprintf("Hello %s,\n\nYour application to the %s department was received. "+
		"You can check its progress at any time using your application id: %s.",
		payload.FullName, payload.Department.Display(), event.CandidateID)
	n.sendEmail(ctx, payload.Email, "Application received", body)
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CandidateStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("CandidateStatusChanged",
		zap.String("candidate_id", event.CandidateID),
		zap.String("new_status", string(payload.NewStatus)),
	)
	body := fmt.Sprintf("Your application status is now: %s.", payload.NewStatus.Display())
	if payload.Feedback != "" {
		body += "\n\nFeedback: " + payload.Feedback
	}
	n.sendEmail(ctx, payload.Email, "Application status updated", body)
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmail(ctx context.Context, to, subject, body string) {
	if n.sender == nil || strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		n.logger.Warn("email delivery failed", zap.String("to", to), zap.Error(err))
	}
}

func (n *NotificationService) sendWebhookStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("candidate_id", event.CandidateID),
		zap.String("event_type", string(event.Type)))
}
