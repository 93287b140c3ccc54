package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/transit-auth-service/internal/config"
	"github.com/spec-kit/transit-auth-service/internal/events"
)

// NotificationService handles emitting notifications for auth events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSessionCreated, n.handleSessionCreated)
	n.dispatcher.Subscribe(events.EventSessionRevoked, n.handleSessionRevoked)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
}

func (n *NotificationService) handleSessionCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionCreated",
		zap.String("session_id", event.SessionID),
		zap.String("principal_id", event.Actor.PrincipalID),
		zap.String("kind", string(event.Actor.Kind)))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionRevoked(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionRevoked",
		zap.String("session_id", event.SessionID),
		zap.String("principal_id", event.Actor.PrincipalID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}
	// The code itself stays out of the logs.
	n.logger.Info("PasswordResetRequested", zap.String("email", payload.Email))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("PasswordChanged",
		zap.String("principal_id", event.Actor.PrincipalID),
		zap.String("kind", string(event.Actor.Kind)))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
