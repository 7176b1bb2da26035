package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/caseflow/triage-service/internal/events"
	"github.com/caseflow/triage-service/internal/mailer"
	"github.com/caseflow/triage-service/internal/observability"
	"github.com/caseflow/triage-service/internal/triage"
)

const notificationSubject = "Case Update Notification"

// NotificationService turns case events into requester emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mailer.Sender
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender mailer.Sender, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCaseCreated, n.handleCaseCreated)
	n.dispatcher.Subscribe(events.EventCaseResolved, n.handleCaseResolved)
	n.dispatcher.Subscribe(events.EventCaseEscalated, n.handleCaseEscalated)
	n.dispatcher.Subscribe(events.EventVerificationRequested, n.handleVerificationRequested)
}

func (n *NotificationService) handleCaseCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CaseCreatedPayload)
	if !ok || payload.Action != triage.ActionNotifyRequester {
		return nil
	}
	body := fmt.Sprintf("Login issue reported: %s. Status: %s", event.Case.Description, event.Case.Status)
	return n.send(ctx, event, body)
}

func (n *NotificationService) handleCaseResolved(ctx context.Context, event events.Event) error {
	body := fmt.Sprintf("Case %d resolved: %s", event.CaseID, event.Case.Description)
	return n.send(ctx, event, body)
}

func (n *NotificationService) handleCaseEscalated(ctx context.Context, event events.Event) error {
	body := fmt.Sprintf("Case %d escalated to level %d: %s", event.CaseID, event.Case.EscalationLevel, event.Case.Description)
	return n.send(ctx, event, body)
}

func (n *NotificationService) handleVerificationRequested(ctx context.Context, event events.Event) error {
	body := fmt.Sprintf("Verification requested for case %d: %s. Please provide ID.", event.CaseID, event.Case.Description)
	return n.send(ctx, event, body)
}

func (n *NotificationService) send(ctx context.Context, event events.Event, body string) error {
	if n.sender == nil {
		return nil
	}

	err := n.sender.Send(ctx, mailer.Message{
		To:      event.Case.Email,
		Subject: notificationSubject,
		Body:    body,
	})
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		n.metrics.RecordNotification(string(event.Type), "skipped")
		n.logger.Warn("email credentials not configured, skipping notification",
			zap.Int64("case_id", event.CaseID),
			zap.String("event_type", string(event.Type)))
		return nil
	case err != nil:
		// Failures are logged here only and not returned to the dispatcher.
		n.metrics.RecordNotification(string(event.Type), "failed")
		n.logger.Error("failed to send notification",
			zap.Int64("case_id", event.CaseID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return nil
	}

	n.metrics.RecordNotification(string(event.Type), "sent")
	n.logger.Info("notification sent",
		zap.Int64("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
	return nil
}
