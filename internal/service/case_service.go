package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/caseflow/triage-service/internal/classifier"
	"github.com/caseflow/triage-service/internal/domain"
	"github.com/caseflow/triage-service/internal/events"
	"github.com/caseflow/triage-service/internal/observability"
	"github.com/caseflow/triage-service/internal/repository"
	"github.com/caseflow/triage-service/internal/triage"
	apperrors "github.com/caseflow/triage-service/pkg/util"
)

// CaseService coordinates case intake and lifecycle transitions.
type CaseService struct {
	cases      repository.CaseRepository
	classifier classifier.Classifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	CaseRepo   repository.CaseRepository
	Classifier classifier.Classifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// ClassifyInput is a raw case submission.
type ClassifyInput struct {
	Description string
	Email       string
	Priority    string
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &CaseService{
		cases:      deps.CaseRepo,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        now,
	}
}

// Classify validates the submission, labels it, applies the triage rules and stores the case.
// Nothing is persisted when validation or classification fails.
func (s *CaseService) Classify(ctx context.Context, input ClassifyInput) (*domain.Case, error) {
	description, email, priority, err := validateSubmission(input)
	if err != nil {
		return nil, err
	}

	label, err := s.classifier.Classify(ctx, description)
	if err != nil {
		s.logger.Error("classification failed", zap.Error(err))
		return nil, apperrors.NewServiceUnavailable(err)
	}

	// Case and trailing punctuation are folded onto the known labels so "fraud." still
	// triggers the Fraud rule; any other label is stored as returned.
	category := domain.NormalizeCategory(label)
	if !category.Known() {
		s.logger.Warn("classifier returned unrecognized category", zap.String("label", label))
	}
	decision := triage.Decide(category)

	now := s.timestamp()
	c := &domain.Case{
		Description: description,
		Email:       email,
		Priority:    priority,
		Category:    category,
		Status:      decision.Status,
		CreatedAt:   now,
	}
	if c.Status == domain.CaseStatusResolved {
		c.ResolvedAt = &now
	}

	if err := s.cases.Create(ctx, c); err != nil {
		s.logger.Error("failed to store case", zap.Error(err))
		return nil, apperrors.NewServiceUnavailable(err)
	}

	s.logger.Info(decision.Action.Describe(),
		zap.Int64("case_id", c.ID),
		zap.String("category", string(c.Category)),
		zap.String("status", string(c.Status)))
	s.metrics.RecordCaseCreated(string(c.Category), string(c.Status))

	s.publishEvent(ctx, events.NewCaseEvent(events.EventCaseCreated, *c, events.CaseCreatedPayload{
		Action:   decision.Action,
		Category: c.Category,
		Status:   c.Status,
	}))
	return c, nil
}

// List returns every case, newest first.
func (s *CaseService) List(ctx context.Context) ([]domain.Case, error) {
	return s.Filter(ctx, repository.CaseFilter{})
}

// Filter returns the cases matching all non-empty criteria, newest first.
func (s *CaseService) Filter(ctx context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	cases, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return cases, nil
}

// Get loads a single case.
func (s *CaseService) Get(ctx context.Context, id int64) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, mapCaseError(err, id)
	}
	return c, nil
}

// Stats aggregates the whole store. An empty store yields zeros.
func (s *CaseService) Stats(ctx context.Context) (*domain.CaseStats, error) {
	stats, err := s.cases.Stats(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stats, nil
}

// Insights reports resolution speed and the busiest category.
func (s *CaseService) Insights(ctx context.Context) (*domain.CaseInsights, error) {
	insights, err := s.cases.Insights(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return insights, nil
}

// Resolve marks a case resolved. The first resolution time is kept for good.
func (s *CaseService) Resolve(ctx context.Context, id int64) (*domain.Case, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsResolved() {
		return nil, apperrors.NewInvalidTransition("case already resolved", map[string]any{"id": id})
	}

	old := c.Status
	c.Status = domain.CaseStatusResolved
	if c.ResolvedAt == nil {
		now := s.timestamp()
		c.ResolvedAt = &now
	}
	if err := s.update(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("resolve")
	s.publishEvent(ctx, events.NewCaseEvent(events.EventCaseResolved, *c, events.CaseTransitionPayload{OldStatus: old, NewStatus: c.Status}))
	return c, nil
}

// Escalate bumps the escalation level up to domain.MaxEscalationLevel.
func (s *CaseService) Escalate(ctx context.Context, id int64) (*domain.Case, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanEscalate() {
		return nil, apperrors.NewInvalidTransition("case already at maximum escalation level", map[string]any{
			"id":               id,
			"escalation_level": c.EscalationLevel,
		})
	}

	old := c.Status
	c.EscalationLevel++
	c.Status = domain.CaseStatusEscalated
	if err := s.update(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("escalate")
	s.publishEvent(ctx, events.NewCaseEvent(events.EventCaseEscalated, *c, events.CaseTransitionPayload{OldStatus: old, NewStatus: c.Status}))
	return c, nil
}

// Verify asks the requester for identity documents.
func (s *CaseService) Verify(ctx context.Context, id int64) (*domain.Case, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsResolved() {
		return nil, apperrors.NewInvalidTransition("case already resolved", map[string]any{"id": id})
	}

	old := c.Status
	c.Status = domain.CaseStatusVerificationRequested
	if err := s.update(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("verify")
	s.publishEvent(ctx, events.NewCaseEvent(events.EventVerificationRequested, *c, events.CaseTransitionPayload{OldStatus: old, NewStatus: c.Status}))
	return c, nil
}

func (s *CaseService) update(ctx context.Context, c *domain.Case) error {
	if err := s.cases.Update(ctx, c); err != nil {
		return mapCaseError(err, c.ID)
	}
	return nil
}

func (s *CaseService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("case_id", event.CaseID),
			zap.Error(err))
	}
}

func mapCaseError(err error, id int64) error {
	if errors.Is(err, repository.ErrCaseNotFound) {
		return apperrors.NewNotFound("case", map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}

func validateSubmission(input ClassifyInput) (string, string, domain.CasePriority, error) {
	details := map[string]any{}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		details["description"] = "must not be empty"
	}

	email := strings.TrimSpace(input.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		details["email"] = "must be a valid email address"
	}

	priority := domain.CasePriority(strings.TrimSpace(input.Priority))
	if !priority.Valid() {
		details["priority"] = "must be one of Low, Medium, High"
	}

	if len(details) > 0 {
		return "", "", "", apperrors.NewValidationError("invalid case submission", details)
	}
	return description, email, priority, nil
}
