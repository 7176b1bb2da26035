package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/triage-service/internal/domain"
)

func TestPublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("smtp down")

	var seen []string
	d.Subscribe(EventCaseResolved, func(ctx context.Context, e Event) error {
		seen = append(seen, "first")
		return boom
	})
	d.Subscribe(EventCaseResolved, func(ctx context.Context, e Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventCaseEscalated, func(ctx context.Context, e Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewCaseEvent(EventCaseResolved, domain.Case{ID: 3}, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), NewCaseEvent(EventCaseCreated, domain.Case{ID: 1}, nil)))
}

func TestNewCaseEvent(t *testing.T) {
	c := domain.Case{ID: 42, Email: "test@example.com", Status: domain.CaseStatusEscalated}
	e := NewCaseEvent(EventCaseEscalated, c, CaseTransitionPayload{OldStatus: domain.CaseStatusPending, NewStatus: domain.CaseStatusEscalated})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(42), e.CaseID)
	assert.Equal(t, "test@example.com", e.Case.Email)
	assert.False(t, e.Timestamp.IsZero())
	assert.NotEqual(t, e.ID, NewCaseEvent(EventCaseEscalated, c, nil).ID)
}
