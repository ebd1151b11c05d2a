package badges

import (
	"context"

	"github.com/google/uuid"
)

// Dispatcher runs badge evaluation for triggers that happen outside the
// attendance transaction.
type Dispatcher interface {
	Dispatch(ctx context.Context, profileID uuid.UUID, trigger Trigger) error
}

// InlineDispatcher evaluates immediately and returns any error.
type InlineDispatcher struct {
	svc *Service
}

func NewInlineDispatcher(svc *Service) *InlineDispatcher {
	return &InlineDispatcher{svc: svc}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, profileID uuid.UUID, trigger Trigger) error {
	_, err := d.svc.CheckAndAward(ctx, profileID, trigger)
	return err
}

var _ Dispatcher = (*InlineDispatcher)(nil)
