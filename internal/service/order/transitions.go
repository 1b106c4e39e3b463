package order

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/identity"
	"github.com/agah-solutions/forge/internal/notification"
	repo "github.com/agah-solutions/forge/internal/repository/order"
	"github.com/agah-solutions/forge/pkg/errorbank"
)

// staffOnlyStates require an operator to drive the order into them.
// Confirmation and cancellation stay open to the customer.
var staffOnlyStates = map[entity.State]bool{
	entity.StateEstimated:  true,
	entity.StateInProgress: true,
	entity.StateCompleted:  true,
}

// Transition moves an order to a new state. The transition table decides
// which single notification accompanies the move; the event is published
// only after the state is durably stored, and a publish failure never fails
// the transition.
func (s *Service) Transition(ctx context.Context, number string, to entity.State) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Transition", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.to_state", string(to)),
	))
	defer span.End()

	if staffOnlyStates[to] && !identity.FromContext(ctx).Staff() {
		return nil, errorbank.Forbidden("only staff can perform this transition")
	}

	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	kind, err := entity.Transition(order.State, to, order.FinalPriceSet())
	if err != nil {
		return nil, errorbank.Conflict(err.Error(), errorbank.WithCause(err))
	}

	from := order.State
	order.State = to
	if err := s.repo.Update(ctx, order); err != nil {
		order.State = from
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to store transition", errorbank.WithCause(err))
	}

	s.logger.Info("order state changed",
		zap.String("number", order.Number),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	s.invalidateCache(ctx, number)
	s.publishEvent(ctx, order, kind)
	return order, nil
}

// Confirm moves the order into confirmed on behalf of the customer or staff.
func (s *Service) Confirm(ctx context.Context, number string) (*entity.Order, error) {
	return s.Transition(ctx, number, entity.StateConfirmed)
}

// Cancel closes the order from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, number string) (*entity.Order, error) {
	return s.Transition(ctx, number, entity.StateCanceled)
}

// AssignOperator attaches a staff user to the order. Staff only; the target
// account must itself be staff.
func (s *Service) AssignOperator(ctx context.Context, number string, userID int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.AssignOperator", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if !identity.FromContext(ctx).Staff() {
		return nil, errorbank.Forbidden("only staff can assign operators")
	}

	operator, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errorbank.BadRequest("unknown operator", errorbank.WithCause(err))
	}
	if !operator.Staff() {
		return nil, errorbank.Unprocessable("assigned user must be staff")
	}

	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	order.AssignedUserID = &operator.ID
	if err := s.repo.Update(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to assign operator", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, number)
	return order, nil
}

// SetCompletionEstimate records the production lead time quoted to the
// customer. Staff only; the order must still be open.
func (s *Service) SetCompletionEstimate(ctx context.Context, number string, days int) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.SetCompletionEstimate", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int("order.estimated_completion_days", days),
	))
	defer span.End()

	if !identity.FromContext(ctx).Staff() {
		return nil, errorbank.Forbidden("only staff can set the completion estimate")
	}
	if days < 1 {
		return nil, errorbank.Unprocessable("estimated completion days must be at least 1")
	}

	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if order.State.Terminal() {
		return nil, errorbank.Conflict("order is closed")
	}

	order.EstimatedCompletionDays = days
	if err := s.repo.Update(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to store completion estimate", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, number)
	return order, nil
}

// Delete removes an order and its items. Admin only.
func (s *Service) Delete(ctx context.Context, number string) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	if identity.FromContext(ctx).Role != identity.RoleAdmin {
		return errorbank.Forbidden("only admins can delete orders")
	}

	if err := s.repo.Delete(ctx, number); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, number)
	return nil
}

// publishEvent emits a notification event on the order topic. Dispatch is
// best-effort: failures are logged and swallowed so a broker outage never
// rolls back an already committed order mutation.
func (s *Service) publishEvent(ctx context.Context, order *entity.Order, kind entity.NotificationKind) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}

	event := notification.Event{
		Kind:           kind,
		OrderNumber:    order.Number,
		CustomerName:   order.CustomerName,
		CustomerEmail:  order.CustomerEmail,
		EstimatedPrice: order.EstimatedPrice.StringFixed(2),
		OccurredAt:     order.UpdatedAt,
	}
	if order.FinalPrice.Valid {
		event.FinalPrice = order.FinalPrice.Decimal.StringFixed(2)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(order.Number), payload); err != nil {
		s.logger.Error("publish order event",
			zap.String("number", order.Number),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
