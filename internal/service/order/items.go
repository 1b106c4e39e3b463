package order

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/identity"
	repo "github.com/agah-solutions/forge/internal/repository/order"
	"github.com/agah-solutions/forge/pkg/errorbank"
)

// UpdateItemInputs applies operator measurements to an item and recomputes
// its final unit price from the merged inputs. Item write and parent total
// recompute share one transaction. Staff only.
func (s *Service) UpdateItemInputs(ctx context.Context, number string, itemID int64, update ItemPricingUpdate) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateItemInputs", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	if !identity.FromContext(ctx).Staff() {
		return nil, errorbank.Forbidden("only staff can set measured pricing inputs")
	}
	if update.empty() {
		return nil, errorbank.BadRequest("no pricing inputs supplied")
	}
	if err := update.validate(); err != nil {
		return nil, err
	}

	order, item, err := s.loadItem(ctx, number, itemID)
	if err != nil {
		return nil, err
	}
	if order.State.Terminal() {
		return nil, errorbank.Conflict("order is closed")
	}

	applyPricingUpdate(item, update)
	item.FinalUnitPrice = decimal.NewNullDecimal(item.UnitPriceEstimate())

	updated, err := s.repo.SaveItemRecomputeTotals(ctx, item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to save item", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, number)
	return updated, nil
}

// UpdateItemDetails applies customer-facing edits. The estimated unit price
// is never touched and the final unit price is never recomputed here; only
// the aggregate totals move, since quantity and the design charge feed them.
func (s *Service) UpdateItemDetails(ctx context.Context, number string, itemID int64, update ItemDetailsUpdate) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateItemDetails", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	order, item, err := s.loadItem(ctx, number, itemID)
	if err != nil {
		return nil, err
	}
	if order.State.Terminal() {
		return nil, errorbank.Conflict("order is closed")
	}

	if update.Quantity != nil {
		if *update.Quantity < 1 {
			return nil, errorbank.Unprocessable("item quantity must be at least 1")
		}
		item.Quantity = *update.Quantity
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.NeedsCustomDesign != nil {
		item.NeedsCustomDesign = *update.NeedsCustomDesign
	}
	if update.CustomDesignPrice != nil {
		if update.CustomDesignPrice.IsNegative() {
			return nil, errorbank.Unprocessable("custom design price must not be negative")
		}
		item.CustomDesignPrice = decimal.NewNullDecimal(*update.CustomDesignPrice)
	}
	if item.NeedsCustomDesign && !item.CustomDesignPrice.Valid {
		return nil, errorbank.Unprocessable("custom design price is required when custom design is requested")
	}

	updated, err := s.repo.SaveItemRecomputeTotals(ctx, item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to save item", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, number)
	return updated, nil
}

func (s *Service) loadItem(ctx context.Context, number string, itemID int64) (*entity.Order, *entity.OrderItem, error) {
	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, errorbank.NotFound("order not found")
		}
		return nil, nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	for _, item := range order.Items {
		if item.ID == itemID {
			return order, item, nil
		}
	}
	return nil, nil, errorbank.NotFound("order item not found")
}

func applyPricingUpdate(item *entity.OrderItem, update ItemPricingUpdate) {
	if update.Length != nil {
		item.Length = decimal.NewNullDecimal(*update.Length)
	}
	if update.Width != nil {
		item.Width = decimal.NewNullDecimal(*update.Width)
	}
	if update.Height != nil {
		item.Height = decimal.NewNullDecimal(*update.Height)
	}
	if update.DesignMinutes != nil {
		item.DesignMinutes = update.DesignMinutes
	}
	if update.ProcessMinutes != nil {
		item.ProcessMinutes = update.ProcessMinutes
	}
	if update.PostProcessMinutes != nil {
		item.PostProcessMinutes = update.PostProcessMinutes
	}
	if update.MaterialCost != nil {
		item.MaterialCost = decimal.NewNullDecimal(*update.MaterialCost)
	}
	if update.MaterialUsedGrams != nil {
		item.MaterialUsedGrams = decimal.NewNullDecimal(*update.MaterialUsedGrams)
	}
	if update.Consumables != nil {
		item.Consumables = decimal.NewNullDecimal(*update.Consumables)
	}
}
