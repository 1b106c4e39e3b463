package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agah-solutions/forge/internal/dto"
	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/presentation/http/response"
	service "github.com/agah-solutions/forge/internal/service/order"
	"github.com/agah-solutions/forge/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/agah-solutions/forge/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("", h.listByEmail)
	g.GET("/:number", h.getByNumber)
	g.DELETE("/:number", h.remove)
	g.POST("/:number/confirm", h.confirm)
	g.POST("/:number/cancel", h.cancel)
	g.POST("/:number/transition", h.transition)
	g.POST("/:number/assign", h.assign)
	g.PATCH("/:number", h.update)
	g.PATCH("/:number/items/:item_id", h.updateItemDetails)
	g.PATCH("/:number/items/:item_id/inputs", h.updateItemInputs)
}

type itemPayload struct {
	Service     string `json:"service"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`

	Length *decimal.Decimal `json:"length_in"`
	Width  *decimal.Decimal `json:"width_in"`
	Height *decimal.Decimal `json:"height_in"`

	DesignMinutes      *int             `json:"design_minutes"`
	ProcessMinutes     *int             `json:"process_minutes"`
	PostProcessMinutes *int             `json:"post_process_minutes"`
	MaterialCost       *decimal.Decimal `json:"material_cost"`
	MaterialUsedGrams  *decimal.Decimal `json:"material_used_grams"`
	Consumables        *decimal.Decimal `json:"consumables"`

	NeedsCustomDesign bool             `json:"needs_custom_design"`
	CustomDesignPrice *decimal.Decimal `json:"custom_design_price"`
}

type createPayload struct {
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	AdditionalNotes string        `json:"additional_notes"`
	Items           []itemPayload `json:"items"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	in := service.CreateInput{
		CustomerName:    payload.CustomerName,
		CustomerEmail:   payload.CustomerEmail,
		CustomerPhone:   payload.CustomerPhone,
		AdditionalNotes: payload.AdditionalNotes,
	}
	for _, item := range payload.Items {
		in.Items = append(in.Items, service.ItemInput{
			ServiceSlug:        item.Service,
			Description:        item.Description,
			Quantity:           item.Quantity,
			Length:             item.Length,
			Width:              item.Width,
			Height:             item.Height,
			DesignMinutes:      item.DesignMinutes,
			ProcessMinutes:     item.ProcessMinutes,
			PostProcessMinutes: item.PostProcessMinutes,
			MaterialCost:       item.MaterialCost,
			MaterialUsedGrams:  item.MaterialUsedGrams,
			Consumables:        item.Consumables,
			NeedsCustomDesign:  item.NeedsCustomDesign,
			CustomDesignPrice:  item.CustomDesignPrice,
		})
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	order, err := h.svc.Create(ctx, in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) getByNumber(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := h.svc.Get(ctx, number)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) listByEmail(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listByEmail")
	defer span.End()

	orders, err := h.svc.ListByEmail(ctx, c.QueryParam("email"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrders(orders)).WithMeta("count", len(orders)).Build()
}

func (h *Handler) confirm(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.confirm", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := h.svc.Confirm(ctx, number)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) cancel(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.cancel", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := h.svc.Cancel(ctx, number)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) transition(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	var payload struct {
		State string `json:"state"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	state, err := entity.ParseState(payload.State)
	if err != nil {
		return b.WithError(errorbank.BadRequest(err.Error())).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.transition", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.to_state", payload.State),
	))
	defer span.End()

	order, err := h.svc.Transition(ctx, number, state)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) assign(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	var payload struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.assign", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int64("user.id", payload.UserID),
	))
	defer span.End()

	order, err := h.svc.AssignOperator(ctx, number, payload.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) updateItemDetails(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid item id", errorbank.WithCause(err))).Build()
	}

	var payload struct {
		Description       *string          `json:"description"`
		Quantity          *int             `json:"quantity"`
		NeedsCustomDesign *bool            `json:"needs_custom_design"`
		CustomDesignPrice *decimal.Decimal `json:"custom_design_price"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateItemDetails", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	order, err := h.svc.UpdateItemDetails(ctx, number, itemID, service.ItemDetailsUpdate{
		Description:       payload.Description,
		Quantity:          payload.Quantity,
		NeedsCustomDesign: payload.NeedsCustomDesign,
		CustomDesignPrice: payload.CustomDesignPrice,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	var payload struct {
		EstimatedCompletionDays int `json:"estimated_completion_days"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int("order.estimated_completion_days", payload.EstimatedCompletionDays),
	))
	defer span.End()

	order, err := h.svc.SetCompletionEstimate(ctx, number, payload.EstimatedCompletionDays)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) updateItemInputs(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid item id", errorbank.WithCause(err))).Build()
	}

	var payload struct {
		Length             *decimal.Decimal `json:"length_in"`
		Width              *decimal.Decimal `json:"width_in"`
		Height             *decimal.Decimal `json:"height_in"`
		DesignMinutes      *int             `json:"design_minutes"`
		ProcessMinutes     *int             `json:"process_minutes"`
		PostProcessMinutes *int             `json:"post_process_minutes"`
		MaterialCost       *decimal.Decimal `json:"material_cost"`
		MaterialUsedGrams  *decimal.Decimal `json:"material_used_grams"`
		Consumables        *decimal.Decimal `json:"consumables"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateItemPricing", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	order, err := h.svc.UpdateItemInputs(ctx, number, itemID, service.ItemPricingUpdate{
		Length:             payload.Length,
		Width:              payload.Width,
		Height:             payload.Height,
		DesignMinutes:      payload.DesignMinutes,
		ProcessMinutes:     payload.ProcessMinutes,
		PostProcessMinutes: payload.PostProcessMinutes,
		MaterialCost:       payload.MaterialCost,
		MaterialUsedGrams:  payload.MaterialUsedGrams,
		Consumables:        payload.Consumables,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)
	number := c.Param("number")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	if err := h.svc.Delete(ctx, number); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}
