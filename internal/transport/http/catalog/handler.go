package catalog

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agah-solutions/forge/internal/dto"
	"github.com/agah-solutions/forge/internal/presentation/http/response"
	service "github.com/agah-solutions/forge/internal/service/catalog"
)

var httpTracer = otel.Tracer("github.com/agah-solutions/forge/transport/http/catalog")

// Handler exposes the public catalog over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/services")
	g.GET("", h.list)
	g.GET("/:slug", h.getBySlug)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.list")
	defer span.End()

	services, err := h.svc.ListActive(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromServiceTypes(services)).WithMeta("count", len(services)).Build()
}

func (h *Handler) getBySlug(c echo.Context) error {
	b := response.New(c)
	slug := c.Param("slug")

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.getBySlug", trace.WithAttributes(attribute.String("service.slug", slug)))
	defer span.End()

	svc, err := h.svc.GetBySlug(ctx, slug)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromServiceType(svc)).Build()
}
