package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/cache"
	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/messaging"
	catalogrepo "github.com/agah-solutions/forge/internal/repository/catalog"
	repo "github.com/agah-solutions/forge/internal/repository/order"
	"github.com/agah-solutions/forge/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agah-solutions/forge/service/order")

// Repository is the persistence collaborator for orders. It is satisfied by
// the bun-backed repository; tests substitute an in-memory fake.
type Repository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByNumber(ctx context.Context, number string) (*entity.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	SaveItemRecomputeTotals(ctx context.Context, item *entity.OrderItem) (*entity.Order, error)
	Delete(ctx context.Context, number string) error
}

// Catalog resolves service types during checkout.
type Catalog interface {
	GetBySlug(ctx context.Context, slug string) (*entity.ServiceType, error)
}

// Users looks up accounts for operator assignment.
type Users interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

// Service encapsulates the quote-to-completion order workflow.
type Service struct {
	repo           Repository
	catalog        Catalog
	users          Users
	cache          cache.Store
	cacheTTL       time.Duration
	logger         *zap.Logger
	publisher      messaging.Client
	messaging      messagingConfig
	numberAttempts int
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Catalog    Catalog
	Users      Users
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:           p.Repository,
		catalog:        p.Catalog,
		users:          p.Users,
		cache:          p.Cache,
		cacheTTL:       p.Config.Cache.DefaultTTL,
		logger:         p.Logger,
		publisher:      p.Publisher,
		numberAttempts: p.Config.Orders.NumberAttempts,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create runs checkout: validates the payload, prices every item from its
// current inputs, and persists the order in pending state. The order number
// is regenerated on collision up to the configured attempt cap.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	order := &entity.Order{
		State:           entity.StatePending,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		AdditionalNotes: in.AdditionalNotes,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	for _, itemInput := range in.Items {
		item, err := s.buildItem(ctx, itemInput)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	order.RecomputeTotals()

	var err error
	for attempt := 0; attempt < s.numberAttempts; attempt++ {
		order.Number = newOrderNumber()
		err = s.repo.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, repo.ErrDuplicateNumber) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
		}
	}
	if errors.Is(err, repo.ErrDuplicateNumber) {
		return nil, errorbank.Internal("could not allocate an order number", errorbank.WithCause(err))
	}

	span.SetAttributes(attribute.String("order.number", order.Number))

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("number", order.Number), zap.Error(err))
	}

	s.publishEvent(ctx, order, entity.NotifyReceived)
	return order, nil
}

// buildItem resolves the catalog entry and computes the initial quote. The
// estimated unit price is fixed here and never recomputed automatically.
func (s *Service) buildItem(ctx context.Context, in ItemInput) (*entity.OrderItem, error) {
	service, err := s.catalog.GetBySlug(ctx, in.ServiceSlug)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return nil, errorbank.BadRequest(fmt.Sprintf("unknown service %q", in.ServiceSlug))
		}
		return nil, errorbank.Internal("failed to resolve service", errorbank.WithCause(err))
	}

	item := &entity.OrderItem{
		ServiceID:          service.ID,
		ServiceFamily:      service.Family,
		BasePrice:          service.BasePrice,
		Description:        in.Description,
		Quantity:           in.Quantity,
		Length:             nullDecimal(in.Length),
		Width:              nullDecimal(in.Width),
		Height:             nullDecimal(in.Height),
		DesignMinutes:      in.DesignMinutes,
		ProcessMinutes:     in.ProcessMinutes,
		PostProcessMinutes: in.PostProcessMinutes,
		MaterialCost:       nullDecimal(in.MaterialCost),
		MaterialUsedGrams:  nullDecimal(in.MaterialUsedGrams),
		Consumables:        nullDecimal(in.Consumables),
		NeedsCustomDesign:  in.NeedsCustomDesign,
		CustomDesignPrice:  nullDecimal(in.CustomDesignPrice),
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	item.EstimatedUnitPrice = item.UnitPriceEstimate()
	return item, nil
}

// Get retrieves an order by number, consulting cache when available.
func (s *Service) Get(ctx context.Context, number string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	if order, err := s.getFromCache(ctx, number); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("number", number), zap.Error(err))
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

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("number", number), zap.Error(err))
	}

	return order, nil
}

// ListByEmail returns a customer's orders, newest first.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListByEmail")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errorbank.BadRequest("customer email is required")
	}

	orders, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

func newOrderNumber() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func (s *Service) cacheKey(number string) string {
	return fmt.Sprintf("orders:%s", number)
}

func (s *Service) getFromCache(ctx context.Context, number string) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(number))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.Number), bytes, s.cacheTTL)
}

func (s *Service) invalidateCache(ctx context.Context, number string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(number)); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.String("number", number), zap.Error(err))
	}
}
