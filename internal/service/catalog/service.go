package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/cache"
	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/entity"
	repo "github.com/agah-solutions/forge/internal/repository/catalog"
	"github.com/agah-solutions/forge/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agah-solutions/forge/service/catalog")

const listCacheKey = "catalog:active"

// Repository is the persistence collaborator for the catalog.
type Repository interface {
	ListActive(ctx context.Context) ([]*entity.ServiceType, error)
	GetBySlug(ctx context.Context, slug string) (*entity.ServiceType, error)
}

// Service exposes the public fabrication catalog. The active list changes
// rarely, so it is served from cache when one is configured.
type Service struct {
	repo     Repository
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// ListActive returns the orderable service types in display order.
func (s *Service) ListActive(ctx context.Context) ([]*entity.ServiceType, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListActive")
	defer span.End()

	if services, err := s.listFromCache(ctx); err == nil {
		return services, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.Error(err))
	}

	services, err := s.repo.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list services", errorbank.WithCause(err))
	}

	if err := s.storeList(ctx, services); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
	return services, nil
}

// GetBySlug returns one active service type.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*entity.ServiceType, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetBySlug", trace.WithAttributes(attribute.String("service.slug", slug)))
	defer span.End()

	service, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("service not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load service", errorbank.WithCause(err))
	}
	return service, nil
}

func (s *Service) listFromCache(ctx context.Context) ([]*entity.ServiceType, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, listCacheKey)
	if err != nil {
		return nil, err
	}
	var services []*entity.ServiceType
	if err := json.Unmarshal(bytes, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Service) storeList(ctx context.Context, services []*entity.ServiceType) error {
	if s.cache == nil {
		return nil
	}
	bytes, err := json.Marshal(services)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, listCacheKey, bytes, s.cacheTTL)
}
