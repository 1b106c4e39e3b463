package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agah-solutions/forge/internal/database"
	"github.com/agah-solutions/forge/internal/entity"
)

var repoTracer = otel.Tracer("github.com/agah-solutions/forge/repository/catalog")

// ErrNotFound is returned when a service type is missing.
var ErrNotFound = errors.New("service type not found")

// Repository reads and writes catalog entries.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// ListActive returns active service types in display order.
func (r *Repository) ListActive(ctx context.Context) ([]*entity.ServiceType, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListActive")
	defer span.End()

	var services []*entity.ServiceType
	err := r.reader.NewSelect().Model(&services).
		Where("active = ?", true).
		Order("display_order ASC", "name ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return services, nil
}

// GetBySlug fetches one active service type.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*entity.ServiceType, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetBySlug", trace.WithAttributes(attribute.String("service.slug", slug)))
	defer span.End()

	service := new(entity.ServiceType)
	err := r.reader.NewSelect().Model(service).
		Where("slug = ?", slug).
		Where("active = ?", true).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return service, nil
}

// GetByID fetches one service type by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.ServiceType, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetByID", trace.WithAttributes(attribute.Int64("service.id", id)))
	defer span.End()

	service := new(entity.ServiceType)
	err := r.reader.NewSelect().Model(service).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return service, nil
}
