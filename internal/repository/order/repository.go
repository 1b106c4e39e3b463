package order

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agah-solutions/forge/internal/database"
	"github.com/agah-solutions/forge/internal/entity"
)

var repoTracer = otel.Tracer("github.com/agah-solutions/forge/repository/order")

// ErrNotFound is returned when an order or item is missing.
var ErrNotFound = errors.New("order not found")

// ErrDuplicateNumber signals an order-number collision; callers regenerate
// the number and retry.
var ErrDuplicateNumber = errors.New("order number already exists")

// Repository encapsulates read/write access for orders and their items.
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

// Create persists a new order together with its items in one transaction.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.number", order.Number)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		for _, item := range order.Items {
			item.OrderID = order.ID
		}
		if len(order.Items) > 0 {
			if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "number collision")
			return ErrDuplicateNumber
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// GetByNumber fetches an order with its items using the read replica.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Items").
		Where("number = ?", number).
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
	return order, nil
}

// ListByEmail returns the customer's orders, newest first, without items.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByEmail")
	defer span.End()

	var orders []*entity.Order
	err := r.reader.NewSelect().Model(&orders).
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// Update persists order-level mutations (state, totals, assignment, notes).
// The order number is immutable and deliberately excluded.
func (r *Repository) Update(ctx context.Context, order *entity.Order) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.String("order.number", order.Number)))
	defer span.End()

	order.UpdatedAt = time.Now().UTC()
	res, err := r.writer.NewUpdate().Model(order).
		Column("state", "estimated_price", "final_price", "estimated_completion_days", "additional_notes", "assigned_user_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveItemRecomputeTotals writes an item and rederives the parent totals in
// the same transaction, so readers never observe an item change without the
// matching aggregate update. The refreshed order is returned.
func (r *Repository) SaveItemRecomputeTotals(ctx context.Context, item *entity.OrderItem) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.SaveItemRecomputeTotals", trace.WithAttributes(attribute.Int64("item.id", item.ID)))
	defer span.End()

	order := new(entity.Order)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		item.UpdatedAt = time.Now().UTC()
		res, err := tx.NewUpdate().Model(item).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return ErrNotFound
		}

		if err := tx.NewSelect().Model(order).
			Relation("Items").
			Where("id = ?", item.OrderID).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		order.RecomputeTotals()
		order.UpdatedAt = time.Now().UTC()
		_, err = tx.NewUpdate().Model(order).
			Column("estimated_price", "final_price", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "transaction failed")
		}
		return nil, err
	}
	return order, nil
}

// Delete removes an order; the schema cascades to its items.
func (r *Repository) Delete(ctx context.Context, number string) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Order)(nil)).
		Where("number = ?", number).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
