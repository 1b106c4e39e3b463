package seeder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/database"
	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/pricing"
)

// Seeder installs the base catalog and default accounts for local/dev setups.
type Seeder struct {
	db     *bun.DB
	cfg    config.Config
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, cfg config.Config, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, cfg: cfg, logger: logger}
}

// Run applies all seeders.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.Catalog(ctx); err != nil {
		return err
	}
	return s.Users(ctx)
}

// Catalog seeds the five base fabrication services if they are missing.
func (s *Seeder) Catalog(ctx context.Context) error {
	now := time.Now().UTC()
	services := []entity.ServiceType{
		{
			Slug:             "plasma_cutting",
			Name:             "Plasma Cutting",
			ShortDescription: "CNC plasma cutting for steel plate",
			Family:           pricing.FamilyPlasmaCutting,
			Active:           true,
			IsBaseService:    true,
			IsFeatured:       true,
			DisplayOrder:     1,
		},
		{
			Slug:             "laser_cutting",
			Name:             "Laser Cutting",
			ShortDescription: "Laser cutting for thin sheet, acrylic and wood",
			Family:           pricing.FamilyLaserCutting,
			Active:           true,
			IsBaseService:    true,
			IsFeatured:       true,
			DisplayOrder:     2,
		},
		{
			Slug:             "laser_engraving",
			Name:             "Laser Engraving",
			ShortDescription: "Surface engraving on metal, wood and acrylic",
			Family:           pricing.FamilyLaserEngrave,
			Active:           true,
			IsBaseService:    true,
			DisplayOrder:     3,
		},
		{
			Slug:             "3d_printing",
			Name:             "3D Printing (FDM)",
			ShortDescription: "Filament 3D printing for prototypes and parts",
			Family:           pricing.FamilyPrinting3D,
			Active:           true,
			IsBaseService:    true,
			IsFeatured:       true,
			DisplayOrder:     4,
		},
		{
			Slug:             "resin_printing",
			Name:             "Resin Printing (SLA)",
			ShortDescription: "High detail resin printing",
			Family:           pricing.FamilyPrintingResin,
			Active:           true,
			IsBaseService:    true,
			DisplayOrder:     5,
		},
	}

	for _, sample := range services {
		service := sample
		service.BasePrice = decimal.Zero
		service.CreatedAt = now
		service.UpdatedAt = now
		_, err := s.db.NewInsert().Model(&service).
			On("CONFLICT (slug) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded catalog", zap.Int("count", len(services)))
	}
	return nil
}

// Users seeds one admin account from company configuration.
func (s *Seeder) Users(ctx context.Context) error {
	now := time.Now().UTC()
	admin := entity.User{
		Email:     s.cfg.Company.ContactEmail,
		Name:      s.cfg.Company.Name,
		Type:      entity.UserAdmin,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.NewInsert().Model(&admin).
		On("CONFLICT (email) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("seeded admin account", zap.String("email", admin.Email))
	}
	return nil
}
