package order

import (
	"go.uber.org/fx"

	catalogrepo "github.com/agah-solutions/forge/internal/repository/catalog"
	orderrepo "github.com/agah-solutions/forge/internal/repository/order"
	userrepo "github.com/agah-solutions/forge/internal/repository/user"
)

// Module provides the order service and its collaborator bindings to Fx.
var Module = fx.Options(
	fx.Provide(func(r *orderrepo.Repository) Repository { return r }),
	fx.Provide(func(r *catalogrepo.Repository) Catalog { return r }),
	fx.Provide(func(r *userrepo.Repository) Users { return r }),
	fx.Provide(NewService),
)
