package catalog

import (
	"go.uber.org/fx"

	repo "github.com/agah-solutions/forge/internal/repository/catalog"
)

// Module provides the catalog service to the fx graph.
var Module = fx.Options(
	fx.Provide(func(r *repo.Repository) Repository { return r }),
	fx.Provide(NewService),
)
