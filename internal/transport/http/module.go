package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/agah-solutions/forge/internal/transport/http/catalog"
	ordertransport "github.com/agah-solutions/forge/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	catalogtransport.Module,
	ordertransport.Module,
)
