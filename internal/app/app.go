package app

import (
	"go.uber.org/fx"

	"github.com/agah-solutions/forge/internal/cache"
	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/database"
	"github.com/agah-solutions/forge/internal/logger"
	"github.com/agah-solutions/forge/internal/messaging"
	"github.com/agah-solutions/forge/internal/notification"
	"github.com/agah-solutions/forge/internal/observability"
	repositorycatalog "github.com/agah-solutions/forge/internal/repository/catalog"
	repositoryorder "github.com/agah-solutions/forge/internal/repository/order"
	repositoryuser "github.com/agah-solutions/forge/internal/repository/user"
	httpserver "github.com/agah-solutions/forge/internal/server/http"
	servicecatalog "github.com/agah-solutions/forge/internal/service/catalog"
	serviceorder "github.com/agah-solutions/forge/internal/service/order"
	transporthttp "github.com/agah-solutions/forge/internal/transport/http"
	"github.com/agah-solutions/forge/internal/worker"
	workernotifier "github.com/agah-solutions/forge/internal/worker/notifier"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositorycatalog.Module,
	repositoryorder.Module,
	repositoryuser.Module,
	servicecatalog.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background notification processing.
var Worker = fx.Options(
	Core,
	notification.Module,
	worker.Module,
	workernotifier.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
