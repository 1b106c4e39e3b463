package migration

import "go.uber.org/fx"

// Module provides the migrator to the fx graph.
var Module = fx.Provide(New)
