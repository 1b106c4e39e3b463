package seeder

import "go.uber.org/fx"

// Module provides the seeder to the fx graph.
var Module = fx.Provide(New)
