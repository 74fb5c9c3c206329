package metrics

import "go.uber.org/fx"

// Module provides the application metrics collector.
var Module = fx.Provide(New)
