package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/blueprint/internal/config"
	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/component/builtin"
	"github.com/zeusync/blueprint/internal/core/events/bus"
	"github.com/zeusync/blueprint/internal/core/maps"
	"github.com/zeusync/blueprint/internal/core/observability/log"
	"github.com/zeusync/blueprint/internal/core/prototype"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

// LoaderSet provides a Loader with the built-in components, an event bus and
// an in-memory broadphase.
var LoaderSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideOptions,
	prototype.NewStore,
	bus.New,
	physics.NewMemoryBroadphase,
	wire.Bind(new(physics.Broadphase), new(*physics.MemoryBroadphase)),
	maps.NewLoader,
)

func ProvideLogger(cfg config.Config) log.Log {
	logger := log.Provide()
	logger.SetLevel(cfg.Level())
	return logger
}

func ProvideRegistry() (*component.Registry, error) {
	return builtin.NewRegistry()
}

func ProvideOptions(cfg config.Config, logger log.Log, events bus.EventBus, bp physics.Broadphase) maps.Options {
	return maps.Options{
		RunMapInit:    cfg.RunMapInit,
		DecodeWorkers: cfg.DecodeWorkers,
		Logger:        logger,
		Bus:           events,
		Broadphase:    bp,
	}
}
