//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/blueprint/internal/config"
	"github.com/zeusync/blueprint/internal/core/maps"
)

func InitializeLoader(cfg config.Config) (*maps.Loader, error) {
	wire.Build(LoaderSet)
	return nil, nil
}
