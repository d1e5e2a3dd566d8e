package mapping

import (
	"go.uber.org/zap"

	"enricher/internal/common"
	"enricher/internal/handler"
	"enricher/internal/keys"
	"enricher/internal/operation"
	"enricher/internal/strategy"
)

// Registries holds the named components definitions refer to.
type Registries struct {
	Handlers      *common.Registry[operation.AssembleHandler]
	Disassemblers *common.Registry[operation.DisassembleHandler]
	Strategies    *common.Registry[operation.MappingStrategy]
	KeyResolvers  *common.Registry[operation.KeyResolverProvider]
}

// DefaultRegistries returns registries holding the built-in components.
func DefaultRegistries(logger *zap.Logger) Registries {
	return Registries{
		Handlers:      handler.NewRegistry(logger),
		Disassemblers: handler.NewDisassembleRegistry(),
		Strategies:    strategy.NewRegistry(),
		KeyResolvers:  keys.NewRegistry(),
	}
}
