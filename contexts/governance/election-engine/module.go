package electionengine

import (
	"log/slog"

	httpadapter "ballotbox/contexts/governance/election-engine/adapters/http"
	"ballotbox/contexts/governance/election-engine/adapters/memory"
	"ballotbox/contexts/governance/election-engine/application/commands"
	"ballotbox/contexts/governance/election-engine/application/queries"
	"ballotbox/contexts/governance/election-engine/domain/entities"
	"ballotbox/contexts/governance/election-engine/ports"
)

// DefaultOptions is the ballot used when election creation names no options.
// Mirrors the two-option ballot the system originally shipped with.
var DefaultOptions = []string{"option_a", "option_b"}

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Elections      ports.ElectionRepository
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	DefaultOptions []string
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	options := deps.DefaultOptions
	if len(options) == 0 {
		options = DefaultOptions
	}
	electionUseCase := commands.ElectionUseCase{
		Elections:      deps.Elections,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		DefaultOptions: options,
		Logger:         deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Elections: deps.Elections,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections: electionUseCase,
			Results:   resultsUseCase,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Election, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Elections: store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
