package ballotengine

import (
	"log/slog"

	httpadapter "clubvote/contexts/club-elections/ballot-engine/adapters/http"
	"clubvote/contexts/club-elections/ballot-engine/adapters/memory"
	"clubvote/contexts/club-elections/ballot-engine/adapters/receipts"
	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	"clubvote/contexts/club-elections/ballot-engine/application/queries"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ledger    ports.Ledger
	Reader    ports.LedgerReader
	Receipts  ports.ReceiptIssuer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Telemetry ports.Telemetry
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	admission := commands.AdmissionUseCase{
		Ledger:    deps.Ledger,
		Receipts:  deps.Receipts,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Telemetry: deps.Telemetry,
		Logger:    deps.Logger,
	}
	roster := commands.RosterUseCase{
		Ledger:    deps.Ledger,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Telemetry: deps.Telemetry,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Admission: admission,
			Roster:    roster,
			Tally:     queries.TallyUseCase{Ledger: deps.Reader, Logger: deps.Logger},
			Receipts:  queries.ReceiptUseCase{Ledger: deps.Reader, Logger: deps.Logger},
			Ballots:   queries.BallotUseCase{Ledger: deps.Reader, Clock: deps.Clock},
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:   store,
		Reader:   store,
		Receipts: receipts.Issuer{},
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
