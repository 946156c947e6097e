package reviewservice

import (
	"log/slog"
	"time"

	httpadapter "reviewdesk/contexts/listing-moderation/review-service/adapters/http"
	"reviewdesk/contexts/listing-moderation/review-service/adapters/memory"
	"reviewdesk/contexts/listing-moderation/review-service/application/commands"
	"reviewdesk/contexts/listing-moderation/review-service/application/queries"
	"reviewdesk/contexts/listing-moderation/review-service/application/workers"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	PendingSync workers.PendingSync
	Store       *memory.Store
}

type Dependencies struct {
	Submissions    ports.SubmissionRepository
	ChangeSets     ports.ChangeSetRepository
	API            ports.ReviewAPI
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Metrics        ports.DecisionMetrics
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	decisions := commands.DecisionProcessor{
		Submissions: deps.Submissions,
		API:         deps.API,
		Outbox:      deps.Outbox,
		Metrics:     deps.Metrics,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	changeSets := commands.ChangeSetReviewUseCase{
		ChangeSets: deps.ChangeSets,
		API:        deps.API,
		Outbox:     deps.Outbox,
		Metrics:    deps.Metrics,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	bulkApprove := commands.BulkApproveUseCase{
		Decisions:      decisions,
		ChangeSets:     changeSets,
		Coordinator:    commands.BulkCoordinator{Logger: deps.Logger},
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Metrics:        deps.Metrics,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	queryUseCase := queries.QueryUseCase{
		Submissions: deps.Submissions,
		ChangeSets:  deps.ChangeSets,
		Logger:      deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Decisions:   decisions,
			ChangeSets:  changeSets,
			BulkApprove: bulkApprove,
			Queries:     queryUseCase,
			Logger:      deps.Logger,
		},
		PendingSync: workers.PendingSync{
			API:         deps.API,
			Submissions: deps.Submissions,
			Logger:      deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Submission, changeSets []entities.ChangeSet, logger *slog.Logger) Module {
	store := memory.NewStore(seed, changeSets)
	module := NewModule(Dependencies{
		Submissions:    store,
		ChangeSets:     store,
		API:            store,
		Idempotency:    store,
		Outbox:         store,
		Clock:          store,
		IDGen:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
