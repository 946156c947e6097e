package workers

import (
	"context"
	"log/slog"

	application "reviewdesk/contexts/listing-moderation/review-service/application"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

// PendingSync pulls submissions awaiting review from the listing API into the
// local store.
type PendingSync struct {
	API         ports.ReviewAPI
	Submissions ports.SubmissionRepository
	Logger      *slog.Logger
}

func (w PendingSync) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(w.Logger)
	items, err := w.API.FetchPendingSubmissions(ctx)
	if err != nil {
		logger.Error("pending submissions fetch failed",
			"event", "review_pending_fetch_failed",
			"module", "listing-moderation/review-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	synced := 0
	for _, item := range items {
		if err := w.Submissions.UpsertSubmission(ctx, item); err != nil {
			logger.Error("pending submission upsert failed",
				"event", "review_pending_upsert_failed",
				"module", "listing-moderation/review-service",
				"layer", "worker",
				"submission_id", item.ID,
				"error", err.Error(),
			)
			return synced, err
		}
		synced++
	}

	if synced > 0 {
		logger.Info("pending submissions synced",
			"event", "review_pending_synced",
			"module", "listing-moderation/review-service",
			"layer", "worker",
			"synced_count", synced,
		)
	}
	return synced, nil
}
