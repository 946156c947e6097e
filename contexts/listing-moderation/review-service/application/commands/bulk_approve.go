package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "reviewdesk/contexts/listing-moderation/review-service/application"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult partitions the requested ids by outcome, each side in request
// order.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkCoordinator runs one operation per id, strictly one at a time. A
// failure is recorded against its id and the batch moves on; nothing already
// applied is rolled back.
type BulkCoordinator struct {
	Logger *slog.Logger
}

func (c BulkCoordinator) Run(ctx context.Context, ids []string, op func(context.Context, string) error) BulkResult {
	logger := application.ResolveLogger(c.Logger)
	result := BulkResult{
		Succeeded: make([]string, 0, len(ids)),
		Failed:    make([]BulkFailure, 0),
	}
	for _, rawID := range ids {
		targetID := strings.TrimSpace(rawID)
		if targetID == "" {
			result.Failed = append(result.Failed, BulkFailure{ID: rawID, Reason: domainerrors.ErrInvalidInput.Error()})
			continue
		}
		if err := op(ctx, targetID); err != nil {
			logger.Warn("bulk item failed",
				"event", "review_bulk_item_failed",
				"module", "listing-moderation/review-service",
				"layer", "application",
				"target_id", targetID,
				"error", err.Error(),
			)
			result.Failed = append(result.Failed, BulkFailure{ID: targetID, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, targetID)
	}
	return result
}

type BulkApproveCommand struct {
	IdempotencyKey string
	ReviewerID     string
	IDs            []string
	Notes          string
}

type BulkApproveUseCase struct {
	Decisions      DecisionProcessor
	ChangeSets     ChangeSetReviewUseCase
	Coordinator    BulkCoordinator
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Metrics        ports.DecisionMetrics
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (uc BulkApproveUseCase) ApproveSubmissions(ctx context.Context, cmd BulkApproveCommand) (BulkResult, error) {
	reviewerID := strings.TrimSpace(cmd.ReviewerID)
	return uc.execute(ctx, "bulk_approve_submissions", cmd, func(ctx context.Context, id string) error {
		_, err := uc.Decisions.ApproveSubmission(ctx, ApproveSubmissionCommand{
			SubmissionID: id,
			ActorID:      reviewerID,
		})
		return err
	})
}

func (uc BulkApproveUseCase) ApproveChangeSets(ctx context.Context, cmd BulkApproveCommand) (BulkResult, error) {
	reviewerID := strings.TrimSpace(cmd.ReviewerID)
	notes := strings.TrimSpace(cmd.Notes)
	return uc.execute(ctx, "bulk_approve_change_sets", cmd, func(ctx context.Context, id string) error {
		_, err := uc.ChangeSets.Approve(ctx, ReviewChangeSetCommand{
			ChangeSetID: id,
			ReviewerID:  reviewerID,
			Notes:       notes,
		})
		return err
	})
}

func (uc BulkApproveUseCase) execute(
	ctx context.Context,
	operationType string,
	cmd BulkApproveCommand,
	op func(context.Context, string) error,
) (BulkResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.ReviewerID) == "" {
		return BulkResult{}, domainerrors.ErrUnauthorizedActor
	}
	if len(cmd.IDs) == 0 {
		return BulkResult{}, domainerrors.ErrEmptyBulkSelection
	}

	key := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := hashBulkApproveCommand(operationType, cmd)
	now := uc.now()
	if key != "" && uc.Idempotency != nil {
		record, found, err := uc.Idempotency.Get(ctx, key, now)
		if err != nil {
			return BulkResult{}, err
		}
		if found {
			if record.RequestHash != requestHash {
				return BulkResult{}, domainerrors.ErrIdempotencyConflict
			}
			var replayed BulkResult
			if err := json.Unmarshal(record.Payload, &replayed); err != nil {
				return BulkResult{}, err
			}
			return replayed, nil
		}
	}

	result := uc.Coordinator.Run(ctx, cmd.IDs, op)

	if key != "" && uc.Idempotency != nil {
		payload, err := json.Marshal(result)
		if err != nil {
			return BulkResult{}, err
		}
		if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: requestHash,
			Payload:     payload,
			ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
		}); err != nil {
			return BulkResult{}, err
		}
	}

	if uc.Metrics != nil {
		uc.Metrics.ObserveDecision(operationType, "batch_completed")
	}
	eventEmitter{outbox: uc.Outbox, idGen: uc.IDGen, logger: logger}.emit(ctx, eventBulkApproveFinished, "reviewer_id", strings.TrimSpace(cmd.ReviewerID), now, map[string]any{
		"operation_type":  operationType,
		"reviewer_id":     strings.TrimSpace(cmd.ReviewerID),
		"succeeded_ids":   result.Succeeded,
		"succeeded_count": len(result.Succeeded),
		"failed_count":    len(result.Failed),
	})
	logger.Info("review bulk approve completed",
		"event", "review_bulk_approve_completed",
		"module", "listing-moderation/review-service",
		"layer", "application",
		"operation_type", operationType,
		"processed", len(cmd.IDs),
		"succeeded_count", len(result.Succeeded),
		"failed_count", len(result.Failed),
	)
	return result, nil
}

func (uc BulkApproveUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}

func (uc BulkApproveUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func hashBulkApproveCommand(operationType string, cmd BulkApproveCommand) string {
	ids := make([]string, 0, len(cmd.IDs))
	for _, id := range cmd.IDs {
		ids = append(ids, strings.TrimSpace(id))
	}
	payload := map[string]any{
		"operation_type": operationType,
		"reviewer_id":    strings.TrimSpace(cmd.ReviewerID),
		"ids":            ids,
		"notes":          strings.TrimSpace(cmd.Notes),
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
