package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates the review tables. Intended for local development.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&submissionModel{},
		&changeSetModel{},
		&idempotencyModel{},
		&outboxModel{},
	)
}

// UpsertSubmission refreshes a submission from the remote queue. Archived
// rows are left untouched so a saved submission does not come back.
func (r *Repository) UpsertSubmission(ctx context.Context, submission entities.Submission) error {
	row, err := submissionModelFromEntity(submission)
	if err != nil {
		return domainerrors.Persistence("encode submission", err)
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "submission_id"}},
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "review_submissions.archived_at IS NULL"},
			}},
			DoUpdates: clause.AssignmentColumns([]string{
				"entity_type",
				"title",
				"fields",
				"videos",
				"submitted_by",
				"submitted_at",
				"feedback_comment",
				"updated_at",
			}),
		}).
		Create(&row).
		Error
	if err != nil {
		return domainerrors.Persistence("upsert submission", err)
	}
	return nil
}

// ApplySubmission locks the live row, applies mutate to its decoded state and
// writes the result in the same transaction.
func (r *Repository) ApplySubmission(
	ctx context.Context,
	submissionID string,
	mutate ports.SubmissionMutation,
) (entities.Submission, error) {
	var next entities.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored submissionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", strings.TrimSpace(submissionID)).
			Where("archived_at IS NULL").
			First(&stored).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrSubmissionNotFound
			}
			return domainerrors.Persistence("lock submission", err)
		}
		current, err := stored.toEntity()
		if err != nil {
			return domainerrors.Persistence("decode submission", err)
		}
		next, err = mutate(current)
		if err != nil {
			return err
		}
		row, err := submissionModelFromEntity(next)
		if err != nil {
			return domainerrors.Persistence("encode submission", err)
		}
		if err := tx.Model(&submissionModel{}).
			Where("submission_id = ?", stored.SubmissionID).
			Updates(map[string]any{
				"title":            row.Title,
				"fields":           row.Fields,
				"videos":           row.Videos,
				"feedback_comment": row.FeedbackComment,
				"updated_at":       row.UpdatedAt,
			}).
			Error; err != nil {
			return domainerrors.Persistence("update submission", err)
		}
		return nil
	})
	if err != nil {
		return entities.Submission{}, err
	}
	return next, nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Where("archived_at IS NULL").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, domainerrors.Persistence("get submission", err)
	}
	item, err := row.toEntity()
	if err != nil {
		return entities.Submission{}, domainerrors.Persistence("decode submission", err)
	}
	return item, nil
}

func (r *Repository) ListSubmissions(ctx context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	tx := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("archived_at IS NULL")
	if filter.EntityType != "" {
		tx = tx.Where("entity_type = ?", string(filter.EntityType))
	}
	if strings.TrimSpace(filter.SubmittedBy) != "" {
		tx = tx.Where("submitted_by = ?", strings.TrimSpace(filter.SubmittedBy))
	}

	var rows []submissionModel
	if err := tx.Order("submitted_at ASC").Find(&rows).Error; err != nil {
		return nil, domainerrors.Persistence("list submissions", err)
	}

	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			r.logger.Warn("skipping undecodable submission row",
				"event", "review_submission_decode_failed",
				"module", "listing-moderation/review-service",
				"layer", "adapter",
				"submission_id", row.SubmissionID,
				"error", err.Error(),
			)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) ArchiveSubmission(ctx context.Context, submissionID string) error {
	result := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Where("archived_at IS NULL").
		Update("archived_at", time.Now().UTC())
	if result.Error != nil {
		return domainerrors.Persistence("archive submission", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) CreateChangeSet(ctx context.Context, changeSet entities.ChangeSet) error {
	row, err := changeSetModelFromEntity(changeSet)
	if err != nil {
		return domainerrors.Persistence("encode change set", err)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return domainerrors.Persistence("create change set", err)
	}
	return nil
}

// UpdateChangeSet writes a reviewed change set. The row must still be pending
// so two concurrent reviews cannot both win.
func (r *Repository) UpdateChangeSet(ctx context.Context, changeSet entities.ChangeSet) error {
	row, err := changeSetModelFromEntity(changeSet)
	if err != nil {
		return domainerrors.Persistence("encode change set", err)
	}
	result := r.db.WithContext(ctx).
		Model(&changeSetModel{}).
		Where("change_set_id = ?", strings.TrimSpace(changeSet.ID)).
		Where("status = ?", string(entities.ChangeSetStatusPending)).
		Updates(map[string]any{
			"status":      row.Status,
			"reviewer_id": row.ReviewerID,
			"reviewed_at": row.ReviewedAt,
			"notes":       row.Notes,
		})
	if result.Error != nil {
		return domainerrors.Persistence("update change set", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&changeSetModel{}).
		Where("change_set_id = ?", strings.TrimSpace(changeSet.ID)).
		Count(&count).
		Error; err != nil {
		return domainerrors.Persistence("update change set", err)
	}
	if count == 0 {
		return domainerrors.ErrChangeSetNotFound
	}
	return domainerrors.ErrChangeSetAlreadyReviewed
}

func (r *Repository) GetChangeSet(ctx context.Context, changeSetID string) (entities.ChangeSet, error) {
	var row changeSetModel
	err := r.db.WithContext(ctx).
		Where("change_set_id = ?", strings.TrimSpace(changeSetID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ChangeSet{}, domainerrors.ErrChangeSetNotFound
		}
		return entities.ChangeSet{}, domainerrors.Persistence("get change set", err)
	}
	item, err := row.toEntity()
	if err != nil {
		return entities.ChangeSet{}, domainerrors.Persistence("decode change set", err)
	}
	return item, nil
}

func (r *Repository) ListChangeSets(ctx context.Context, filter ports.ChangeSetFilter) ([]entities.ChangeSet, error) {
	tx := r.db.WithContext(ctx).Model(&changeSetModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if strings.TrimSpace(filter.TargetEntityID) != "" {
		tx = tx.Where("target_entity_id = ?", strings.TrimSpace(filter.TargetEntityID))
	}

	var rows []changeSetModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, domainerrors.Persistence("list change sets", err)
	}

	items := make([]entities.ChangeSet, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, domainerrors.Persistence("decode change set", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     append([]byte(nil), row.Payload...),
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: record.RequestHash,
		Payload:     append([]byte(nil), record.Payload...),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Select("request_hash").
		Where("key = ?", row.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
