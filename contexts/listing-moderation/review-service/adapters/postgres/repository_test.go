package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerDSN  string
	containerErr  error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if container != nil {
		if err := container.Terminate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "terminate postgres container: %v\n", err)
		}
	}
	os.Exit(code)
}

func startPostgres() {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "review_test",
			"POSTGRES_USER":     "review",
			"POSTGRES_PASSWORD": "review",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}
	container, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if containerErr != nil {
		return
	}
	host, err := container.Host(ctx)
	if err != nil {
		containerErr = err
		return
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		containerErr = err
		return
	}
	containerDSN = fmt.Sprintf("host=%s port=%s user=review password=review dbname=review_test sslmode=disable", host, port.Port())
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres repository tests start a container")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	containerOnce.Do(startPostgres)
	require.NoError(t, containerErr, "start postgres container")

	db, err := gorm.Open(postgres.Open(containerDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewRepository(db, nil)
	require.NoError(t, repo.AutoMigrate(context.Background()))
	require.NoError(t, db.Exec("TRUNCATE review_submissions, review_change_sets, review_idempotency, review_outbox").Error)
	return repo
}

var repoNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func storedSubmission(t *testing.T, id string, title string) entities.Submission {
	t.Helper()
	item, err := entities.NewSubmission(entities.Submission{
		ID:         id,
		EntityType: entities.EntityTypeLocation,
		Title:      title,
		Fields: []entities.ReviewableField{
			{Key: entities.FieldKeyAddress, Value: entities.Value{Text: "place-123", Display: "12 Harbor St"}, Required: true},
			{Key: entities.FieldKeyMenu, Value: entities.TextValue("https://example.com/menu.pdf"), Required: true},
		},
		Videos: []entities.VideoItem{
			{ID: "v1", URL: "https://cdn.example.com/v1.mp4", Tags: []string{"food"}},
		},
		SubmittedBy: "owner-1",
		SubmittedAt: repoNow.Add(-time.Hour),
	})
	require.NoError(t, err)
	return item
}

func statusOf(t *testing.T, s entities.Submission, key string) entities.ItemStatus {
	t.Helper()
	field, ok := s.Field(key)
	require.True(t, ok, "field %s", key)
	return field.Status
}

func TestUpsertSubmissionRefreshesLiveRow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodle Bar")))
	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodles")))

	got, err := repo.GetSubmission(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Noodles", got.Title)
	assert.Equal(t, "12 Harbor St", got.Fields[0].Value.Display)
	assert.Equal(t, []string{"food"}, got.Videos[0].Tags)
}

func TestUpsertSubmissionNeverResurrectsArchivedRow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodle Bar")))
	require.NoError(t, repo.ArchiveSubmission(ctx, "S1"))
	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodles")))

	_, err := repo.GetSubmission(ctx, "S1")
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotFound)

	var row submissionModel
	require.NoError(t, repo.db.Where("submission_id = ?", "S1").First(&row).Error)
	assert.Equal(t, "Harbor Noodle Bar", row.Title)
	assert.NotNil(t, row.ArchivedAt)

	items, err := repo.ListSubmissions(ctx, ports.SubmissionFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestArchiveSubmissionTwiceIsNotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodle Bar")))
	require.NoError(t, repo.ArchiveSubmission(ctx, "S1"))
	assert.ErrorIs(t, repo.ArchiveSubmission(ctx, "S1"), domainerrors.ErrSubmissionNotFound)
}

func TestApplySubmissionIsNotFoundForArchivedOrMissingRow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodle Bar")))
	require.NoError(t, repo.ArchiveSubmission(ctx, "S1"))

	called := false
	mutate := func(stored entities.Submission) (entities.Submission, error) {
		called = true
		return stored, nil
	}
	_, err := repo.ApplySubmission(ctx, "S1", mutate)
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotFound)
	_, err = repo.ApplySubmission(ctx, "missing", mutate)
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotFound)
	assert.False(t, called)
}

func TestApplySubmissionMutatesStoredRow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodle Bar")))

	_, err := repo.ApplySubmission(ctx, "S1", func(stored entities.Submission) (entities.Submission, error) {
		return entities.ApproveField(stored, entities.FieldKeyMenu, repoNow)
	})
	require.NoError(t, err)
	committed, err := repo.ApplySubmission(ctx, "S1", func(stored entities.Submission) (entities.Submission, error) {
		return entities.DeclineVideo(stored, "v1", repoNow.Add(time.Minute))
	})
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusApproved, statusOf(t, committed, entities.FieldKeyMenu))

	got, err := repo.GetSubmission(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusApproved, statusOf(t, got, entities.FieldKeyMenu))
	assert.Equal(t, entities.ItemStatusPending, statusOf(t, got, entities.FieldKeyAddress))
	assert.Equal(t, entities.ItemStatusDeclined, got.Videos[0].Status)
	assert.True(t, got.UpdatedAt.Equal(repoNow.Add(time.Minute)))
}

func TestApplySubmissionKeepsConcurrentItemDecisions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodle Bar")))

	keys := []string{entities.FieldKeyAddress, entities.FieldKeyMenu}
	errs := make([]error, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			_, errs[i] = repo.ApplySubmission(ctx, "S1", func(stored entities.Submission) (entities.Submission, error) {
				return entities.ApproveField(stored, key, repoNow)
			})
		}(i, key)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetSubmission(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusApproved, statusOf(t, got, entities.FieldKeyAddress))
	assert.Equal(t, entities.ItemStatusApproved, statusOf(t, got, entities.FieldKeyMenu))
}

func TestApplySubmissionRollsBackOnMutationError(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertSubmission(ctx, storedSubmission(t, "S1", "Harbor Noodle Bar")))

	boom := errors.New("boom")
	_, err := repo.ApplySubmission(ctx, "S1", func(entities.Submission) (entities.Submission, error) {
		return entities.Submission{}, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetSubmission(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Noodle Bar", got.Title)
	assert.Equal(t, entities.ItemStatusPending, got.CompositeStatus())
}

func TestListSubmissionsFiltersAndOrders(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	late := storedSubmission(t, "late", "Late")
	late.SubmittedAt = repoNow
	early := storedSubmission(t, "early", "Early")
	other := storedSubmission(t, "other", "Other")
	other.SubmittedBy = "owner-2"
	for _, item := range []entities.Submission{late, early, other} {
		require.NoError(t, repo.UpsertSubmission(ctx, item))
	}

	items, err := repo.ListSubmissions(ctx, ports.SubmissionFilter{EntityType: entities.EntityTypeLocation, SubmittedBy: "owner-1"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "early", items[0].ID)
	assert.Equal(t, "late", items[1].ID)
}

func pendingChangeSet(t *testing.T, id string) entities.ChangeSet {
	t.Helper()
	item, err := entities.NewChangeSet(id, "loc-9", "owner-1",
		[]entities.FieldValue{{Key: "name", Value: entities.TextValue("Old")}},
		[]entities.FieldValue{{Key: "name", Value: entities.TextValue("New")}},
		repoNow,
	)
	require.NoError(t, err)
	return item
}

func TestUpdateChangeSetRefusesReviewedRow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	pending := pendingChangeSet(t, "cs-1")
	require.NoError(t, repo.CreateChangeSet(ctx, pending))
	assert.ErrorIs(t, repo.CreateChangeSet(ctx, pending), domainerrors.ErrInvalidInput)

	approved, err := pending.Approve("rev-1", "ok", repoNow)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateChangeSet(ctx, approved))

	rejected, err := pending.Reject("rev-2", "late", repoNow.Add(time.Minute))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.UpdateChangeSet(ctx, rejected), domainerrors.ErrChangeSetAlreadyReviewed)

	got, err := repo.GetChangeSet(ctx, "cs-1")
	require.NoError(t, err)
	assert.Equal(t, entities.ChangeSetStatusApproved, got.Status)
	assert.Equal(t, "rev-1", got.ReviewerID)
	require.Len(t, got.Changes, 1)
	assert.Equal(t, entities.ChangeTypeUpdate, got.Changes[0].ChangeType)

	missing, err := pendingChangeSet(t, "cs-9").Approve("rev-1", "", repoNow)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.UpdateChangeSet(ctx, missing), domainerrors.ErrChangeSetNotFound)

	pendingOnly, err := repo.ListChangeSets(ctx, ports.ChangeSetFilter{Status: entities.ChangeSetStatusPending})
	require.NoError(t, err)
	assert.Empty(t, pendingOnly)
}

func TestIdempotencyRecordsExpireAndConflict(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	record := ports.IdempotencyRecord{
		Key:         "bulk-1",
		RequestHash: "hash-a",
		Payload:     []byte(`{"succeeded":["a"]}`),
		ExpiresAt:   repoNow.Add(time.Hour),
	}
	require.NoError(t, repo.Put(ctx, record))
	require.NoError(t, repo.Put(ctx, record))

	conflicting := record
	conflicting.RequestHash = "hash-b"
	assert.ErrorIs(t, repo.Put(ctx, conflicting), domainerrors.ErrIdempotencyConflict)

	got, found, err := repo.Get(ctx, "bulk-1", repoNow)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hash-a", got.RequestHash)

	_, found, err = repo.Get(ctx, "bulk-1", repoNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, repo.Put(ctx, conflicting))
}

func TestOutboxAppendListAndMark(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	envelope := ports.EventEnvelope{
		EventID:       "evt-1",
		EventType:     "review.submission.field_decided",
		OccurredAt:    repoNow,
		SourceService: "review-service",
		SchemaVersion: 1,
		PartitionKey:  "S1",
		Data:          []byte(`{"submission_id":"S1"}`),
	}
	require.NoError(t, repo.AppendOutbox(ctx, envelope))
	require.NoError(t, repo.AppendOutbox(ctx, envelope))

	pending, err := repo.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "review.submission.field_decided", pending[0].EventType)

	require.NoError(t, repo.MarkOutboxPublished(ctx, "evt-1", repoNow))
	assert.ErrorIs(t, repo.MarkOutboxPublished(ctx, "evt-9", repoNow), domainerrors.ErrNotFound)

	pending, err = repo.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
