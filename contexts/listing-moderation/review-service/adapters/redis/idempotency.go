package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "review:idempotency:"

type recordDoc struct {
	RequestHash string    `json:"request_hash"`
	Payload     []byte    `json:"payload"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IdempotencyStore keeps bulk request replays in Redis. Entries expire with
// the record's ExpiresAt through the key TTL.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

func NewIdempotencyStore(client redis.UniversalClient, prefix string, logger *slog.Logger) *IdempotencyStore {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultKeyPrefix
	}
	return &IdempotencyStore{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	key = strings.TrimSpace(key)
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	var doc recordDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("dropping undecodable idempotency record",
			"event", "review_idempotency_decode_failed",
			"module", "listing-moderation/review-service",
			"layer", "adapter",
			"idempotency_key", key,
			"error", err.Error(),
		)
		return ports.IdempotencyRecord{}, false, s.client.Del(ctx, s.prefix+key).Err()
	}
	if !doc.ExpiresAt.IsZero() && now.UTC().After(doc.ExpiresAt.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         key,
		RequestHash: doc.RequestHash,
		Payload:     doc.Payload,
		ExpiresAt:   doc.ExpiresAt.UTC(),
	}, true, nil
}

func (s *IdempotencyStore) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	key := strings.TrimSpace(record.Key)
	raw, err := json.Marshal(recordDoc{
		RequestHash: record.RequestHash,
		Payload:     record.Payload,
		ExpiresAt:   record.ExpiresAt.UTC(),
	})
	if err != nil {
		return err
	}

	ttl := time.Until(record.ExpiresAt)
	if record.ExpiresAt.IsZero() {
		ttl = 0
	} else if ttl <= 0 {
		return nil
	}

	stored, err := s.client.SetNX(ctx, s.prefix+key, raw, ttl).Result()
	if err != nil {
		return err
	}
	if stored {
		return nil
	}

	existing, found, err := s.Get(ctx, key, time.Now().UTC())
	if err != nil {
		return err
	}
	if !found {
		return s.client.Set(ctx, s.prefix+key, raw, ttl).Err()
	}
	if existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}
