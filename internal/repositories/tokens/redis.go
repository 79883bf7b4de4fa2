package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/psergee/authd/internal/kv"
	"github.com/psergee/authd/internal/logging"
	"github.com/psergee/authd/internal/models"
)

const (
	// sequenceKey is the shared counter all token ids are minted from.
	sequenceKey = "sys:token_id_seq"

	// indexKeyPrefix namespaces the reverse-index entries.
	indexKeyPrefix = "idx:token_id:"

	// ttlBuffer keeps the store's own TTL reaping behind the logical
	// expire-time check.
	ttlBuffer = 5 * time.Minute
)

// RedisRepository implements Repository over a kv.Store.
type RedisRepository struct {
	store  kv.Store
	logger logging.Logger
}

func NewRedisRepository(store kv.Store, logger logging.Logger) *RedisRepository {
	return &RedisRepository{store: store, logger: logger.With("module", "tokens_repo")}
}

func primaryKey(typ models.TokenType, token string) (string, error) {
	prefix, err := typ.KeyPrefix()
	if err != nil {
		return "", err
	}
	return prefix + ":" + token, nil
}

func indexKey(tokenID int64) string {
	return fmt.Sprintf("%s%d", indexKeyPrefix, tokenID)
}

func (r *RedisRepository) Insert(ctx context.Context, token string, typ models.TokenType, record *models.TokenRecord) (int64, error) {
	key, err := primaryKey(typ, token)
	if err != nil {
		return 0, err
	}

	tokenID, err := r.store.Incr(ctx, sequenceKey)
	if err != nil {
		return 0, fmt.Errorf("minting token id: %w", err)
	}
	record.TokenID = tokenID

	ttl := time.Until(record.ExpireTime) + ttlBuffer

	primary, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("encoding token record: %w", err)
	}
	if err := r.store.Set(ctx, key, string(primary), ttl); err != nil {
		return 0, fmt.Errorf("writing token record: %w", err)
	}

	ref, err := json.Marshal(models.TokenRef{Token: token, Type: typ})
	if err != nil {
		return 0, fmt.Errorf("encoding token ref: %w", err)
	}
	if err := r.store.Set(ctx, indexKey(tokenID), string(ref), ttl); err != nil {
		// The token is issued once the primary write landed. A missing
		// reverse index only degrades delete-by-id; TTL still reaps both.
		r.logger.Warn(ctx, "reverse index write failed, token issued without it",
			"token_id", tokenID, "error", err)
	}

	return tokenID, nil
}

func (r *RedisRepository) Select(ctx context.Context, token string, typ models.TokenType) (*models.TokenRecord, error) {
	key, err := primaryKey(typ, token)
	if err != nil {
		return nil, err
	}

	value, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading token record: %w", err)
	}

	return decodeRecord(value)
}

func (r *RedisRepository) Consume(ctx context.Context, token string, typ models.TokenType) (*models.TokenRecord, error) {
	key, err := primaryKey(typ, token)
	if err != nil {
		return nil, err
	}

	value, err := r.store.GetDel(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("consuming token record: %w", err)
	}

	record, err := decodeRecord(value)
	if err != nil {
		return nil, err
	}

	if err := r.store.Del(ctx, indexKey(record.TokenID)); err != nil {
		r.logger.Warn(ctx, "reverse index delete failed after consume",
			"token_id", record.TokenID, "error", err)
	}

	return record, nil
}

func (r *RedisRepository) DeleteByID(ctx context.Context, tokenID int64) error {
	value, err := r.store.Get(ctx, indexKey(tokenID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			// already gone, idempotent retries end up here
			return nil
		}
		return fmt.Errorf("reading token ref: %w", err)
	}

	ref := &models.TokenRef{}
	if err := json.Unmarshal([]byte(value), ref); err != nil {
		return fmt.Errorf("decoding token ref: %w", err)
	}

	key, err := primaryKey(ref.Type, ref.Token)
	if err != nil {
		return err
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("deleting token record: %w", err)
	}
	if err := r.store.Del(ctx, indexKey(tokenID)); err != nil {
		return fmt.Errorf("deleting token ref: %w", err)
	}

	return nil
}

func decodeRecord(value string) (*models.TokenRecord, error) {
	record := &models.TokenRecord{}
	if err := json.Unmarshal([]byte(value), record); err != nil {
		return nil, fmt.Errorf("decoding token record: %w", err)
	}
	return record, nil
}
