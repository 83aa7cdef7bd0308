package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/internal/models"
	appErrors "github.com/ebhath/ebhath-api/pkg/errors"
)

const (
	defaultDocumentPrefix = "form:"
	maxMergeAttempts      = 5
)

// DocumentRepository stores application documents as JSON values in Redis, one key per
// applicant email.
type DocumentRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewDocumentRepository constructs a document repository. An empty prefix selects "form:".
func NewDocumentRepository(client *redis.Client, prefix string, logger *zap.Logger) *DocumentRepository {
	if prefix == "" {
		prefix = defaultDocumentPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentRepository{client: client, prefix: prefix, logger: logger}
}

// Key returns the Redis key holding the document for email.
func (r *DocumentRepository) Key(email string) string {
	return r.prefix + strings.ToLower(strings.TrimSpace(email))
}

// Get loads the document for email. A missing document yields ErrDocumentNotFound.
func (r *DocumentRepository) Get(ctx context.Context, email string) (*models.ApplicationDocument, error) {
	if r.client == nil {
		return nil, appErrors.ErrStoreUnavailable
	}

	key := r.Key(email)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var doc models.ApplicationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document %s: %w", key, err)
	}
	return &doc, nil
}

// Put overwrites the document for email.
func (r *DocumentRepository) Put(ctx context.Context, email string, doc *models.ApplicationDocument) error {
	if r.client == nil {
		return appErrors.ErrStoreUnavailable
	}

	key := r.Key(email)
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Merge deep-merges doc into the stored document, creating it when absent. Nested
// objects merge key by key; every other value in doc replaces the stored one. The
// read-modify-write runs under WATCH and is retried when a concurrent writer wins.
func (r *DocumentRepository) Merge(ctx context.Context, email string, doc *models.ApplicationDocument) error {
	if r.client == nil {
		return appErrors.ErrStoreUnavailable
	}

	key := r.Key(email)
	patch, err := toObject(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", key, err)
	}

	txn := func(tx *redis.Tx) error {
		current := map[string]interface{}{}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get %s: %w", key, err)
		default:
			if err := json.Unmarshal(raw, &current); err != nil {
				r.logger.Warn("replacing unreadable document", zap.String("key", key), zap.Error(err))
				current = map[string]interface{}{}
			}
		}

		payload, err := json.Marshal(deepMerge(current, patch))
		if err != nil {
			return fmt.Errorf("marshal merged document %s: %w", key, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		err = r.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		r.logger.Debug("document merge conflict, retrying", zap.String("key", key), zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return fmt.Errorf("merge document %s: %w", key, err)
	}
	return nil
}

// Delete removes the document for email.
func (r *DocumentRepository) Delete(ctx context.Context, email string) error {
	if r.client == nil {
		return appErrors.ErrStoreUnavailable
	}
	key := r.Key(email)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *DocumentRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return appErrors.ErrStoreUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func toObject(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := dst[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			dst[k] = deepMerge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}
