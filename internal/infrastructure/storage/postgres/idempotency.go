package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"salesdocs/internal/core/apperror"
)

// IdempotencyStatus is the state of a keyed request.
type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

// staleAfter is how long a pending key may sit before another request may reclaim it.
const staleAfter = time.Minute

// IdempotencyRecord is one row of sys_idempotency.
type IdempotencyRecord struct {
	Key         string
	UserID      string
	Operation   string
	Status      IdempotencyStatus
	RequestHash string
	Response    []byte
	StatusCode  int
	ContentType string
	UpdatedAt   time.Time
	Inserted    bool
}

// IdempotencyReplay is a stored HTTP response.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore guards document-issuing POSTs against client retries.
// A replayed compose returns the stored response instead of burning a second code.
type IdempotencyStore struct {
	db  QuerierProvider
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(db QuerierProvider, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		db:  db,
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const acquireSQL = `
	INSERT INTO sys_idempotency (idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
	ON CONFLICT (idempotency_key) DO UPDATE SET
		expires_at = GREATEST(sys_idempotency.expires_at, EXCLUDED.expires_at)
	RETURNING user_id, operation, status, request_hash, response, response_status,
		response_content_type, updated_at, (xmax = 0) AS inserted`

// AcquireKey claims key for this request. It returns
//   - (nil, nil) when the caller now owns the key,
//   - a replay when the operation already finished,
//   - an error when the key is busy or belongs to another request.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := s.now()
	q := s.db.GetQuerier(ctx)

	rec := IdempotencyRecord{Key: key}
	var response []byte
	var statusCode *int
	var contentType *string
	err := q.QueryRow(ctx, acquireSQL,
		key, userID, operation, IdempotencyStatusPending, requestHash, now, now.Add(s.ttl),
	).Scan(
		&rec.UserID, &rec.Operation, &rec.Status, &rec.RequestHash,
		&response, &statusCode, &contentType, &rec.UpdatedAt, &rec.Inserted,
	)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	rec.Response = response
	if statusCode != nil {
		rec.StatusCode = *statusCode
	}
	if contentType != nil {
		rec.ContentType = *contentType
	}

	return s.decide(ctx, rec, userID, operation, requestHash, now)
}

func (s *IdempotencyStore) decide(ctx context.Context, rec IdempotencyRecord, userID, operation, requestHash string, now time.Time) (*IdempotencyReplay, error) {
	if rec.Inserted {
		return nil, nil
	}
	if rec.UserID != userID || rec.Operation != operation || rec.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(rec.Key).
			WithDetail("operation", operation)
	}

	switch rec.Status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return replayOf(rec), nil
	case IdempotencyStatusPending:
		if now.Sub(rec.UpdatedAt) <= staleAfter {
			return nil, apperror.NewIdempotencyConflict(rec.Key)
		}
		tag, err := s.db.GetQuerier(ctx).Exec(ctx, `
			UPDATE sys_idempotency SET updated_at = $1
			WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4`,
			now, rec.Key, IdempotencyStatusPending, rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("reclaim stale idempotency key: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, apperror.NewIdempotencyConflict(rec.Key)
		}
		return nil, nil
	}
	return nil, nil
}

func replayOf(rec IdempotencyRecord) *IdempotencyReplay {
	replay := &IdempotencyReplay{
		StatusCode:  rec.StatusCode,
		ContentType: rec.ContentType,
		Body:        rec.Response,
	}
	if replay.StatusCode == 0 {
		replay.StatusCode = http.StatusOK
	}
	if replay.ContentType == "" && len(replay.Body) > 0 {
		replay.ContentType = "application/json"
	}
	return replay
}

// CompleteKey stores a successful response for replay.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, IdempotencyStatusSuccess, statusCode, contentType, response)
}

// FailKey stores an error response for replay.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, IdempotencyStatusFailed, statusCode, contentType, response)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status IdempotencyStatus, statusCode int, contentType string, response any) error {
	var body []byte
	if response != nil {
		b, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshal idempotent response: %w", err)
		}
		body = b
	}

	_, err := s.db.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, response = $2, response_status = $3,
		    response_content_type = $4, updated_at = $5
		WHERE idempotency_key = $6`,
		status, body, statusCode, contentType, s.now(), key)
	if err != nil {
		return fmt.Errorf("finish idempotency key: %w", err)
	}
	return nil
}

// CleanupExpired removes expired keys.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE expires_at < $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
