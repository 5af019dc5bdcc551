package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "salesdocs/internal/core/context"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/numerator"
	"salesdocs/internal/domain/documents"
)

// JournalAction names a reconciliation event.
type JournalAction string

const (
	ActionSequenceBurned    JournalAction = "sequence_burned"
	ActionDocumentFinalized JournalAction = "document_finalized"
)

// CompressionAlgo specifies how a payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const defaultCompressThreshold = 4 * 1024

// JournalEntry is one row of sys_audit.
type JournalEntry struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityKey         string          `db:"entity_key"`
	Action            JournalAction   `db:"action"`
	UserID            string          `db:"user_id"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// Journal appends reconciliation events to sys_audit. Burned codes are
// recorded here so that gaps in the numbering can be explained.
type Journal struct {
	db                QuerierProvider
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	now               func() time.Time
}

var _ documents.Journal = (*Journal)(nil)

// NewJournal creates a journal writing through db.
func NewJournal(db QuerierProvider) (*Journal, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Journal{
		db:                db,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
		now:               func() time.Time { return time.Now().UTC() },
	}, nil
}

type burnedPayload struct {
	Kind  numerator.Kind `json:"kind"`
	Code  string         `json:"code"`
	Cause string         `json:"cause,omitempty"`
}

// SequenceBurned records a code that was allocated but never stored.
func (j *Journal) SequenceBurned(ctx context.Context, kind numerator.Kind, code string, cause error) error {
	payload := burnedPayload{Kind: kind, Code: code}
	if cause != nil {
		payload.Cause = cause.Error()
	}
	return j.record(ctx, "sequence", code, ActionSequenceBurned, payload)
}

// DocumentFinalized records the full snapshot of an issued quote or invoice.
func (j *Journal) DocumentFinalized(ctx context.Context, doc *documents.Document) error {
	return j.record(ctx, "document", doc.ID.String(), ActionDocumentFinalized, doc)
}

func (j *Journal) record(ctx context.Context, entityType, key string, action JournalAction, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}
	entry := j.newEntry(entityType, key, action, raw)
	entry.UserID = appctx.GetUserID(ctx)
	return j.Append(ctx, entry)
}

func (j *Journal) newEntry(entityType, key string, action JournalAction, raw json.RawMessage) JournalEntry {
	entry := JournalEntry{
		ID:              id.New(),
		EntityType:      entityType,
		EntityKey:       key,
		Action:          action,
		CompressionAlgo: CompressionNone,
		CreatedAt:       j.now(),
	}
	if len(raw) > j.compressThreshold {
		entry.PayloadCompressed = j.encoder.EncodeAll(raw, nil)
		entry.CompressionAlgo = CompressionZstd
	} else {
		entry.Payload = raw
	}
	return entry
}

// Append inserts a prepared entry.
func (j *Journal) Append(ctx context.Context, entry JournalEntry) error {
	sql, args, err := Builder().Insert("sys_audit").SetMap(StructToMap(entry)).ToSql()
	if err != nil {
		return fmt.Errorf("build journal insert: %w", err)
	}
	if _, err := j.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Entries returns the latest entries for one action, newest first, with
// payloads decompressed.
func (j *Journal) Entries(ctx context.Context, action JournalAction, limit int) ([]JournalEntry, error) {
	sql, args, err := Builder().
		Select("id", "entity_type", "entity_key", "action", "user_id",
			"payload", "payload_compressed", "compression_algo", "created_at").
		From("sys_audit").
		Where("action = ?", action).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build journal query: %w", err)
	}

	rows, err := j.db.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityKey, &e.Action, &e.UserID,
			&e.Payload, &e.PayloadCompressed, &e.CompressionAlgo, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if err := j.inflate(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) inflate(e *JournalEntry) error {
	if e.CompressionAlgo != CompressionZstd || len(e.PayloadCompressed) == 0 {
		return nil
	}
	raw, err := j.decoder.DecodeAll(e.PayloadCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress journal entry %s: %w", e.ID, err)
	}
	e.Payload = raw
	e.PayloadCompressed = nil
	return nil
}
