package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "salesdocs/internal/core/context"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/numerator"
	"salesdocs/internal/domain/documents"
)

func argAfter(t *testing.T, call execCall, column string) any {
	t.Helper()
	cols := strings.TrimSuffix(strings.SplitN(strings.SplitN(call.sql, "(", 2)[1], ")", 2)[0], ")")
	for i, c := range strings.Split(cols, ",") {
		if c == column {
			return call.args[i]
		}
	}
	t.Fatalf("column %s not in %s", column, call.sql)
	return nil
}

func TestJournal_SequenceBurned(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("INSERT 0 1")}
	j, err := NewJournal(db)
	require.NoError(t, err)

	ctx := appctx.WithCaller(context.Background(), &appctx.Caller{UserID: "u-7"})
	err = j.SequenceBurned(ctx, numerator.KindInvoice, "VF2025-0042", errors.New("gotenberg timeout"))
	require.NoError(t, err)

	require.Len(t, db.calls, 1)
	call := db.calls[0]
	assert.True(t, strings.HasPrefix(call.sql, "INSERT INTO sys_audit"))
	assert.Equal(t, "VF2025-0042", argAfter(t, call, "entity_key"))
	assert.Equal(t, ActionSequenceBurned, argAfter(t, call, "action"))
	assert.Equal(t, "u-7", argAfter(t, call, "user_id"))
	assert.Equal(t, CompressionNone, argAfter(t, call, "compression_algo"))

	var payload burnedPayload
	require.NoError(t, json.Unmarshal(argAfter(t, call, "payload").(json.RawMessage), &payload))
	assert.Equal(t, "VF2025-0042", payload.Code)
	assert.Equal(t, "gotenberg timeout", payload.Cause)
}

func TestJournal_LargePayloadIsCompressed(t *testing.T) {
	j, err := NewJournal(&fakeDB{})
	require.NoError(t, err)
	j.compressThreshold = 16

	doc := &documents.Document{ID: id.New(), Code: "VF2025-0001", Status: documents.StatusInvoice}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	entry := j.newEntry("document", doc.ID.String(), ActionDocumentFinalized, raw)
	assert.Equal(t, CompressionZstd, entry.CompressionAlgo)
	assert.Nil(t, entry.Payload)
	assert.NotEmpty(t, entry.PayloadCompressed)

	require.NoError(t, j.inflate(&entry))
	assert.JSONEq(t, string(raw), string(entry.Payload))
	assert.Nil(t, entry.PayloadCompressed)
}

func TestJournal_AppendFailure(t *testing.T) {
	cause := errors.New("relation sys_audit does not exist")
	j, err := NewJournal(&fakeDB{err: cause})
	require.NoError(t, err)

	err = j.DocumentFinalized(context.Background(), &documents.Document{ID: id.New()})
	assert.ErrorIs(t, err, cause)
}
