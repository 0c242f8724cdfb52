package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dself/internal/core/domain"
)

func TestRecordStore_Insert_AssignsIDs(t *testing.T) {
	store := NewRecordStore()
	rows := domain.Records([]domain.BrowserHistoryEntry{
		{URL: "https://a", Browser: domain.BrowserName},
		{URL: "https://b", Browser: domain.BrowserName},
	})

	n, err := store.Insert(context.Background(), "browser_history", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := store.Rows("browser_history")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0]["id"])
	assert.Equal(t, int64(2), got[1]["id"])
	assert.Equal(t, "https://b", got[1]["url"])
}

func TestRecordStore_Upsert_ReplacesByKey(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	first := domain.Records([]domain.WhatsAppMessage{{ID: "m1", Text: "old"}, {ID: "m2", Text: "two"}})
	_, err := store.Upsert(ctx, "whatsapp_messages", first, "id")
	require.NoError(t, err)

	second := domain.Records([]domain.WhatsAppMessage{{ID: "m1", Text: "new"}})
	n, err := store.Upsert(ctx, "whatsapp_messages", second, "id")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := store.Rows("whatsapp_messages")
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0]["text"])
	assert.Equal(t, 2, store.Count("whatsapp_messages"))
}

func TestRecordStore_Upsert_MissingKey(t *testing.T) {
	store := NewRecordStore()

	_, err := store.Upsert(context.Background(), "gmail_emails",
		domain.Records([]domain.EmailMessage{{Snippet: "no id"}}), "id")
	assert.ErrorIs(t, err, domain.ErrMissingKey)
}

func TestRecordStore_Select(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	n, err := store.Select(ctx, "imessages", "id", 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Insert(ctx, "imessages", domain.Records([]domain.IMessage{{Text: "a"}, {Text: "b"}}))
	require.NoError(t, err)

	n, err = store.Select(ctx, "imessages", "id", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordStore_FailureInjection(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	boom := errors.New("boom")

	store.SelectErr = boom
	_, err := store.Select(ctx, "t", "id", 1)
	assert.ErrorIs(t, err, boom)

	store.WriteErr = boom
	_, err = store.Insert(ctx, "t", domain.Records([]domain.IMessage{{}}))
	assert.ErrorIs(t, err, boom)

	store.WriteErr = nil
	store.MaxAccept = 1
	n, err := store.Insert(ctx, "t", domain.Records([]domain.IMessage{{}, {}, {}}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
