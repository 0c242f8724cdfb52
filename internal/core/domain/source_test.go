package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceType(t *testing.T) {
	for _, s := range AllSources {
		got, err := ParseSourceType(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestParseSourceType_Unknown(t *testing.T) {
	_, err := ParseSourceType("dropbox")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Contains(t, err.Error(), "dropbox")
}

func TestPersistMode_String(t *testing.T) {
	assert.Equal(t, "insert", PersistInsert.String())
	assert.Equal(t, "upsert", PersistUpsert.String())
	assert.Equal(t, "unknown", PersistMode(7).String())
}
