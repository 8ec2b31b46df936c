package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestMigrate_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, DialectSQLite))
	// second run is a no-op
	require.NoError(t, Migrate(ctx, db, DialectSQLite))

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'game_state'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "game_state", name)
}

func TestMigrate_UnknownDialect(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "unknown.db"))
	require.NoError(t, err)
	defer db.Close()

	err = Migrate(context.Background(), db, Dialect("oracle"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownDialect)
}

func TestValueRoundTrip(t *testing.T) {
	encoded, err := EncodeValue(map[string]any{"balance": int64(9007199254740993)})
	require.NoError(t, err)

	decoded, err := DecodeValue([]byte(encoded))
	require.NoError(t, err)
	m, ok := decoded.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), m["balance"])

	_, err = DecodeValue([]byte("{broken"))
	assert.Error(t, err)

	_, err = EncodeValue(make(chan int))
	assert.Error(t, err)
}
