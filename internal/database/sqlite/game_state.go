// Package sqlite stores game state in a single-file SQLite save.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/osse101/BrandishGacha_Go/internal/database"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

const (
	queryGetState = `SELECT value FROM game_state WHERE profile_id = ? AND path = ?`

	queryUpsertState = `
INSERT INTO game_state (profile_id, path, value, source, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (profile_id, path) DO UPDATE
SET value = excluded.value, source = excluded.source, updated_at = excluded.updated_at`
)

// GameStateStore implements gamestate.Store on a SQLite file.
type GameStateStore struct {
	db        *sql.DB
	profileID string
	now       func() time.Time
}

var _ gamestate.Store = (*GameStateStore)(nil)

// Open opens (or creates) the save file at path and applies migrations.
func Open(ctx context.Context, path, profileID string) (*GameStateStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(ErrMsgPathRequired)
	}
	db, err := sql.Open(DriverName, filepath.Clean(path)+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToOpen, err)
	}
	// One writer keeps read-modify-write transactions serialized.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPing, err)
	}
	if err := database.Migrate(ctx, db, database.DialectSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgOpened, "path", path, "profile", profileID)
	return &GameStateStore{db: db, profileID: profileID, now: time.Now}, nil
}

// Ping checks the save file is still reachable.
func (s *GameStateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (s *GameStateStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *GameStateStore) Get(ctx context.Context, path string) (any, bool, error) {
	return s.get(ctx, s.db, path)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *GameStateStore) get(ctx context.Context, q queryer, path string) (any, bool, error) {
	var raw string
	err := q.QueryRowContext(ctx, queryGetState, s.profileID, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s %s: %w", ErrMsgFailedToGetState, path, err)
	}
	v, err := database.DecodeValue([]byte(raw))
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *GameStateStore) Set(ctx context.Context, path string, value any) error {
	encoded, err := database.EncodeValue(value)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, queryUpsertState, s.profileID, path, encoded, database.SourceSet, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgFailedToSetState, path, err)
	}
	return nil
}

func (s *GameStateStore) Increment(ctx context.Context, path string, delta int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err)
	}
	defer safeRollback(ctx, tx)

	v, _, err := s.get(ctx, tx, path)
	if err != nil {
		return 0, err
	}
	current, err := gamestate.ToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", path, err)
	}
	current += delta

	encoded, err := database.EncodeValue(current)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, queryUpsertState, s.profileID, path, encoded, database.SourceIncrement, s.now().UnixMilli()); err != nil {
		return 0, fmt.Errorf("%s %s: %w", ErrMsgFailedToSetState, path, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", database.ErrMsgFailedToCommitTransaction, err)
	}
	return current, nil
}

func (s *GameStateStore) Update(ctx context.Context, patch map[string]any, meta gamestate.UpdateMeta) error {
	if len(patch) == 0 {
		return fmt.Errorf("%s", gamestate.ErrMsgEmptyPatch)
	}

	paths := make([]string, 0, len(patch))
	for path := range patch {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err)
	}
	defer safeRollback(ctx, tx)

	stmt, err := tx.PrepareContext(ctx, queryUpsertState)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateState, err)
	}
	defer stmt.Close()

	updatedAt := s.now().UnixMilli()
	for _, path := range paths {
		encoded, err := database.EncodeValue(patch[path])
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, err := stmt.ExecContext(ctx, s.profileID, path, encoded, meta.Source, updatedAt); err != nil {
			return fmt.Errorf("%s %s: %w", ErrMsgFailedToUpdateState, path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", database.ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

func safeRollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.FromContext(ctx).Error(LogMsgFailedToRollback, "error", err)
	}
}
