package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/osse101/BrandishGacha_Go/internal/database"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

const (
	queryGetState = `SELECT value FROM game_state WHERE profile_id = $1 AND path = $2`

	queryGetStateForUpdate = `SELECT value FROM game_state WHERE profile_id = $1 AND path = $2 FOR UPDATE`

	queryUpsertState = `
INSERT INTO game_state (profile_id, path, value, source, updated_at)
VALUES ($1, $2, $3::jsonb, $4, NOW())
ON CONFLICT (profile_id, path) DO UPDATE
SET value = EXCLUDED.value, source = EXCLUDED.source, updated_at = EXCLUDED.updated_at`
)

// GameStateStore implements gamestate.Store on a game_state table, one row per path.
type GameStateStore struct {
	db        *pgxpool.Pool
	profileID string
}

var _ gamestate.Store = (*GameStateStore)(nil)

// NewGameStateStore creates a store bound to one save profile.
func NewGameStateStore(db *pgxpool.Pool, profileID string) *GameStateStore {
	return &GameStateStore{db: db, profileID: profileID}
}

// OpenGameStateStore migrates the schema and returns a store for profileID.
func OpenGameStateStore(ctx context.Context, db *pgxpool.Pool, profileID string) (*GameStateStore, error) {
	sqlDB := stdlib.OpenDBFromPool(db)
	defer sqlDB.Close()

	if err := database.Migrate(ctx, sqlDB, database.DialectPostgres); err != nil {
		return nil, err
	}
	return NewGameStateStore(db, profileID), nil
}

func (s *GameStateStore) Get(ctx context.Context, path string) (any, bool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, queryGetState, s.profileID, path).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s %s: %w", ErrMsgFailedToGetState, path, err)
	}
	v, err := database.DecodeValue(raw)
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
	if _, err := s.db.Exec(ctx, queryUpsertState, s.profileID, path, encoded, database.SourceSet); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgFailedToSetState, path, err)
	}
	return nil
}

// inTx runs fn inside a transaction, committing when fn returns nil.
func (s *GameStateStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.FromContext(ctx).Error(LogMsgFailedToRollback, "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", database.ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

func (s *GameStateStore) Increment(ctx context.Context, path string, delta int64) (int64, error) {
	var current int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx, queryGetStateForUpdate, s.profileID, path).Scan(&raw)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("%s %s: %w", ErrMsgFailedToGetState, path, err)
		default:
			v, err := database.DecodeValue(raw)
			if err != nil {
				return err
			}
			if current, err = gamestate.ToInt64(v); err != nil {
				return fmt.Errorf("increment %s: %w", path, err)
			}
		}

		current += delta
		encoded, err := database.EncodeValue(current)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, queryUpsertState, s.profileID, path, encoded, database.SourceIncrement); err != nil {
			return fmt.Errorf("%s %s: %w", ErrMsgFailedToSetState, path, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return current, nil
}

func (s *GameStateStore) Update(ctx context.Context, patch map[string]any, meta gamestate.UpdateMeta) error {
	if len(patch) == 0 {
		return fmt.Errorf("%s", gamestate.ErrMsgEmptyPatch)
	}

	// Stable order keeps row locks consistent across concurrent writers.
	paths := make([]string, 0, len(patch))
	encoded := make(map[string]string, len(patch))
	for path, value := range patch {
		v, err := database.EncodeValue(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		paths = append(paths, path)
		encoded[path] = v
	}
	sort.Strings(paths)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, path := range paths {
			batch.Queue(queryUpsertState, s.profileID, path, encoded[path], meta.Source)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateState, err)
		}
		return nil
	})
}
