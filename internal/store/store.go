// Package store handles SQLite persistence of session history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/nback/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			log.Debug().Err(cerr).Msg("close database")
		}
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			level INTEGER NOT NULL,
			trials INTEGER NOT NULL,
			planned_trials INTEGER NOT NULL,
			ticks_per_trial INTEGER NOT NULL,
			score REAL NOT NULL,
			delta INTEGER NOT NULL,
			strict INTEGER NOT NULL,
			manual INTEGER NOT NULL,
			incomplete INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			sound_set TEXT NOT NULL,
			fallbacks INTEGER NOT NULL,
			lures INTEGER NOT NULL,
			archive BLOB
		);`,
		`CREATE TABLE IF NOT EXISTS session_channel_stats (
			session_id INTEGER NOT NULL,
			channel TEXT NOT NULL,
			modality TEXT NOT NULL,
			true_positive INTEGER NOT NULL,
			true_negative INTEGER NOT NULL,
			false_positive INTEGER NOT NULL,
			false_negative INTEGER NOT NULL,
			defined INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			mean_reaction_ticks REAL NOT NULL,
			PRIMARY KEY (session_id, channel)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_mode ON sessions(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a session, its per-channel stats and its trial archive.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (id int64, err error) {
	blob, err := EncodeArchive(ArchiveFromRecord(rec))
	if err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				log.Debug().Err(rerr).Msg("rollback session insert")
			}
		}
	}()

	st := rec.Stats
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, mode, level, trials, planned_trials, ticks_per_trial, score, delta, strict, manual, incomplete, seed, sound_set, fallbacks, lures, archive)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.EndedAt.UTC().Format(time.RFC3339Nano),
		st.Mode,
		st.Level,
		st.Trials,
		st.PlannedTrials,
		st.TicksPerTrial,
		st.Score,
		rec.Delta,
		st.Strict,
		st.Manual,
		st.Incomplete,
		st.Seed,
		st.SoundSet,
		st.Fallbacks,
		st.Lures,
		blob,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(st.Channels) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_channel_stats (session_id, channel, modality, true_positive, true_negative, false_positive, false_negative, defined, accuracy, mean_reaction_ticks)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				log.Debug().Err(cerr).Msg("close statement")
			}
		}()
		for _, cs := range st.Channels {
			if _, err = stmt.ExecContext(ctx, id, string(cs.Channel), string(cs.Modality),
				cs.TruePositive, cs.TrueNegative, cs.FalsePositive, cs.FalseNegative,
				cs.Defined, cs.Accuracy, cs.MeanReactionTicks); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const summaryColumns = `id, ended_at, mode, level, trials, score, delta, strict, manual, incomplete`

// ListSessions returns session summaries filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, summaryColumns, strings.Join(clauses, " AND "))
	return s.querySummaries(ctx, query, args...)
}

// RecentSessions returns the last limit sessions of a mode, oldest first.
func (s *Store) RecentSessions(ctx context.Context, mode string, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM (
		SELECT * FROM sessions
		WHERE mode = ?
		ORDER BY ended_at DESC, id DESC
		LIMIT ?
	) ORDER BY ended_at ASC, id ASC`, summaryColumns)
	return s.querySummaries(ctx, query, mode, limit)
}

func (s *Store) querySummaries(ctx context.Context, query string, args ...any) ([]model.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			log.Debug().Err(cerr).Msg("close rows")
		}
	}()

	var sessions []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		var endedAt string
		if err := rows.Scan(&sum.SessionID, &endedAt, &sum.Mode, &sum.Level, &sum.Trials,
			&sum.Score, &sum.Delta, &sum.Strict, &sum.Manual, &sum.Incomplete); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, fmt.Errorf("session %d ended_at: %w", sum.SessionID, err)
		}
		sum.EndedAt = parsed
		sessions = append(sessions, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
