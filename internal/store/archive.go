package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verte-zerg/nback/internal/model"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Archive is the trial-by-trial record of a session.
type Archive struct {
	Version  int                 `msgpack:"v" json:"version"`
	Sequence []model.Stimulus    `msgpack:"sequence" json:"sequence"`
	Inputs   []model.Input       `msgpack:"inputs" json:"inputs"`
	Results  []model.TrialResult `msgpack:"results" json:"results"`
}

const archiveVersion = 1

// ArchiveFromRecord extracts the archive part of a session record.
func ArchiveFromRecord(rec model.SessionRecord) Archive {
	return Archive{
		Version:  archiveVersion,
		Sequence: rec.Sequence,
		Inputs:   rec.Inputs,
		Results:  rec.Results,
	}
}

// EncodeArchive serializes an archive with msgpack.
func EncodeArchive(a Archive) ([]byte, error) {
	data, err := msgpack.Marshal(&a)
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}
	return data, nil
}

// DecodeArchive parses an archive produced by EncodeArchive.
func DecodeArchive(data []byte) (Archive, error) {
	var a Archive
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return Archive{}, fmt.Errorf("decode archive: %w", err)
	}
	if a.Version != archiveVersion {
		return Archive{}, fmt.Errorf("decode archive: unsupported version %d", a.Version)
	}
	return a, nil
}

// LoadArchive returns the stored archive of a session.
func (s *Store) LoadArchive(ctx context.Context, sessionID int64) (Archive, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT archive FROM sessions WHERE id = ?`, sessionID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Archive{}, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return Archive{}, err
	}
	if len(blob) == 0 {
		return Archive{}, nil
	}
	return DecodeArchive(blob)
}
