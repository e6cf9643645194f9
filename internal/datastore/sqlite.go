package datastore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/san-kum/spikelab/internal/neo"
	"github.com/san-kum/spikelab/internal/space"
	"github.com/san-kum/spikelab/internal/stimuli"
)

const schema = `
CREATE TABLE IF NOT EXISTS recordings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stimulus_id TEXT NOT NULL,
    sheet TEXT NOT NULL,
    segment TEXT NOT NULL,  -- JSON
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recordings_stimulus ON recordings(stimulus_id);

CREATE TABLE IF NOT EXISTS null_recordings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stimulus_id TEXT NOT NULL,
    sheet TEXT NOT NULL,
    segment TEXT NOT NULL,  -- JSON
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_null_recordings_stimulus ON null_recordings(stimulus_id);

CREATE TABLE IF NOT EXISTS stimuli (
    stimulus_id TEXT PRIMARY KEY,
    sensory_input TEXT,  -- JSON, NULL for internal stimuli
    created_at TEXT NOT NULL
);
`

// SQLite is a DataStore persisted to a SQLite database file.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the store at path and initializes
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("datastore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("datastore: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) AddRecording(segments []*neo.Segment, stim stimuli.Stimulus) error {
	return s.insertSegments("recordings", segments, stim)
}

func (s *SQLite) AddNullRecording(segments []*neo.Segment, stim stimuli.Stimulus) error {
	return s.insertSegments("null_recordings", segments, stim)
}

func (s *SQLite) insertSegments(table string, segments []*neo.Segment, stim stimuli.Stimulus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("datastore: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	stmt := fmt.Sprintf(`INSERT INTO %s (stimulus_id, sheet, segment, created_at) VALUES (?, ?, ?, ?)`, table)
	for _, seg := range segments {
		data, err := json.Marshal(seg)
		if err != nil {
			return fmt.Errorf("datastore: marshal segment: %w", err)
		}
		if _, err := tx.Exec(stmt, stim.ID(), seg.Sheet, string(data), now); err != nil {
			return fmt.Errorf("datastore: insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) AddStimulus(input *space.SensoryInput, stim stimuli.Stimulus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data any
	if input != nil {
		b, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("datastore: marshal sensory input: %w", err)
		}
		data = string(b)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO stimuli (stimulus_id, sensory_input, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(stimulus_id) DO UPDATE SET sensory_input = excluded.sensory_input`,
		stim.ID(), data, now)
	if err != nil {
		return fmt.Errorf("datastore: insert stimulus: %w", err)
	}
	return nil
}

func (s *SQLite) StimulusIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT DISTINCT stimulus_id FROM recordings ORDER BY stimulus_id`)
	if err != nil {
		return nil, fmt.Errorf("datastore: list stimuli: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("datastore: scan stimulus id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Recordings loads the stored segments for a stimulus id.
func (s *SQLite) Recordings(stimulusID string) ([]*neo.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT segment FROM recordings WHERE stimulus_id = ? ORDER BY id`, stimulusID)
	if err != nil {
		return nil, fmt.Errorf("datastore: load recordings: %w", err)
	}
	defer rows.Close()

	var segments []*neo.Segment
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("datastore: scan segment: %w", err)
		}
		var seg neo.Segment
		if err := json.Unmarshal([]byte(data), &seg); err != nil {
			return nil, fmt.Errorf("datastore: unmarshal segment: %w", err)
		}
		segments = append(segments, &seg)
	}
	return segments, rows.Err()
}
