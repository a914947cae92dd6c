// Package store keeps a history of transcribed takes in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/linuxmatters/rhythmimick/internal/pattern"
	"github.com/linuxmatters/rhythmimick/internal/processor"
)

var (
	ErrNotFound  = errors.New("take not found")
	ErrAmbiguous = errors.New("take id prefix is ambiguous")
)

const schema = `
	CREATE TABLE IF NOT EXISTS takes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		createdAt REAL NOT NULL,
		sampleRate REAL NOT NULL,
		bars INTEGER NOT NULL,
		bpm INTEGER NOT NULL,
		duration REAL NOT NULL,
		peakDb REAL NOT NULL,
		humRatio REAL NOT NULL,
		hitCapacity INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS notes (
		takeId TEXT NOT NULL REFERENCES takes(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		row INTEGER NOT NULL,
		startTick INTEGER NOT NULL,
		lengthTicks INTEGER NOT NULL,
		velocity INTEGER NOT NULL,
		PRIMARY KEY (takeId, seq)
	);
`

// Take is one stored transcription.
type Take struct {
	ID          string
	Name        string // input file name or capture source
	Source      string
	CreatedAt   time.Time
	SampleRate  float64
	Bars        int
	BPM         int
	Duration    float64 // seconds
	PeakDB      float64
	HumRatio    float64
	HitCapacity bool

	NoteCount int
	Pattern   pattern.Pattern // nil in ListTakes results
}

// ShortID returns the first eight characters of the take id.
func (t *Take) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// TakeFromResult builds an unsaved take from a transcription result.
func TakeFromResult(name, source string, r *processor.Result) *Take {
	return &Take{
		Name:        name,
		Source:      source,
		SampleRate:  r.SampleRate,
		Bars:        r.Bars(),
		BPM:         r.BPM(),
		Duration:    r.Duration,
		PeakDB:      r.PeakDB,
		HumRatio:    r.HumRatio,
		HitCapacity: r.HitCapacity,
		NoteCount:   len(r.Pattern),
		Pattern:     r.Pattern,
	}
}

// Store provides access to the take history database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rhythmimick", "takes.sqlite")
}

// Open opens or creates the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTake stores a take and its notes. An empty ID is filled with a new
// UUID and a zero CreatedAt with the current time.
func (s *Store) SaveTake(t *Take) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.NoteCount = len(t.Pattern)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO takes (id, name, source, createdAt, sampleRate, bars, bpm,
			duration, peakDb, humRatio, hitCapacity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Source, unixFromTime(t.CreatedAt), t.SampleRate, t.Bars, t.BPM,
		t.Duration, t.PeakDB, t.HumRatio, t.HitCapacity); err != nil {
		return fmt.Errorf("insert take: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO notes (takeId, seq, row, startTick, lengthTicks, velocity)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare notes: %w", err)
	}
	defer stmt.Close()

	for i, n := range t.Pattern {
		if _, err := stmt.Exec(t.ID, i, n.Row, n.StartTick, n.LengthTicks, n.Velocity); err != nil {
			return fmt.Errorf("insert note %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit take: %w", err)
	}
	return nil
}

// ListTakes returns up to limit takes, newest first, without their notes.
// A limit of 0 or less returns every take.
func (s *Store) ListTakes(limit int) ([]Take, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.source, t.createdAt, t.sampleRate, t.bars, t.bpm,
			t.duration, t.peakDb, t.humRatio, t.hitCapacity,
			(SELECT COUNT(*) FROM notes n WHERE n.takeId = t.id)
		FROM takes t
		ORDER BY t.createdAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query takes: %w", err)
	}
	defer rows.Close()

	var takes []Take
	for rows.Next() {
		t, err := scanTake(rows)
		if err != nil {
			return nil, err
		}
		takes = append(takes, *t)
	}
	return takes, rows.Err()
}

// LoadTake returns the take whose id equals or starts with idOrPrefix,
// including its notes in their original order.
func (s *Store) LoadTake(idOrPrefix string) (*Take, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.source, t.createdAt, t.sampleRate, t.bars, t.bpm,
			t.duration, t.peakDb, t.humRatio, t.hitCapacity,
			(SELECT COUNT(*) FROM notes n WHERE n.takeId = t.id)
		FROM takes t
		WHERE t.id = ? OR t.id LIKE ? ESCAPE '\'
		ORDER BY t.id = ? DESC
		LIMIT 2
	`, idOrPrefix, escapeLike(idOrPrefix)+"%", idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("query take: %w", err)
	}

	var matches []*Take
	for rows.Next() {
		t, err := scanTake(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query take: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case len(matches) > 1 && matches[0].ID != idOrPrefix:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, idOrPrefix)
	}

	t := matches[0]
	t.Pattern, err = s.notesForTake(t.ID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) notesForTake(id string) (pattern.Pattern, error) {
	rows, err := s.db.Query(`
		SELECT row, startTick, lengthTicks, velocity
		FROM notes
		WHERE takeId = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	p := pattern.Pattern{}
	for rows.Next() {
		var n pattern.DrumNote
		if err := rows.Scan(&n.Row, &n.StartTick, &n.LengthTicks, &n.Velocity); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		p = append(p, n)
	}
	return p, rows.Err()
}

func scanTake(rows *sql.Rows) (*Take, error) {
	var t Take
	var createdAt float64
	if err := rows.Scan(&t.ID, &t.Name, &t.Source, &createdAt, &t.SampleRate,
		&t.Bars, &t.BPM, &t.Duration, &t.PeakDB, &t.HumRatio, &t.HitCapacity,
		&t.NoteCount); err != nil {
		return nil, fmt.Errorf("scan take: %w", err)
	}
	t.CreatedAt = timeFromUnix(createdAt)
	return &t, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
