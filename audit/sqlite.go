package audit

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/hoju/extract"
	"github.com/domino14/hoju/feature"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id INTEGER PRIMARY KEY,
	file TEXT NOT NULL,
	round_id TEXT NOT NULL,
	bakaze TEXT NOT NULL,
	kyoku INTEGER NOT NULL,
	honba INTEGER NOT NULL,
	actor INTEGER NOT NULL,
	actor_name TEXT,
	reacher INTEGER NOT NULL,
	reacher_name TEXT,
	discarded TEXT NOT NULL,
	waits TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS candidates (
	decision_id INTEGER NOT NULL REFERENCES decisions(id),
	tile TEXT NOT NULL,
	hit INTEGER NOT NULL,
	features TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS candidates_decision ON candidates(decision_id);
`

// SQLiteRecorder stores decisions in a sqlite database, one transaction per
// decision.
type SQLiteRecorder struct {
	db      *sql.DB
	catalog *feature.Catalog
}

func OpenSQLite(path string, c *feature.Catalog) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}
	log.Info().Str("path", path).Msg("audit-sqlite-open")
	return &SQLiteRecorder{db: db, catalog: c}, nil
}

func (s *SQLiteRecorder) OnDecision(ev *extract.DecisionEvent) error {
	m := NewMessage(ev, s.catalog)
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.Exec(`INSERT INTO decisions
		(file, round_id, bakaze, kyoku, honba, actor, actor_name, reacher, reacher_name, discarded, waits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.File, m.Round, m.Bakaze, m.Kyoku, m.Honba, m.Actor, m.ActorName,
		m.Reacher, m.ReacherName, m.Discarded, strings.Join(m.Waits, " "))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, c := range m.Candidates {
		hit := 0
		if c.Hit {
			hit = 1
		}
		_, err := tx.Exec(`INSERT INTO candidates (decision_id, tile, hit, features) VALUES (?, ?, ?, ?)`,
			id, c.Tile, hit, strings.Join(c.Features, " "))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DB exposes the database for queries.
func (s *SQLiteRecorder) DB() *sql.DB {
	return s.db
}

func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}
