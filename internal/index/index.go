// Package index keeps a local sqlite catalog of generated grids so runs can
// be compared later without walking output directories.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperifyio/sdutils/internal/grid"
	"github.com/hyperifyio/sdutils/internal/prompttest"
)

const schema = `CREATE TABLE IF NOT EXISTS grid (
	run_id      TEXT    NOT NULL,
	seq         INTEGER NOT NULL,
	seed        INTEGER NOT NULL,
	prompt      TEXT    NOT NULL,
	prompt_sr   TEXT    NOT NULL,
	z_axis      TEXT    NOT NULL,
	checkpoints TEXT    NOT NULL,
	output_dir  TEXT    NOT NULL,
	image_path  TEXT    NOT NULL,
	text_path   TEXT    NOT NULL,
	bytes       INTEGER NOT NULL,
	sha256      TEXT    NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS grid_sha256 ON grid (sha256);`

// Row is one indexed grid.
type Row struct {
	RunID       string
	Seq         int
	Record      prompttest.Record
	Checkpoints string
	OutputDir   string
	ImagePath   string
	TextPath    string
	Bytes       int
	SHA256      string
	CreatedAt   time.Time
}

// DB is a grid index backed by a sqlite file. It implements grid.Sink.
type DB struct {
	db        *sql.DB
	insertRow *sql.Stmt
	byRun     *sql.Stmt
	bySHA     *sql.Stmt
	now       func() time.Time
}

// Open opens (creating if needed) the index at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	d, err := newDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

const cols = "run_id, seq, seed, prompt, prompt_sr, z_axis, checkpoints, output_dir, image_path, text_path, bytes, sha256, created_at"

var prepareFunc = func(db *sql.DB, query string) (*sql.Stmt, error) { return db.Prepare(query) }

func newDB(db *sql.DB) (*DB, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	stmts, err := prepareAll(db,
		"INSERT INTO grid ("+cols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		"SELECT "+cols+" FROM grid WHERE run_id = ? ORDER BY seq",
		"SELECT "+cols+" FROM grid WHERE sha256 = ? ORDER BY created_at, run_id, seq",
	)
	if err != nil {
		return nil, err
	}
	return &DB{db: db, insertRow: stmts[0], byRun: stmts[1], bySHA: stmts[2], now: time.Now}, nil
}

// prepareAll prepares every query or none: on failure the statements already
// prepared are closed.
func prepareAll(db *sql.DB, queries ...string) ([]*sql.Stmt, error) {
	stmts := make([]*sql.Stmt, 0, len(queries))
	for _, q := range queries {
		st, err := prepareFunc(db, q)
		if err != nil {
			for _, prev := range stmts {
				_ = prev.Close()
			}
			return nil, fmt.Errorf("prepare index statement: %w", err)
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

// Close releases the prepared statements and the database handle.
func (d *DB) Close() error {
	for _, s := range []*sql.Stmt{d.insertRow, d.byRun, d.bySHA} {
		_ = s.Close()
	}
	return d.db.Close()
}

// Add records one saved grid.
func (d *DB) Add(ctx context.Context, run grid.RunInfo, e grid.Entry) error {
	_, err := d.insertRow.ExecContext(ctx,
		run.ID, e.Seq, e.Record.Seed, e.Record.Prompt, e.Record.PromptSR, e.Record.ZAxis.String(),
		run.Checkpoints, run.OutputDir, e.ImagePath, e.TextPath, e.Bytes, e.SHA256, d.now().UTC())
	if err != nil {
		return fmt.Errorf("index grid %d: %w", e.Seq, err)
	}
	return nil
}

// ByRun returns the grids of one run in sequence order.
func (d *DB) ByRun(ctx context.Context, runID string) ([]Row, error) {
	return d.query(ctx, d.byRun, runID)
}

// BySHA256 returns every grid whose image has the given digest.
func (d *DB) BySHA256(ctx context.Context, sum string) ([]Row, error) {
	return d.query(ctx, d.bySHA, sum)
}

func (d *DB) query(ctx context.Context, stmt *sql.Stmt, arg string) ([]Row, error) {
	rows, err := stmt.QueryContext(ctx, arg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Row
	for rows.Next() {
		var r Row
		var axis string
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Record.Seed, &r.Record.Prompt, &r.Record.PromptSR, &axis,
			&r.Checkpoints, &r.OutputDir, &r.ImagePath, &r.TextPath, &r.Bytes, &r.SHA256, &r.CreatedAt); err != nil {
			return nil, err
		}
		if r.Record.ZAxis, err = prompttest.ParseAxisKind(axis); err != nil {
			return nil, fmt.Errorf("row %s/%d: %w", r.RunID, r.Seq, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
