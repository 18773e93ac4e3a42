package index

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/sdutils/internal/grid"
	"github.com/hyperifyio/sdutils/internal/prompttest"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "grids.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }
	return db
}

func entry(seq int, prompt, sum string) grid.Entry {
	return grid.Entry{
		Seq:       seq,
		Record:    prompttest.Record{Prompt: prompt, PromptSR: "a,b", ZAxis: prompttest.AxisPromptSR, Seed: 555},
		ImagePath: "/out/" + prompt + ".png",
		TextPath:  "/out/" + prompt + ".txt",
		Bytes:     10 * seq,
		SHA256:    sum,
	}
}

func TestAddAndByRun(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	run := grid.RunInfo{ID: "run-1", OutputDir: "/out", Checkpoints: "SDv1-5.ckpt,m_gs5.ckpt"}
	for _, e := range []grid.Entry{entry(2, "fox", "bb"), entry(1, "owl", "aa")} {
		if err := db.Add(ctx, run, e); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := db.Add(ctx, grid.RunInfo{ID: "run-2"}, entry(1, "cat", "aa")); err != nil {
		t.Fatalf("Add run-2: %v", err)
	}

	rows, err := db.ByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ByRun: %v", err)
	}
	if len(rows) != 2 || rows[0].Seq != 1 || rows[0].Record.Prompt != "owl" || rows[1].Record.Prompt != "fox" {
		t.Fatalf("rows: %+v", rows)
	}
	r := rows[1]
	if r.Record.ZAxis != prompttest.AxisPromptSR || r.Record.Seed != 555 || r.Checkpoints != run.Checkpoints || r.Bytes != 20 || r.SHA256 != "bb" {
		t.Fatalf("row: %+v", r)
	}
	if !r.CreatedAt.Equal(time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)) {
		t.Fatalf("created_at=%v", r.CreatedAt)
	}

	dups, err := db.BySHA256(ctx, "aa")
	if err != nil {
		t.Fatalf("BySHA256: %v", err)
	}
	if len(dups) != 2 {
		t.Fatalf("want 2 rows sharing a digest, got %d", len(dups))
	}
}

func TestAdd_DuplicateSeqRejected(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	run := grid.RunInfo{ID: "run-1"}
	if err := db.Add(ctx, run, entry(1, "a", "x")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := db.Add(ctx, run, entry(1, "b", "y"))
	if err == nil || !strings.Contains(err.Error(), "index grid 1") {
		t.Fatalf("err=%v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grids.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Add(context.Background(), grid.RunInfo{ID: "r"}, entry(1, "a", "x")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = db.Close() }()
	rows, err := db.ByRun(context.Background(), "r")
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
}

// TestOpen_PrepareFailureClosesStatements fails the last Prepare and checks
// that the statements prepared before it were closed.
func TestOpen_PrepareFailureClosesStatements(t *testing.T) {
	orig := prepareFunc
	t.Cleanup(func() { prepareFunc = orig })
	var prepared []*sql.Stmt
	prepareFunc = func(db *sql.DB, query string) (*sql.Stmt, error) {
		if len(prepared) == 2 {
			return nil, errors.New("prepare failed")
		}
		st, err := db.Prepare(query)
		if err == nil {
			prepared = append(prepared, st)
		}
		return st, err
	}
	if _, err := Open(filepath.Join(t.TempDir(), "grids.db")); err == nil || !strings.Contains(err.Error(), "prepare failed") {
		t.Fatalf("err=%v; want prepare failure", err)
	}
	if len(prepared) != 2 {
		t.Fatalf("prepared %d statements; want 2", len(prepared))
	}
	for i, st := range prepared {
		if _, err := st.Exec(); err == nil || !strings.Contains(err.Error(), "statement is closed") {
			t.Fatalf("statement %d still open: err=%v", i, err)
		}
	}
}
