package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), 0)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE test_table (id INTEGER PRIMARY KEY, value TEXT NOT NULL UNIQUE)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM test_table`); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count
}

func TestWithTx_Success(t *testing.T) {
	db := setupTestDB(t)

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if count := countRows(t, db); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	db := setupTestDB(t)

	testErr := errors.New("test error")

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "first"); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "second"); err != nil {
			return err
		}
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Fatalf("WithTx should return the error: got %v, want %v", err, testErr)
	}
	if count := countRows(t, db); count != 0 {
		t.Errorf("count = %d, want 0 (rolled back)", count)
	}
}

func TestWithTx_ConstraintIsClassified(t *testing.T) {
	db := setupTestDB(t)

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "dup"); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "dup")
		return err
	})

	if !errors.Is(err, ErrReferentialIntegrity) {
		t.Fatalf("err = %v, want ErrReferentialIntegrity", err)
	}
	if count := countRows(t, db); count != 0 {
		t.Errorf("count = %d, want 0 (rolled back)", count)
	}
}

func TestWithTx_CanceledContext(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	err := WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test"); err != nil {
			return err
		}
		cancel()
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if count := countRows(t, db); count != 0 {
		t.Errorf("count = %d, want 0 (rolled back)", count)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"tx done", sql.ErrTxDone, ErrStorageUnavailable},
		{"already classified", ErrKindMismatch, ErrKindMismatch},
		{"unrelated", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Kind(Classify(tt.err))
			if got != tt.want {
				t.Errorf("Kind(Classify(%v)) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_ContextErrorsPassThrough(t *testing.T) {
	if err := Classify(context.Canceled); err != context.Canceled {
		t.Errorf("Classify(context.Canceled) = %v", err)
	}
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	db := setupTestDB(t)

	var fk int
	if err := db.Get(&fk, `PRAGMA foreign_keys`); err != nil {
		t.Fatalf("pragma failed: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var mode string
	if err := db.Get(&mode, `PRAGMA journal_mode`); err != nil {
		t.Fatalf("pragma failed: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(context.Background(), MemoryPath, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	v, err := SchemaVersion(context.Background(), db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	for range 2 {
		db, err := Open(context.Background(), path, 0)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		db.Close()
	}
}

func TestCaseFold(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		in   any
		want sql.NullString
	}{
		{"ÉLAN", sql.NullString{String: "élan", Valid: true}},
		{"Œuvre", sql.NullString{String: "œuvre", Valid: true}},
		{"plain", sql.NullString{String: "plain", Valid: true}},
		{nil, sql.NullString{}},
	}
	for _, tt := range tests {
		var got sql.NullString
		if err := db.Get(&got, `SELECT casefold(?)`, tt.in); err != nil {
			t.Fatalf("casefold(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("casefold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPtrToNullInt64(t *testing.T) {
	if n := PtrToNullInt64(nil); n.Valid {
		t.Errorf("expected invalid, got %v", n)
	}

	v := int64(-100)
	n := PtrToNullInt64(&v)
	if !n.Valid || n.Int64 != -100 {
		t.Errorf("got %v, want {-100 true}", n)
	}
}
