package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/infra/storetest"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "sheep.db")); os.IsNotExist(err) {
		t.Error("sheep.db should exist")
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	s := domain.NewAccountState("u1")
	s.TotalPoints = 77
	s.UpdatedAt = time.Now()
	if err := db.SaveAccount(context.Background(), s); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("re-Open() error: %v", err)
	}
	defer db.Close()
	got, err := db.LoadAccount(context.Background(), "u1")
	if err != nil {
		t.Fatalf("LoadAccount after reopen: %v", err)
	}
	if got.TotalPoints != 77 {
		t.Errorf("expected 77, got %d", got.TotalPoints)
	}
}

// ─── Store Contract ─────────────────────────────────────────────────────────

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store { return newTestDB(t) })
}

// ─── Boundary Rejection ─────────────────────────────────────────────────────

func TestLoadAccount_RejectsUnknownStage(t *testing.T) {
	db := newTestDB(t)
	_, err := db.db.Exec(
		`INSERT INTO accounts (user_id, stage, updated_at) VALUES ('u1', 'golden_ram', 0)`,
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	_, err = db.LoadAccount(context.Background(), "u1")
	if err == nil || !strings.Contains(err.Error(), "unknown sheep stage") {
		t.Errorf("expected unknown stage error, got %v", err)
	}
}
