package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mwhitaker/stockroom/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.IngestedFile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func TestHasAndRegister(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	seen, err := repo.Has(ctx, "abc123")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if seen {
		t.Fatalf("fresh hash should not be registered")
	}

	in := RegisterInput{
		FileHash:     "abc123",
		OriginalPath: "/receipts/mcmaster_inv_100.pdf",
		Vendor:       "mcmaster",
		OrderRef:     "INV-100",
	}
	if err := repo.Register(ctx, in); err != nil {
		t.Fatalf("Register: %v", err)
	}

	seen, err = repo.Has(ctx, "abc123")
	if err != nil {
		t.Fatalf("Has after register: %v", err)
	}
	if !seen {
		t.Fatalf("registered hash should be reported as seen")
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	first := RegisterInput{FileHash: "h1", OriginalPath: "/a.pdf", Vendor: "digikey", OrderRef: "INV-1"}
	if err := repo.Register(ctx, first); err != nil {
		t.Fatalf("first register: %v", err)
	}

	again := RegisterInput{FileHash: "h1", OriginalPath: "/elsewhere/a.pdf", Vendor: "digikey", OrderRef: "INV-1"}
	if err := repo.Register(ctx, again); err != nil {
		t.Fatalf("second register should not error: %v", err)
	}

	var rows []models.IngestedFile
	if err := repo.DB(nil).Find(&rows).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].OriginalPath != "/a.pdf" {
		t.Fatalf("first registration must win, got %q", rows[0].OriginalPath)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return ts }
		in := RegisterInput{FileHash: fmt.Sprintf("h%d", i), OriginalPath: fmt.Sprintf("/r%d.pdf", i)}
		if err := repo.Register(ctx, in); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	rows, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].FileHash != "h2" || rows[1].FileHash != "h1" {
		t.Fatalf("expected newest first, got %s then %s", rows[0].FileHash, rows[1].FileHash)
	}
}

func TestQuarantine(t *testing.T) {
	dir := t.TempDir()

	write := func(name string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("pdf bytes"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	first := write("inv_100.pdf")
	moved, err := Quarantine(first, "duplicates")
	if err != nil {
		t.Fatalf("quarantine: %v", err)
	}
	if moved != filepath.Join(dir, "duplicates", "inv_100.pdf") {
		t.Fatalf("unexpected destination %q", moved)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Fatalf("source file should be gone")
	}

	second := write("inv_100.pdf")
	moved, err = Quarantine(second, "duplicates")
	if err != nil {
		t.Fatalf("quarantine second copy: %v", err)
	}
	if filepath.Base(moved) != "inv_100__dup2.pdf" {
		t.Fatalf("expected de-conflicted name, got %q", filepath.Base(moved))
	}

	third := write("inv_100.pdf")
	moved, err = Quarantine(third, "duplicates")
	if err != nil {
		t.Fatalf("quarantine third copy: %v", err)
	}
	if filepath.Base(moved) != "inv_100__dup3.pdf" {
		t.Fatalf("expected __dup3 suffix, got %q", filepath.Base(moved))
	}
}
