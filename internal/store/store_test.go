package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mwhitaker/stockroom/pkg/db/models"
	pkgerrors "github.com/mwhitaker/stockroom/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	s := New(conn)
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

func money(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestEnsureSchemaCreatesTables(t *testing.T) {
	s := newTestStore(t)
	m := s.DB(nil).Migrator()
	for _, table := range []string{"ingested_files", "orders", "line_items", "parts_received", "parts_removed", "inventory"} {
		if !m.HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestEnsureSchemaAddsMissingColumns(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// a ledger written by an older build: orders exists but is missing
	// most of today's columns
	if err := conn.Exec(`CREATE TABLE orders (order_uid TEXT PRIMARY KEY, vendor TEXT)`).Error; err != nil {
		t.Fatalf("seed old table: %v", err)
	}

	s := New(conn)
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	for _, col := range []string{"order_ref", "invoice", "total", "updated_at"} {
		if !conn.Migrator().HasColumn(&models.Order{}, col) {
			t.Fatalf("expected column %s to be added", col)
		}
	}

	// and the widened table accepts writes
	row := models.Order{OrderUID: "o1", Vendor: "mcmaster", OrderRef: "INV-1", Total: money("10.00")}
	if err := s.UpsertOrders(context.Background(), []models.Order{row}); err != nil {
		t.Fatalf("upsert after widening: %v", err)
	}
}

func TestUpsertOrdersMergesByUID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := models.Order{OrderUID: "o1", Vendor: "mcmaster", OrderRef: "INV-1", Total: money("10.00")}
	if err := s.UpsertOrders(ctx, []models.Order{first}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := first
	second.Total = money("12.50")
	if err := s.UpsertOrders(ctx, []models.Order{second}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var rows []models.Order
	if err := s.DB(nil).Find(&rows).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one merged row, got %d", len(rows))
	}
	if rows[0].Total.Decimal.String() != "12.5" {
		t.Fatalf("expected new total to win, got %s", rows[0].Total.Decimal)
	}
	if rows[0].UpdatedAt.IsZero() {
		t.Fatalf("updated_at should be stamped")
	}
}

func TestAppendRemovalsNeverMerges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := models.PartRemoved{RemovalUID: "r1", PartKey: "mcmaster:9657K103", QtyRemoved: 2}
	b := models.PartRemoved{RemovalUID: "r2", PartKey: "mcmaster:9657K103", QtyRemoved: 3}
	if err := s.AppendRemovals(ctx, []models.PartRemoved{a}); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if err := s.AppendRemovals(ctx, []models.PartRemoved{b}); err != nil {
		t.Fatalf("append b: %v", err)
	}

	rows, err := s.AllRemovals(ctx)
	if err != nil {
		t.Fatalf("all removals: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected both removal events kept, got %d", len(rows))
	}
}

func TestReplaceInventoryRebuildsWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := []models.InventoryRow{
		{PartKey: "a:1", OnHand: 5},
		{PartKey: "a:2", OnHand: 1},
	}
	if err := s.ReplaceInventory(ctx, old); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	fresh := []models.InventoryRow{{PartKey: "a:3", OnHand: 7}}
	if err := s.ReplaceInventory(ctx, fresh); err != nil {
		t.Fatalf("replace snapshot: %v", err)
	}

	rows, err := s.SearchInventory(ctx, InventoryFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 || rows[0].PartKey != "a:3" {
		t.Fatalf("expected snapshot to be fully replaced, got %+v", rows)
	}
}

func TestSearchInventoryFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []models.InventoryRow{
		{PartKey: "mcmaster:9657K103", Vendor: "mcmaster", Description: "Compression Spring", OnHand: 4},
		{PartKey: "digikey:296-1234-ND", Vendor: "digikey", Description: "IC OPAMP", OnHand: 10},
	}
	if err := s.ReplaceInventory(ctx, rows); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := s.SearchInventory(ctx, InventoryFilter{Query: "spring"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].PartKey != "mcmaster:9657K103" {
		t.Fatalf("text filter wrong: %+v", got)
	}

	got, err = s.SearchInventory(ctx, InventoryFilter{Vendor: "digikey"})
	if err != nil {
		t.Fatalf("search by vendor: %v", err)
	}
	if len(got) != 1 || got[0].Vendor != "digikey" {
		t.Fatalf("vendor filter wrong: %+v", got)
	}
}

func TestLookupsReportNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InventoryByPartKey(ctx, "nope:missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %v", err)
	}

	_, _, err = s.OrderByUID(ctx, "missing-order")
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code for order, got %v", err)
	}
}
