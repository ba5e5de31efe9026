package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mwhitaker/stockroom/internal/labels"
	"github.com/mwhitaker/stockroom/internal/registry"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/db/models"
)

type fakeParser struct {
	vendor string
	order  OrderRecord
	lines  []LineRecord
	err    error
}

func (f *fakeParser) Vendor() string { return f.vendor }

func (f *fakeParser) Matches(path string) bool {
	return strings.Contains(filepath.Base(path), f.vendor)
}

func (f *fakeParser) ParseOrder(string) (OrderRecord, error) {
	if f.err != nil {
		return OrderRecord{}, f.err
	}
	return f.order, nil
}

func (f *fakeParser) ParseLineItems(string) ([]LineRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lines, nil
}

func writePDF(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n"+body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestPipeline(t *testing.T, parsers ...Parser) (*Pipeline, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	st := store.New(conn)
	p, err := NewPipeline(PipelineParams{
		Registry:          registry.NewRepository(conn),
		Store:             st,
		Deriver:           labels.NewDeriver(labels.Config{}),
		Parsers:           parsers,
		QuarantineDirName: "duplicates",
	})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p, st
}

func mcmasterParser() *fakeParser {
	return &fakeParser{
		vendor: "mcmaster",
		order: OrderRecord{
			Vendor:  "McMaster",
			Invoice: "INV-100",
			Total:   "$31.00",
		},
		lines: []LineRecord{
			{
				Line:        "1",
				SKU:         "9657K103",
				Description: "Compression Spring, 1\" Long, Pack of 12",
				Ordered:     "2",
				Shipped:     "2",
				UnitPrice:   "3.00",
			},
			{
				Line:        "2",
				SKU:         "91251A540",
				Description: "Socket Head Screw, 1/4\"-20",
				Ordered:     "10",
				Shipped:     "10",
				LineTotal:   "25.00",
			},
		},
	}
}

func TestRunIngestsAndReconciles(t *testing.T) {
	p, st := newTestPipeline(t, mcmasterParser())
	ctx := context.Background()
	dir := t.TempDir()

	pdf := writePDF(t, dir, "mcmaster_inv_100.pdf", "receipt body")
	notPDF := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notPDF, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	report, err := p.Run(ctx, []string{pdf, notPDF})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.OK != 1 || report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.OrdersUpserted != 1 || report.LineItemsUpserted != 2 || report.PartsTracked != 2 {
		t.Fatalf("upsert counts wrong: %+v", report)
	}

	items, err := st.AllLineItems(ctx)
	if err != nil {
		t.Fatalf("all line items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(items))
	}

	spring := items[0]
	if spring.PackQty != 12 {
		t.Fatalf("pack qty = %d, want 12", spring.PackQty)
	}
	if spring.UnitsReceived != 24 {
		t.Fatalf("units = %v, want 2 packs of 12 = 24", spring.UnitsReceived)
	}
	// total backfilled from ordered x price
	if !spring.LineTotal.Valid || spring.LineTotal.Decimal.String() != "6" {
		t.Fatalf("line total = %+v, want backfilled 6", spring.LineTotal)
	}

	screw := items[1]
	// price backfilled from total / ordered
	if !screw.UnitPrice.Valid || screw.UnitPrice.Decimal.String() != "2.5" {
		t.Fatalf("unit price = %+v, want backfilled 2.5", screw.UnitPrice)
	}
	if screw.PurchaseURL != "https://www.mcmaster.com/#91251A540" {
		t.Fatalf("purchase url = %q", screw.PurchaseURL)
	}

	// on-hand snapshot rebuilt
	row, err := st.InventoryByPartKey(ctx, "mcmaster:9657K103")
	if err != nil {
		t.Fatalf("inventory lookup: %v", err)
	}
	if row.OnHand != 24 {
		t.Fatalf("on hand = %v, want 24", row.OnHand)
	}
}

func TestRunQuarantinesDuplicates(t *testing.T) {
	p, _ := newTestPipeline(t, mcmasterParser())
	ctx := context.Background()
	dir := t.TempDir()

	first := writePDF(t, dir, "mcmaster_inv_100.pdf", "same bytes")
	if _, err := p.Run(ctx, []string{first}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// same content arrives again under a new name
	second := writePDF(t, dir, "mcmaster_inv_100_copy.pdf", "same bytes")
	report, err := p.Run(ctx, []string{second})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Duplicates != 1 || report.OK != 0 {
		t.Fatalf("report = %+v", report)
	}

	moved := report.Results[0].MovedTo
	if moved == "" {
		t.Fatalf("duplicate should record its quarantine destination")
	}
	if filepath.Dir(moved) != filepath.Join(dir, "duplicates") {
		t.Fatalf("quarantined to %q", moved)
	}
	if _, err := os.Stat(second); !os.IsNotExist(err) {
		t.Fatalf("duplicate file should be moved out of the intake folder")
	}
}

func TestRunQuarantinesDuplicatesWithinOneBatch(t *testing.T) {
	broken := &fakeParser{vendor: "mcmaster", err: errors.New("table extraction failed")}
	p, _ := newTestPipeline(t, broken)
	ctx := context.Background()
	dir := t.TempDir()

	// byte-identical corrupt files in the same batch: the copy is caught by
	// the batch-local seen set even though the first never registered
	first := writePDF(t, dir, "mcmaster_inv_100.pdf", "same bytes")
	second := writePDF(t, dir, "mcmaster_inv_100_copy.pdf", "same bytes")

	report, err := p.Run(ctx, []string{first, second})
	if err == nil {
		t.Fatalf("expected the parse failure to surface")
	}
	if report.Failed != 1 || report.Duplicates != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Results[0].Status != StatusParseFailed {
		t.Fatalf("first status = %q", report.Results[0].Status)
	}
	if report.Results[1].Status != StatusDuplicate {
		t.Fatalf("second status = %q", report.Results[1].Status)
	}
	if filepath.Dir(report.Results[1].MovedTo) != filepath.Join(dir, "duplicates") {
		t.Fatalf("copy should be quarantined, moved to %q", report.Results[1].MovedTo)
	}
	if _, err := os.Stat(second); !os.IsNotExist(err) {
		t.Fatalf("copy should be moved out of the intake folder")
	}
}

func TestRunPreservesManuallyReceivedParts(t *testing.T) {
	p, st := newTestPipeline(t, mcmasterParser())
	ctx := context.Background()
	dir := t.TempDir()

	if err := st.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	manual := models.PartReceived{
		PartKey:       "handco:h-1",
		Vendor:        "handco",
		SKU:           "H-1",
		Description:   "Hand-counted bracket",
		UnitsReceived: 7,
	}
	if err := st.SavePartReceived(ctx, &manual); err != nil {
		t.Fatalf("save manual part: %v", err)
	}

	pdf := writePDF(t, dir, "mcmaster_inv_100.pdf", "receipt body")
	if _, err := p.Run(ctx, []string{pdf}); err != nil {
		t.Fatalf("run: %v", err)
	}

	// the snapshot rebuild must keep parts that have no line items
	row, err := st.InventoryByPartKey(ctx, "handco:h-1")
	if err != nil {
		t.Fatalf("manual part dropped from inventory: %v", err)
	}
	if row.OnHand != 7 {
		t.Fatalf("on hand = %v, want 7", row.OnHand)
	}
}

func TestRunIsIdempotentOnReIngest(t *testing.T) {
	parser := mcmasterParser()
	p, st := newTestPipeline(t, parser)
	ctx := context.Background()
	dir := t.TempDir()

	pdf := writePDF(t, dir, "mcmaster_inv_100.pdf", "receipt body")
	if _, err := p.Run(ctx, []string{pdf}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	before, err := st.AllLineItems(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// recreate the identical file; the registry catches it before parsing
	pdf = writePDF(t, dir, "mcmaster_inv_100.pdf", "receipt body")
	if _, err := p.Run(ctx, []string{pdf}); err != nil {
		t.Fatalf("second run: %v", err)
	}

	after, err := st.AllLineItems(ctx)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("re-ingest grew the ledger: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].LineItemUID != after[i].LineItemUID {
			t.Fatalf("line item uids changed across runs")
		}
	}
}

func TestRunParseFailureDiscardsFile(t *testing.T) {
	broken := &fakeParser{vendor: "mcmaster", err: errors.New("table extraction failed")}
	p, st := newTestPipeline(t, broken)
	ctx := context.Background()
	dir := t.TempDir()

	pdf := writePDF(t, dir, "mcmaster_inv_999.pdf", "corrupt")
	report, err := p.Run(ctx, []string{pdf})
	if err == nil {
		t.Fatalf("expected the per-file failure to surface")
	}
	if report == nil || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}

	var count int64
	if err := st.DB(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed file must not commit partial state")
	}

	// the hash was not registered, so a fixed parser can retry the file
	broken.err = nil
	broken.order = OrderRecord{Vendor: "mcmaster", Invoice: "INV-999"}
	broken.lines = []LineRecord{{Line: "1", SKU: "X1", Description: "Widget", Ordered: "1", Shipped: "1", UnitPrice: "2.00"}}

	report, err = p.Run(ctx, []string{pdf})
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if report.OK != 1 {
		t.Fatalf("retry should succeed, got %+v", report)
	}
}

func TestRunNoParserMatch(t *testing.T) {
	p, _ := newTestPipeline(t, mcmasterParser())
	dir := t.TempDir()

	pdf := writePDF(t, dir, "unknownvendor_inv.pdf", "mystery layout")
	report, err := p.Run(context.Background(), []string{pdf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Results[0].Status != StatusSkippedNoParser {
		t.Fatalf("status = %q", report.Results[0].Status)
	}
}
