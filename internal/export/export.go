// Package export writes point-in-time CSV snapshots of the ledger and the
// flat label-row feed the label renderer consumes.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mwhitaker/stockroom/pkg/db/models"
)

// Snapshot bundles everything one export run writes.
type Snapshot struct {
	Orders        []models.Order
	LineItems     []models.LineItem
	PartsReceived []models.PartReceived
	PartsRemoved  []models.PartRemoved
	Inventory     []models.InventoryRow
}

type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Write creates a timestamped subdirectory under the export dir and writes
// one CSV per entity plus the label feed. Returns the subdirectory path.
func (w *Writer) Write(snap Snapshot) (string, error) {
	stamp := w.now().UTC().Format("20060102_150405")
	dir := filepath.Join(w.dir, "export_"+stamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	files := []struct {
		name  string
		write func(*csv.Writer) error
	}{
		{"orders.csv", func(cw *csv.Writer) error { return writeOrders(cw, snap.Orders) }},
		{"line_items.csv", func(cw *csv.Writer) error { return writeLineItems(cw, snap.LineItems) }},
		{"parts_received.csv", func(cw *csv.Writer) error { return writePartsReceived(cw, snap.PartsReceived) }},
		{"parts_removed.csv", func(cw *csv.Writer) error { return writePartsRemoved(cw, snap.PartsRemoved) }},
		{"inventory.csv", func(cw *csv.Writer) error { return writeInventory(cw, snap.Inventory) }},
		{"label_rows.csv", func(cw *csv.Writer) error { return writeLabelRows(cw, LabelRows(snap.PartsReceived)) }},
	}

	for _, f := range files {
		if err := writeCSV(filepath.Join(dir, f.name), f.write); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func writeCSV(path string, fn func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := fn(cw); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeOrders(cw *csv.Writer, rows []models.Order) error {
	header := []string{
		"order_uid", "file_hash", "vendor", "order_ref", "source_file",
		"purchase_order", "invoice", "invoice_date", "payment_date",
		"account_number", "merchandise", "shipping", "sales_tax", "total",
		"updated_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.OrderUID, r.FileHash, r.Vendor, r.OrderRef, r.SourceFile,
			strOrEmpty(r.PurchaseOrder), strOrEmpty(r.Invoice),
			strOrEmpty(r.InvoiceDate), strOrEmpty(r.PaymentDate),
			strOrEmpty(r.AccountNumber),
			moneyOrEmpty(r.Merchandise), moneyOrEmpty(r.Shipping),
			moneyOrEmpty(r.SalesTax), moneyOrEmpty(r.Total),
			timeOrEmpty(r.UpdatedAt),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeLineItems(cw *csv.Writer, rows []models.LineItem) error {
	header := []string{
		"line_item_uid", "order_uid", "vendor", "source_file", "invoice",
		"line", "sku", "mfg_part", "coo", "description",
		"ordered", "shipped", "balance", "pack_qty", "units_received",
		"unit_price", "line_total", "part_key",
		"desc_clean", "label_line1", "label_line2", "label_short",
		"purchase_url", "qr_url", "qr_text",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.LineItemUID, r.OrderUID, r.Vendor, r.SourceFile, strOrEmpty(r.Invoice),
			intOrEmpty(r.Line), r.SKU, strOrEmpty(r.MfgPart), strOrEmpty(r.CountryOfOrig), r.Description,
			intOrEmpty(r.Ordered), intOrEmpty(r.Shipped), intOrEmpty(r.Balance),
			strconv.Itoa(r.PackQty), floatStr(r.UnitsReceived),
			moneyOrEmpty(r.UnitPrice), moneyOrEmpty(r.LineTotal), r.PartKey,
			r.DescClean, r.LabelLine1, r.LabelLine2, r.LabelShort,
			r.PurchaseURL, r.QRURL, r.QRText,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writePartsReceived(cw *csv.Writer, rows []models.PartReceived) error {
	header := []string{
		"part_key", "vendor", "sku", "mfg_part", "description",
		"label_line1", "label_line2", "label_short",
		"units_received", "total_spend", "avg_unit_cost", "last_invoice",
		"purchase_url", "qr_text", "updated_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.PartKey, r.Vendor, r.SKU, r.MfgPart, r.Description,
			r.LabelLine1, r.LabelLine2, r.LabelShort,
			floatStr(r.UnitsReceived), r.TotalSpend.String(),
			moneyOrEmpty(r.AvgUnitCost), r.LastInvoice,
			r.PurchaseURL, r.QRText, timeOrEmpty(r.UpdatedAt),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writePartsRemoved(cw *csv.Writer, rows []models.PartRemoved) error {
	header := []string{"removal_uid", "part_key", "qty_removed", "removed_at_utc", "project", "note"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.RemovalUID, r.PartKey, floatStr(r.QtyRemoved),
			timeOrEmpty(r.RemovedAtUTC), r.Project, r.Note,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeInventory(cw *csv.Writer, rows []models.InventoryRow) error {
	header := []string{
		"part_key", "vendor", "sku", "label_line1", "label_line2", "label_short",
		"units_received", "units_removed", "on_hand",
		"avg_unit_cost", "total_spend", "last_invoice",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.PartKey, r.Vendor, r.SKU, r.LabelLine1, r.LabelLine2, r.LabelShort,
			floatStr(r.UnitsReceived), floatStr(r.UnitsRemoved), floatStr(r.OnHand),
			moneyOrEmpty(r.AvgUnitCost), r.TotalSpend.String(), r.LastInvoice,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func moneyOrEmpty(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func floatStr(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func timeOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
