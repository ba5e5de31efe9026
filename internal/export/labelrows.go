package export

import (
	"encoding/csv"

	"github.com/mwhitaker/stockroom/pkg/db/models"
)

// LabelRow is the flat per-part record the label renderer consumes. No page
// geometry crosses this boundary.
type LabelRow struct {
	PartKey     string `json:"part_key"`
	Vendor      string `json:"vendor"`
	SKU         string `json:"sku"`
	LabelLine1  string `json:"label_line1"`
	LabelLine2  string `json:"label_line2"`
	LabelShort  string `json:"label_short"`
	PurchaseURL string `json:"purchase_url"`
	QRText      string `json:"qr_text"`
}

// LabelRows flattens per-part aggregates into renderer rows, preserving
// input order.
func LabelRows(parts []models.PartReceived) []LabelRow {
	rows := make([]LabelRow, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, LabelRow{
			PartKey:     p.PartKey,
			Vendor:      p.Vendor,
			SKU:         p.SKU,
			LabelLine1:  p.LabelLine1,
			LabelLine2:  p.LabelLine2,
			LabelShort:  p.LabelShort,
			PurchaseURL: p.PurchaseURL,
			QRText:      p.QRText,
		})
	}
	return rows
}

func writeLabelRows(cw *csv.Writer, rows []LabelRow) error {
	header := []string{"part_key", "vendor", "sku", "label_line1", "label_line2", "label_short", "purchase_url", "qr_text"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.PartKey, r.Vendor, r.SKU, r.LabelLine1, r.LabelLine2, r.LabelShort, r.PurchaseURL, r.QRText}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
