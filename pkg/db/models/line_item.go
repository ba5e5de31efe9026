package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one receipt line after normalization and label derivation.
// Counts use nil for "vendor did not supply a value"; zero is a real
// quantity and must survive as such.
type LineItem struct {
	LineItemUID   string              `gorm:"column:line_item_uid;primaryKey"`
	OrderUID      string              `gorm:"column:order_uid;index"`
	FileHash      string              `gorm:"column:file_hash"`
	Vendor        string              `gorm:"column:vendor"`
	SourceFile    string              `gorm:"column:source_file"`
	Invoice       *string             `gorm:"column:invoice"`
	PurchaseOrder *string             `gorm:"column:purchase_order"`
	Line          *int                `gorm:"column:line"`
	SKU           string              `gorm:"column:sku"`
	MfgPart       *string             `gorm:"column:mfg_part"`
	CountryOfOrig *string             `gorm:"column:coo"`
	Description   string              `gorm:"column:description"`
	Ordered       *int                `gorm:"column:ordered"`
	Shipped       *int                `gorm:"column:shipped"`
	Balance       *int                `gorm:"column:balance"`
	PackQty       int                 `gorm:"column:pack_qty;not null;default:1"`
	UnitsReceived float64             `gorm:"column:units_received;not null;default:0"`
	UnitPrice     decimal.NullDecimal `gorm:"column:unit_price;type:numeric"`
	LineTotal     decimal.NullDecimal `gorm:"column:line_total;type:numeric"`
	PartKey       string              `gorm:"column:part_key;index"`
	DescClean     string              `gorm:"column:desc_clean"`
	LabelLine1    string              `gorm:"column:label_line1"`
	LabelLine2    string              `gorm:"column:label_line2"`
	LabelShort    string              `gorm:"column:label_short"`
	PurchaseURL   string              `gorm:"column:purchase_url"`
	ExternalURL   string              `gorm:"column:external_url"`
	QRURL         string              `gorm:"column:qr_url"`
	QRText        string              `gorm:"column:qr_text"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (LineItem) TableName() string { return "line_items" }
