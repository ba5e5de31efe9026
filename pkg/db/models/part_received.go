package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartReceived aggregates everything ever received for one part_key.
// Rebuilt from the full line-item population on every ingest; the manual
// receive path adjusts it additively in place.
type PartReceived struct {
	PartKey       string              `gorm:"column:part_key;primaryKey"`
	Vendor        string              `gorm:"column:vendor"`
	SKU           string              `gorm:"column:sku"`
	MfgPart       string              `gorm:"column:mfg_part"`
	Description   string              `gorm:"column:description"`
	DescClean     string              `gorm:"column:desc_clean"`
	LabelLine1    string              `gorm:"column:label_line1"`
	LabelLine2    string              `gorm:"column:label_line2"`
	LabelShort    string              `gorm:"column:label_short"`
	PurchaseURL   string              `gorm:"column:purchase_url"`
	ExternalURL   string              `gorm:"column:external_url"`
	QRURL         string              `gorm:"column:qr_url"`
	QRText        string              `gorm:"column:qr_text"`
	UnitsReceived float64             `gorm:"column:units_received;not null;default:0"`
	TotalSpend    decimal.Decimal     `gorm:"column:total_spend;type:numeric"`
	LastInvoice   string              `gorm:"column:last_invoice"`
	AvgUnitCost   decimal.NullDecimal `gorm:"column:avg_unit_cost;type:numeric"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (PartReceived) TableName() string { return "parts_received" }
