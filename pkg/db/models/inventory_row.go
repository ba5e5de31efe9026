package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRow is the materialized on-hand snapshot: received minus removed
// per part_key. Derived state; rebuilt wholesale after every ingest or
// manual adjustment, never written directly. OnHand may go negative.
type InventoryRow struct {
	PartKey       string              `gorm:"column:part_key;primaryKey"`
	Vendor        string              `gorm:"column:vendor"`
	SKU           string              `gorm:"column:sku"`
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
	UnitsRemoved  float64             `gorm:"column:units_removed;not null;default:0"`
	OnHand        float64             `gorm:"column:on_hand;not null;default:0"`
	AvgUnitCost   decimal.NullDecimal `gorm:"column:avg_unit_cost;type:numeric"`
	TotalSpend    decimal.Decimal     `gorm:"column:total_spend;type:numeric"`
	LastInvoice   string              `gorm:"column:last_invoice"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryRow) TableName() string { return "inventory" }
