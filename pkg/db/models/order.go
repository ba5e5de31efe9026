package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one parsed receipt header. OrderUID is derived deterministically
// from (vendor, order ref, file hash), so re-ingesting identical bytes merges
// into the same row instead of creating a duplicate.
type Order struct {
	OrderUID      string              `gorm:"column:order_uid;primaryKey"`
	FileHash      string              `gorm:"column:file_hash;index"`
	Vendor        string              `gorm:"column:vendor;index"`
	OrderRef      string              `gorm:"column:order_ref"`
	SourceFile    string              `gorm:"column:source_file"`
	SourcePath    string              `gorm:"column:source_path"`
	PurchaseOrder *string             `gorm:"column:purchase_order"`
	Invoice       *string             `gorm:"column:invoice"`
	InvoiceDate   *string             `gorm:"column:invoice_date"`
	PaymentDate   *string             `gorm:"column:payment_date"`
	AccountNumber *string             `gorm:"column:account_number"`
	Merchandise   decimal.NullDecimal `gorm:"column:merchandise;type:numeric"`
	Shipping      decimal.NullDecimal `gorm:"column:shipping;type:numeric"`
	SalesTax      decimal.NullDecimal `gorm:"column:sales_tax;type:numeric"`
	Total         decimal.NullDecimal `gorm:"column:total;type:numeric"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
