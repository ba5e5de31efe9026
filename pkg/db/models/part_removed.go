package models

import "time"

// PartRemoved is one manual removal event. The log is append-only; rows are
// never updated or deleted, and RemovalUID is freshly generated per entry.
type PartRemoved struct {
	RemovalUID   string    `gorm:"column:removal_uid;primaryKey"`
	PartKey      string    `gorm:"column:part_key;index;not null"`
	QtyRemoved   float64   `gorm:"column:qty_removed;not null"`
	RemovedAtUTC time.Time `gorm:"column:removed_at_utc;not null"`
	Project      string    `gorm:"column:project"`
	Note         string    `gorm:"column:note"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PartRemoved) TableName() string { return "parts_removed" }
