package models

import "time"

// IngestedFile records the first sighting of a receipt's content hash.
// Rows are written once after a successful parse and never updated, so a
// re-run against the same bytes is detected before any parsing work.
type IngestedFile struct {
	FileHash     string    `gorm:"column:file_hash;primaryKey"`
	FirstSeenUTC time.Time `gorm:"column:first_seen_utc;not null"`
	OriginalPath string    `gorm:"column:original_path"`
	Vendor       string    `gorm:"column:vendor"`
	OrderRef     string    `gorm:"column:order_ref"`
}

func (IngestedFile) TableName() string { return "ingested_files" }
