// Package store is the durable ledger: orders, line items, per-part
// aggregates, the removal log, and the materialized inventory snapshot.
// Writes are insert-or-update merges keyed by each entity's primary
// identifier; the removal log alone is append-only.
package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mwhitaker/stockroom/internal/repo"
	"github.com/mwhitaker/stockroom/pkg/db/models"
	pkgerrors "github.com/mwhitaker/stockroom/pkg/errors"
)

type Store struct {
	repo.Base
}

func New(db *gorm.DB) *Store {
	return &Store{Base: repo.NewBase(db)}
}

// ledgerModels is every table the store owns, in creation order.
func ledgerModels() []any {
	return []any{
		&models.IngestedFile{},
		&models.Order{},
		&models.LineItem{},
		&models.PartReceived{},
		&models.PartRemoved{},
		&models.InventoryRow{},
	}
}

// EnsureSchema creates missing tables and adds missing columns before a
// merge. Strictly additive: columns are never dropped or retyped, so a
// ledger written by an older build keeps its data.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db := s.DB(ctx)
	m := db.Migrator()

	for _, model := range ledgerModels() {
		if !m.HasTable(model) {
			if err := m.CreateTable(model); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create table")
			}
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse model schema")
		}
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if m.HasColumn(model, field.DBName) {
				continue
			}
			if err := m.AddColumn(model, field.DBName); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add column "+field.DBName)
			}
		}
	}
	return nil
}

// UpsertOrders merges order headers by order_uid, overwriting existing
// columns with the new values.
func (s *Store) UpsertOrders(ctx context.Context, rows []models.Order) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_uid"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert orders")
	}
	return nil
}

// UpsertLineItems merges line items by line_item_uid.
func (s *Store) UpsertLineItems(ctx context.Context, rows []models.LineItem) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "line_item_uid"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert line items")
	}
	return nil
}

// UpsertPartsReceived merges per-part aggregates by part_key.
func (s *Store) UpsertPartsReceived(ctx context.Context, rows []models.PartReceived) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "part_key"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert parts received")
	}
	return nil
}

// AppendRemovals inserts removal events. Each event carries its own fresh
// key and is never merged onto an existing row.
func (s *Store) AppendRemovals(ctx context.Context, rows []models.PartRemoved) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.DB(ctx).Create(&rows).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append removals")
	}
	return nil
}

// ReplaceInventory rebuilds the on-hand snapshot wholesale inside one
// transaction. The snapshot is derived state; partial updates are never
// worth the bookkeeping.
func (s *Store) ReplaceInventory(ctx context.Context, rows []models.InventoryRow) error {
	err := s.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.InventoryRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace inventory")
	}
	return nil
}
