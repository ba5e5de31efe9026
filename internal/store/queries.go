package store

import (
	"context"
	"errors"
	"strings"

	"github.com/mwhitaker/stockroom/pkg/db/models"
	pkgerrors "github.com/mwhitaker/stockroom/pkg/errors"
	"gorm.io/gorm"
)

// AllLineItems returns the full line-item population in insertion order.
// Aggregation always re-derives from the complete population.
func (s *Store) AllLineItems(ctx context.Context) ([]models.LineItem, error) {
	var rows []models.LineItem
	err := s.DB(ctx).
		Order("order_uid, line, line_item_uid").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list line items")
	}
	return rows, nil
}

// AllRemovals returns every removal event.
func (s *Store) AllRemovals(ctx context.Context) ([]models.PartRemoved, error) {
	var rows []models.PartRemoved
	err := s.DB(ctx).
		Order("removed_at_utc, removal_uid").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list removals")
	}
	return rows, nil
}

// PartsReceived returns every per-part aggregate row.
func (s *Store) PartsReceived(ctx context.Context) ([]models.PartReceived, error) {
	var rows []models.PartReceived
	err := s.DB(ctx).Order("part_key").Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parts received")
	}
	return rows, nil
}

// PartReceivedByKey looks up a single aggregate row.
func (s *Store) PartReceivedByKey(ctx context.Context, partKey string) (*models.PartReceived, error) {
	var row models.PartReceived
	err := s.DB(ctx).Where("part_key = ?", partKey).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found: "+partKey)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query part received")
	}
	return &row, nil
}

// InventoryFilter narrows SearchInventory. Zero value returns everything.
type InventoryFilter struct {
	Query  string
	Vendor string
	Limit  int
}

// SearchInventory returns snapshot rows matching the filter, ordered by
// part_key for stable paging.
func (s *Store) SearchInventory(ctx context.Context, filter InventoryFilter) ([]models.InventoryRow, error) {
	q := s.DB(ctx).Model(&models.InventoryRow{})
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"LOWER(part_key) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ? OR LOWER(label_line1) LIKE ?",
			like, like, like, like,
		)
	}
	if vendor := strings.TrimSpace(filter.Vendor); vendor != "" {
		q = q.Where("vendor = ?", strings.ToLower(vendor))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.InventoryRow
	if err := q.Order("part_key").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search inventory")
	}
	return rows, nil
}

// InventoryByPartKey looks up one snapshot row.
func (s *Store) InventoryByPartKey(ctx context.Context, partKey string) (*models.InventoryRow, error) {
	var row models.InventoryRow
	err := s.DB(ctx).Where("part_key = ?", partKey).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found: "+partKey)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query inventory row")
	}
	return &row, nil
}

// Orders returns order headers, newest update first.
func (s *Store) Orders(ctx context.Context, limit int) ([]models.Order, error) {
	q := s.DB(ctx).Order("updated_at DESC, order_uid")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

// OrderByUID returns one order header with its line items.
func (s *Store) OrderByUID(ctx context.Context, orderUID string) (*models.Order, []models.LineItem, error) {
	var order models.Order
	err := s.DB(ctx).Where("order_uid = ?", orderUID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found: "+orderUID)
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query order")
	}

	var items []models.LineItem
	err = s.DB(ctx).
		Where("order_uid = ?", orderUID).
		Order("line, line_item_uid").
		Find(&items).Error
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query order line items")
	}
	return &order, items, nil
}

// SavePartReceived writes one aggregate row back, merging by part_key.
// The manual receive path adjusts a single part in place.
func (s *Store) SavePartReceived(ctx context.Context, row *models.PartReceived) error {
	return s.UpsertPartsReceived(ctx, []models.PartReceived{*row})
}
