// Package reconcile rolls line items into per-part aggregates and derives
// the on-hand snapshot from received minus removed.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/mwhitaker/stockroom/pkg/db/models"
)

// Aggregate produces one PartReceived row per part_key from the full
// current line-item population. Recomputing from scratch every run keeps
// the aggregates trivially consistent with the lines.
func Aggregate(items []models.LineItem) []models.PartReceived {
	byKey := make(map[string]*models.PartReceived)
	var order []string

	for _, item := range items {
		if item.PartKey == "" {
			continue
		}
		agg, ok := byKey[item.PartKey]
		if !ok {
			mfg := ""
			if item.MfgPart != nil {
				mfg = *item.MfgPart
			}
			// label fields come from the first contributing line:
			// arbitrary but deterministic in input order
			agg = &models.PartReceived{
				PartKey:     item.PartKey,
				Vendor:      item.Vendor,
				SKU:         item.SKU,
				MfgPart:     mfg,
				Description: item.Description,
				DescClean:   item.DescClean,
				LabelLine1:  item.LabelLine1,
				LabelLine2:  item.LabelLine2,
				LabelShort:  item.LabelShort,
				PurchaseURL: item.PurchaseURL,
				ExternalURL: item.ExternalURL,
				QRURL:       item.QRURL,
				QRText:      item.QRText,
			}
			byKey[item.PartKey] = agg
			order = append(order, item.PartKey)
		}

		agg.UnitsReceived += item.UnitsReceived
		if item.LineTotal.Valid {
			agg.TotalSpend = agg.TotalSpend.Add(item.LineTotal.Decimal)
		}
		if ref := invoiceRef(item); ref != "" && ref > agg.LastInvoice {
			agg.LastInvoice = ref
		}
	}

	rows := make([]models.PartReceived, 0, len(order))
	for _, key := range order {
		agg := byKey[key]
		agg.AvgUnitCost = averageCost(agg.TotalSpend, agg.UnitsReceived)
		rows = append(rows, *agg)
	}
	return rows
}

func invoiceRef(item models.LineItem) string {
	if item.Invoice != nil && *item.Invoice != "" {
		return *item.Invoice
	}
	if item.PurchaseOrder != nil && *item.PurchaseOrder != "" {
		return *item.PurchaseOrder
	}
	return ""
}

// averageCost leaves the cost undefined, not zero, when no units arrived.
func averageCost(spend decimal.Decimal, units float64) decimal.NullDecimal {
	if units == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: spend.Div(decimal.NewFromFloat(units)),
		Valid:   true,
	}
}

// OnHand left-joins received aggregates with per-part removal sums.
// A part with no removals subtracts zero; on_hand may go negative when
// removals outrun recorded receipts.
func OnHand(received []models.PartReceived, removals []models.PartRemoved) []models.InventoryRow {
	removedByKey := make(map[string]float64)
	for _, r := range removals {
		removedByKey[r.PartKey] += r.QtyRemoved
	}

	rows := make([]models.InventoryRow, 0, len(received))
	for _, part := range received {
		removed := removedByKey[part.PartKey]
		rows = append(rows, models.InventoryRow{
			PartKey:       part.PartKey,
			Vendor:        part.Vendor,
			SKU:           part.SKU,
			Description:   part.Description,
			DescClean:     part.DescClean,
			LabelLine1:    part.LabelLine1,
			LabelLine2:    part.LabelLine2,
			LabelShort:    part.LabelShort,
			PurchaseURL:   part.PurchaseURL,
			ExternalURL:   part.ExternalURL,
			QRURL:         part.QRURL,
			QRText:        part.QRText,
			UnitsReceived: part.UnitsReceived,
			UnitsRemoved:  removed,
			OnHand:        part.UnitsReceived - removed,
			AvgUnitCost:   part.AvgUnitCost,
			TotalSpend:    part.TotalSpend,
			LastInvoice:   part.LastInvoice,
		})
	}
	return rows
}
