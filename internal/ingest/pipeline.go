// Package ingest orchestrates a batch run: fingerprint each file, skip or
// quarantine duplicates, hand unique files to a vendor parser, stamp
// identities, normalize numbers, derive labels, and merge everything into
// the ledger before recomputing the per-part aggregates and on-hand view.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/multierr"

	"github.com/mwhitaker/stockroom/internal/fingerprint"
	"github.com/mwhitaker/stockroom/internal/identity"
	"github.com/mwhitaker/stockroom/internal/labels"
	"github.com/mwhitaker/stockroom/internal/normalize"
	"github.com/mwhitaker/stockroom/internal/reconcile"
	"github.com/mwhitaker/stockroom/internal/registry"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/db/models"
	"github.com/mwhitaker/stockroom/pkg/logger"
	"github.com/mwhitaker/stockroom/pkg/metrics"
)

type Pipeline struct {
	registry      *registry.Repository
	store         *store.Store
	deriver       *labels.Deriver
	parsers       []Parser
	logg          *logger.Logger
	metrics       *metrics.IngestMetrics
	quarantineDir string
}

type PipelineParams struct {
	Registry *registry.Repository
	Store    *store.Store
	Deriver  *labels.Deriver
	Parsers  []Parser
	Logger   *logger.Logger
	Metrics  *metrics.IngestMetrics

	// QuarantineDirName is the subdirectory (next to each input file)
	// that duplicate files are moved into.
	QuarantineDirName string
}

func NewPipeline(p PipelineParams) (*Pipeline, error) {
	if p.Registry == nil {
		return nil, fmt.Errorf("registry required")
	}
	if p.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if p.Deriver == nil {
		return nil, fmt.Errorf("label deriver required")
	}
	if p.QuarantineDirName == "" {
		p.QuarantineDirName = "duplicates"
	}
	return &Pipeline{
		registry:      p.Registry,
		store:         p.Store,
		deriver:       p.Deriver,
		parsers:       p.Parsers,
		logg:          p.Logger,
		metrics:       p.Metrics,
		quarantineDir: p.QuarantineDirName,
	}, nil
}

// Run processes a batch of receipt files sequentially. Files are never
// partially committed: a parse failure discards that file's order and lines
// entirely and the loop moves on. The returned error aggregates per-file
// failures; the report is complete either way. Only an unusable ledger
// aborts the batch with a nil report.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()

	if err := p.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	report := &Report{}
	seen := make(map[string]bool)
	var (
		orders []models.Order
		items  []models.LineItem
		errs   error
	)

	for _, path := range paths {
		fctx := ctx
		if p.logg != nil {
			fctx = p.logg.WithFile(ctx, filepath.Base(path))
		}

		res, order, lines, err := p.processFile(fctx, path, seen)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
		report.add(res)
		p.metrics.IncOutcome(string(res.Status))

		if res.Status == StatusOK {
			orders = append(orders, *order)
			items = append(items, lines...)
		}
	}

	if report.OK > 0 {
		if err := p.store.UpsertOrders(ctx, orders); err != nil {
			return nil, err
		}
		if err := p.store.UpsertLineItems(ctx, items); err != nil {
			return nil, err
		}
		report.OrdersUpserted = len(orders)
		report.LineItemsUpserted = len(items)

		tracked, err := p.recomputeAggregates(ctx)
		if err != nil {
			return nil, err
		}
		report.PartsTracked = tracked
	}

	p.metrics.ObserveBatch("batch", time.Since(start))
	if p.logg != nil {
		lctx := p.logg.WithFields(ctx, map[string]any{
			"files":      len(paths),
			"ok":         report.OK,
			"duplicates": report.Duplicates,
			"skipped":    report.Skipped,
			"failed":     report.Failed,
		})
		p.logg.Info(lctx, "ingest batch complete")
	}
	return report, errs
}

func (p *Pipeline) processFile(ctx context.Context, path string, seen map[string]bool) (FileResult, *models.Order, []models.LineItem, error) {
	res := FileResult{Path: path}

	kind, err := mimetype.DetectFile(path)
	if err != nil {
		res.Status = StatusSkippedUnreadable
		res.Detail = err.Error()
		return res, nil, nil, err
	}
	if !kind.Is("application/pdf") {
		res.Status = StatusSkippedNoParser
		res.Detail = "not a PDF: " + kind.String()
		return res, nil, nil, nil
	}

	hash, err := fingerprint.File(path)
	if err != nil {
		res.Status = StatusSkippedUnreadable
		res.Detail = err.Error()
		return res, nil, nil, err
	}

	known := seen[hash]
	if !known {
		known, err = p.registry.Has(ctx, hash)
		if err != nil {
			res.Status = StatusParseFailed
			res.Detail = "ingest registry: " + err.Error()
			return res, nil, nil, err
		}
	}
	if known {
		res.Status = StatusDuplicate
		moved, moveErr := registry.Quarantine(path, p.quarantineDir)
		if moveErr != nil {
			res.Detail = moveErr.Error()
			return res, nil, nil, moveErr
		}
		res.MovedTo = moved
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "moved_to", moved), "duplicate receipt quarantined")
		}
		return res, nil, nil, nil
	}
	// marked before parsing so a byte-identical copy later in the batch is
	// quarantined even if this file fails to parse
	seen[hash] = true

	parser := p.pickParser(path)
	if parser == nil {
		res.Status = StatusSkippedNoParser
		res.Detail = "no parser matched"
		return res, nil, nil, nil
	}

	orderRec, err := parser.ParseOrder(path)
	if err != nil {
		res.Status = StatusParseFailed
		res.Detail = err.Error()
		return res, nil, nil, err
	}
	lineRecs, err := parser.ParseLineItems(path)
	if err != nil {
		res.Status = StatusParseFailed
		res.Detail = err.Error()
		return res, nil, nil, err
	}

	order, items := p.assemble(path, hash, parser, orderRec, lineRecs)

	// registered only after a successful parse so a failed file stays
	// eligible for retry on the next run
	err = p.registry.Register(ctx, registry.RegisterInput{
		FileHash:     hash,
		OriginalPath: path,
		Vendor:       order.Vendor,
		OrderRef:     order.OrderRef,
	})
	if err != nil {
		res.Status = StatusParseFailed
		res.Detail = "ingest registry: " + err.Error()
		return res, nil, nil, err
	}

	res.Status = StatusOK
	res.Detail = fmt.Sprintf("%d line items", len(items))
	if p.logg != nil {
		p.logg.Info(p.logg.WithVendor(ctx, order.Vendor), "receipt ingested")
	}
	return res, order, items, nil
}

func (p *Pipeline) pickParser(path string) Parser {
	for _, parser := range p.parsers {
		if parser.Matches(path) {
			return parser
		}
	}
	return nil
}

func (p *Pipeline) assemble(path, hash string, parser Parser, orderRec OrderRecord, lineRecs []LineRecord) (*models.Order, []models.LineItem) {
	vendor := strings.ToLower(strings.TrimSpace(orderRec.Vendor))
	if vendor == "" {
		vendor = strings.ToLower(strings.TrimSpace(parser.Vendor()))
	}
	if vendor == "" {
		vendor = "unknown"
	}

	orderRef := strings.TrimSpace(orderRec.Invoice)
	if orderRef == "" {
		orderRef = strings.TrimSpace(orderRec.PurchaseOrder)
	}

	order := &models.Order{
		OrderUID:      identity.OrderUID(vendor, orderRef, hash),
		FileHash:      hash,
		Vendor:        vendor,
		OrderRef:      orderRef,
		SourceFile:    filepath.Base(path),
		SourcePath:    path,
		PurchaseOrder: optStr(orderRec.PurchaseOrder),
		Invoice:       optStr(orderRec.Invoice),
		InvoiceDate:   optStr(orderRec.InvoiceDate),
		PaymentDate:   optStr(orderRec.PaymentDate),
		AccountNumber: optStr(orderRec.AccountNumber),
		Merchandise:   normalize.Money(orderRec.Merchandise),
		Shipping:      normalize.Money(orderRec.Shipping),
		SalesTax:      normalize.Money(orderRec.SalesTax),
		Total:         normalize.Money(orderRec.Total),
	}

	items := make([]models.LineItem, 0, len(lineRecs))
	for i, rec := range lineRecs {
		lineIdx := i + 1
		if n := normalize.Int(rec.Line); n != nil {
			lineIdx = *n
		}

		ordered := normalize.Int(rec.Ordered)
		shipped := normalize.Int(rec.Shipped)
		price := normalize.Money(rec.UnitPrice)
		total := normalize.Money(rec.LineTotal)

		// total first, then price, each exactly once
		total = normalize.BackfillLineTotal(total, ordered, price)
		price = normalize.BackfillUnitPrice(price, total, ordered)

		packQty := normalize.PackQty(rec.Description)
		partKey := identity.PartKey(vendor, rec.SKU, rec.MfgPart, rec.Description)
		fields := p.deriver.Derive(labels.Input{
			Vendor:      vendor,
			SKU:         rec.SKU,
			MfgPart:     rec.MfgPart,
			Description: rec.Description,
			PartKey:     partKey,
		})

		items = append(items, models.LineItem{
			LineItemUID: identity.LineItemUID(identity.LineItemKey{
				Vendor:    vendor,
				OrderRef:  orderRef,
				FileHash:  hash,
				LineIndex: lineIdx,
				SKU:       rec.SKU,
				MfgPart:   rec.MfgPart,
				Desc:      rec.Description,
				UnitPrice: rec.UnitPrice,
				Ordered:   rec.Ordered,
			}),
			OrderUID:      order.OrderUID,
			FileHash:      hash,
			Vendor:        vendor,
			SourceFile:    filepath.Base(path),
			Invoice:       optStr(orderRec.Invoice),
			PurchaseOrder: optStr(orderRec.PurchaseOrder),
			Line:          &lineIdx,
			SKU:           strings.TrimSpace(rec.SKU),
			MfgPart:       optStr(rec.MfgPart),
			CountryOfOrig: optStr(rec.CountryOfOrigin),
			Description:   rec.Description,
			Ordered:       ordered,
			Shipped:       shipped,
			Balance:       normalize.Int(rec.Balance),
			PackQty:       packQty,
			UnitsReceived: normalize.UnitsReceived(shipped, packQty),
			UnitPrice:     price,
			LineTotal:     total,
			PartKey:       partKey,
			DescClean:     fields.DescClean,
			LabelLine1:    fields.Line1,
			LabelLine2:    fields.Line2,
			LabelShort:    fields.Short,
			PurchaseURL:   fields.PurchaseURL,
			ExternalURL:   fields.ExternalURL,
			QRURL:         fields.QRURL,
			QRText:        fields.QRText,
		})
	}
	return order, items
}

// recomputeAggregates re-derives parts_received from the complete line-item
// population, then rebuilds the snapshot from the full parts_received table
// so manually received parts with no line items stay in the inventory view.
func (p *Pipeline) recomputeAggregates(ctx context.Context) (int, error) {
	all, err := p.store.AllLineItems(ctx)
	if err != nil {
		return 0, err
	}
	if err := p.store.UpsertPartsReceived(ctx, reconcile.Aggregate(all)); err != nil {
		return 0, err
	}

	received, err := p.store.PartsReceived(ctx)
	if err != nil {
		return 0, err
	}
	removals, err := p.store.AllRemovals(ctx)
	if err != nil {
		return 0, err
	}
	if err := p.store.ReplaceInventory(ctx, reconcile.OnHand(received, removals)); err != nil {
		return 0, err
	}
	return len(received), nil
}

func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
