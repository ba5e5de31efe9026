package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mwhitaker/stockroom/internal/identity"
	"github.com/mwhitaker/stockroom/internal/labels"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/db/models"
	pkgerrors "github.com/mwhitaker/stockroom/pkg/errors"
)

// Service handles the two manual stock adjustments: receiving parts that
// arrived outside a parsed receipt, and logging removals. Both rebuild the
// inventory snapshot afterwards.
type Service struct {
	store    *store.Store
	deriver  *labels.Deriver
	validate *validator.Validate
	now      func() time.Time
	newUID   func() string
}

type ServiceParams struct {
	Store   *store.Store
	Deriver *labels.Deriver
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if p.Deriver == nil {
		return nil, fmt.Errorf("label deriver required")
	}
	return &Service{
		store:    p.Store,
		deriver:  p.Deriver,
		validate: validator.New(),
		now:      time.Now,
		newUID:   uuid.NewString,
	}, nil
}

// ReceiveInput describes a manual receipt of stock. UnitCost is the
// per-unit price paid; zero means unknown and leaves spend untouched.
type ReceiveInput struct {
	Vendor      string  `json:"vendor" validate:"required"`
	SKU         string  `json:"sku"`
	MfgPart     string  `json:"mfg_part"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty" validate:"required,gt=0"`
	UnitCost    float64 `json:"unit_cost" validate:"gte=0"`
	Invoice     string  `json:"invoice"`
}

// ReceiveStock additively adjusts the part's aggregate row, creating it
// with derived label fields if this part has never been seen, then rebuilds
// the snapshot.
func (s *Service) ReceiveStock(ctx context.Context, in ReceiveInput) (*models.PartReceived, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receive input")
	}
	if in.SKU == "" && in.MfgPart == "" && strings.TrimSpace(in.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one of sku, mfg_part, description is required")
	}

	vendor := strings.ToLower(strings.TrimSpace(in.Vendor))
	partKey := identity.PartKey(vendor, in.SKU, in.MfgPart, in.Description)

	part, err := s.store.PartReceivedByKey(ctx, partKey)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
		fields := s.deriver.Derive(labels.Input{
			Vendor:      vendor,
			SKU:         in.SKU,
			MfgPart:     in.MfgPart,
			Description: in.Description,
			PartKey:     partKey,
		})
		part = &models.PartReceived{
			PartKey:     partKey,
			Vendor:      vendor,
			SKU:         strings.TrimSpace(in.SKU),
			MfgPart:     strings.TrimSpace(in.MfgPart),
			Description: strings.TrimSpace(in.Description),
			DescClean:   fields.DescClean,
			LabelLine1:  fields.Line1,
			LabelLine2:  fields.Line2,
			LabelShort:  fields.Short,
			PurchaseURL: fields.PurchaseURL,
			ExternalURL: fields.ExternalURL,
			QRURL:       fields.QRURL,
			QRText:      fields.QRText,
		}
	}

	part.UnitsReceived += in.Qty
	if in.UnitCost > 0 {
		spend := decimal.NewFromFloat(in.UnitCost).Mul(decimal.NewFromFloat(in.Qty))
		part.TotalSpend = part.TotalSpend.Add(spend)
	}
	part.AvgUnitCost = averageCost(part.TotalSpend, part.UnitsReceived)
	if ref := strings.TrimSpace(in.Invoice); ref != "" && ref > part.LastInvoice {
		part.LastInvoice = ref
	}

	if err := s.store.SavePartReceived(ctx, part); err != nil {
		return nil, err
	}
	if err := s.RebuildSnapshot(ctx); err != nil {
		return nil, err
	}
	return part, nil
}

// RemoveInput describes pulling stock for a project.
type RemoveInput struct {
	PartKey string  `json:"part_key" validate:"required"`
	Qty     float64 `json:"qty" validate:"required,gt=0"`
	Project string  `json:"project"`
	Note    string  `json:"note"`
}

// RemoveStock appends one removal event and rebuilds the snapshot. The part
// must already be tracked; removals against unknown keys would silently
// vanish from the on-hand view.
func (s *Service) RemoveStock(ctx context.Context, in RemoveInput) (*models.PartRemoved, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid remove input")
	}

	if _, err := s.store.PartReceivedByKey(ctx, in.PartKey); err != nil {
		return nil, err
	}

	event := models.PartRemoved{
		RemovalUID:   s.newUID(),
		PartKey:      in.PartKey,
		QtyRemoved:   in.Qty,
		RemovedAtUTC: s.now().UTC(),
		Project:      strings.TrimSpace(in.Project),
		Note:         strings.TrimSpace(in.Note),
	}
	if err := s.store.AppendRemovals(ctx, []models.PartRemoved{event}); err != nil {
		return nil, err
	}
	if err := s.RebuildSnapshot(ctx); err != nil {
		return nil, err
	}
	return &event, nil
}

// RebuildSnapshot re-derives the inventory view from the current aggregates
// and the full removal log.
func (s *Service) RebuildSnapshot(ctx context.Context) error {
	received, err := s.store.PartsReceived(ctx)
	if err != nil {
		return err
	}
	removals, err := s.store.AllRemovals(ctx)
	if err != nil {
		return err
	}
	return s.store.ReplaceInventory(ctx, OnHand(received, removals))
}
