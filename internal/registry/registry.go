// Package registry tracks which receipt files have already been ingested,
// keyed by content hash, and quarantines duplicate files out of the intake
// folder so they are not re-fed on the next run.
package registry

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mwhitaker/stockroom/internal/repo"
	"github.com/mwhitaker/stockroom/pkg/db/models"
	pkgerrors "github.com/mwhitaker/stockroom/pkg/errors"
)

type Repository struct {
	repo.Base
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db), now: time.Now}
}

// Has reports whether a file with this content hash was already ingested.
func (r *Repository) Has(ctx context.Context, fileHash string) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.IngestedFile{}).
		Where("file_hash = ?", fileHash).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query ingested files")
	}
	return count > 0, nil
}

// RegisterInput describes a successfully parsed file.
type RegisterInput struct {
	FileHash     string
	OriginalPath string
	Vendor       string
	OrderRef     string
}

// Register records a hash as ingested. Called only after a successful parse,
// so a failed file stays eligible for retry. Re-registering an existing hash
// is a no-op rather than an error.
func (r *Repository) Register(ctx context.Context, in RegisterInput) error {
	row := models.IngestedFile{
		FileHash:     in.FileHash,
		FirstSeenUTC: r.now().UTC(),
		OriginalPath: in.OriginalPath,
		Vendor:       in.Vendor,
		OrderRef:     in.OrderRef,
	}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register ingested file")
	}
	return nil
}

// Recent returns the newest registrations, most recent first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.IngestedFile, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.IngestedFile
	err := r.DB(ctx).
		Order("first_seen_utc DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingested files")
	}
	return rows, nil
}
