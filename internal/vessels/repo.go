package vessels

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/internal/repo"
	"github.com/harborline/shipline-backend/pkg/db"
	"github.com/harborline/shipline-backend/pkg/db/models"
)

// Repository exposes vessel persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a vessels repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create inserts v; the model hooks normalise and validate it first.
func (r *Repository) Create(ctx context.Context, v *models.Vessel) error {
	return r.DB(ctx).Create(v).Error
}

// FindByID loads a vessel by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vessel, error) {
	var v models.Vessel
	if err := r.DB(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns one page of matching vessels and the total match count. The
// count and the page fetch run concurrently.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]models.Vessel, int64, error) {
	column, direction, err := sortClause(opts.Sort)
	if err != nil {
		return nil, 0, err
	}
	page := opts.Page.Normalize()

	var (
		rows  []models.Vessel
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return applyFilters(r.DB(gctx).Model(&models.Vessel{}), opts).Count(&total).Error
	})
	g.Go(func() error {
		return applyFilters(r.DB(gctx).Model(&models.Vessel{}), opts).
			Order(fmt.Sprintf("%s %s", column, direction)).
			Order("id ASC").
			Offset(page.Offset()).
			Limit(page.Limit).
			Find(&rows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []models.Vessel{}
	}
	return rows, total, nil
}

// Update loads the vessel, lets apply mutate it and saves the merged record
// inside one transaction. The save hook re-validates the merged record.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, apply func(*models.Vessel) error) (*models.Vessel, error) {
	var updated models.Vessel
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		if err := apply(&updated); err != nil {
			return err
		}
		return tx.Save(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a vessel and returns the removed record.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.Vessel, error) {
	var removed models.Vessel
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&removed, "id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Vessel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// DeleteMany removes every listed vessel and reports how many existed.
func (r *Repository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB(ctx).Where("id IN ?", ids).Delete(&models.Vessel{})
	return res.RowsAffected, res.Error
}

// aggregateRow holds the raw schedule aggregates. Averages are Unix seconds
// and NULL for an empty table.
type aggregateRow struct {
	TotalVessels   int64    `gorm:"column:total_vessels"`
	TotalCountries int64    `gorm:"column:total_countries"`
	TotalPorts     int64    `gorm:"column:total_ports"`
	AvgETAEpoch    *float64 `gorm:"column:avg_eta_epoch"`
	AvgETDEpoch    *float64 `gorm:"column:avg_etd_epoch"`
}

// Aggregate computes counts and mean ETA/ETD over the whole table.
func (r *Repository) Aggregate(ctx context.Context) (aggregateRow, error) {
	conn := r.DB(ctx)
	var row aggregateRow
	err := conn.Model(&models.Vessel{}).
		Select(fmt.Sprintf(
			"COUNT(*) AS total_vessels, COUNT(DISTINCT country) AS total_countries, COUNT(DISTINCT port_name) AS total_ports, AVG(%s) AS avg_eta_epoch, AVG(%s) AS avg_etd_epoch",
			db.EpochSeconds(conn, "eta"), db.EpochSeconds(conn, "etd"),
		)).
		Scan(&row).Error
	return row, err
}

// Upcoming returns up to limit vessels whose column falls inside
// [from, to], soonest first.
func (r *Repository) Upcoming(ctx context.Context, column string, from, to time.Time, limit int) ([]models.Vessel, error) {
	if column != "eta" && column != "etd" {
		return nil, fmt.Errorf("unsupported upcoming column %q", column)
	}
	var rows []models.Vessel
	err := r.DB(ctx).
		Where(column+" >= ? AND "+column+" <= ?", from, to).
		Order(column + " ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Count returns the number of stored vessels.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Vessel{}).Count(&n).Error
	return n, err
}
