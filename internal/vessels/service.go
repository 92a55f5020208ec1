package vessels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/pkg/db"
	"github.com/harborline/shipline-backend/pkg/db/models"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/logger"
	"github.com/harborline/shipline-backend/pkg/pagination"
	"github.com/harborline/shipline-backend/pkg/types"
)

const (
	upcomingWindow = 7 * 24 * time.Hour
	upcomingLimit  = 5

	duplicateVesselMessage = "A vessel with this name and voyage number already exists"
	etdCheckConstraint     = "vessels_etd_after_eta"
)

// Service defines the vessel schedule operations used by the controllers.
type Service interface {
	Create(ctx context.Context, req CreateVesselRequest) (*VesselDTO, error)
	List(ctx context.Context, q ListQuery) (*ListResponse, error)
	Get(ctx context.Context, rawID string) (*VesselDTO, error)
	Update(ctx context.Context, rawID string, req UpdateVesselRequest) (*VesselDTO, error)
	Delete(ctx context.Context, rawID string) (*VesselDTO, error)
	BulkDelete(ctx context.Context, rawIDs []string) (int64, error)
	Stats(ctx context.Context) (*StatsResponse, error)
}

type vesselRepository interface {
	Create(ctx context.Context, v *models.Vessel) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vessel, error)
	List(ctx context.Context, opts ListOptions) ([]models.Vessel, int64, error)
	Update(ctx context.Context, id uuid.UUID, apply func(*models.Vessel) error) (*models.Vessel, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Vessel, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
	Aggregate(ctx context.Context) (aggregateRow, error)
	Upcoming(ctx context.Context, column string, from, to time.Time, limit int) ([]models.Vessel, error)
}

type service struct {
	repo vesselRepository
	logg *logger.Logger
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build a vessel service.
type ServiceParams struct {
	Repo   vesselRepository
	Logger *logger.Logger
	Now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("vessel repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

func (s *service) Create(ctx context.Context, req CreateVesselRequest) (*VesselDTO, error) {
	vessel, err := req.ToModel()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timestamp")
	}
	if err := s.repo.Create(ctx, vessel); err != nil {
		return nil, translate(err, "create vessel")
	}
	s.audit(ctx, "vessel.created", vessel)
	return FromModel(vessel, s.now()), nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*ListResponse, error) {
	opts, err := q.Options()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query parameters")
	}
	rows, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, translate(err, "list vessels")
	}

	now := s.now()
	data := make([]VesselDTO, 0, len(rows))
	for i := range rows {
		data = append(data, *FromModel(&rows[i], now))
	}
	return &ListResponse{
		Data:       data,
		Pagination: pagination.NewMeta(opts.Page, total),
		Filters:    q.Filters(),
		Sort:       opts.Sort,
	}, nil
}

func (s *service) Get(ctx context.Context, rawID string) (*VesselDTO, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	vessel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get vessel")
	}
	return FromModel(vessel, s.now()), nil
}

func (s *service) Update(ctx context.Context, rawID string, req UpdateVesselRequest) (*VesselDTO, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	vessel, err := s.repo.Update(ctx, id, func(v *models.Vessel) error {
		if err := req.Apply(v); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timestamp")
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "update vessel")
	}
	s.audit(ctx, "vessel.updated", vessel)
	return FromModel(vessel, s.now()), nil
}

func (s *service) Delete(ctx context.Context, rawID string) (*VesselDTO, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	vessel, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "delete vessel")
	}
	s.audit(ctx, "vessel.deleted", vessel)
	return FromModel(vessel, s.now()), nil
}

// BulkDelete validates every id before deleting anything.
func (s *service) BulkDelete(ctx context.Context, rawIDs []string) (int64, error) {
	if len(rawIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "please provide an array of vessel IDs").
			WithDetails([]types.FieldError{{Field: "ids", Message: "ids must contain at least 1 item(s)"}})
	}
	ids := make([]uuid.UUID, 0, len(rawIDs))
	var invalid []types.FieldError
	for i, raw := range rawIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			invalid = append(invalid, types.FieldError{Field: fmt.Sprintf("ids.%d", i), Message: "invalid vessel ID format"})
			continue
		}
		ids = append(ids, id)
	}
	if len(invalid) > 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidIDFormat, "some vessel IDs are invalid").WithDetails(invalid)
	}

	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, translate(err, "bulk delete vessels")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"requested": len(ids),
			"deleted":   deleted,
		}), "vessel.bulk_deleted")
	}
	return deleted, nil
}

// Stats aggregates the schedule and lists the next week's movements. The
// three queries run concurrently.
func (s *service) Stats(ctx context.Context) (*StatsResponse, error) {
	now := s.now().UTC()
	horizon := now.Add(upcomingWindow)

	var (
		agg        aggregateRow
		arrivals   []models.Vessel
		departures []models.Vessel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agg, err = s.repo.Aggregate(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		arrivals, err = s.repo.Upcoming(gctx, "eta", now, horizon, upcomingLimit)
		return err
	})
	g.Go(func() error {
		var err error
		departures, err = s.repo.Upcoming(gctx, "etd", now, horizon, upcomingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err, "vessel stats")
	}

	resp := &StatsResponse{
		Statistics: Statistics{
			TotalVessels:   agg.TotalVessels,
			TotalCountries: agg.TotalCountries,
			TotalPorts:     agg.TotalPorts,
		},
		UpcomingArrivals:   make([]UpcomingArrival, 0, len(arrivals)),
		UpcomingDepartures: make([]UpcomingDeparture, 0, len(departures)),
	}
	if agg.TotalVessels > 0 {
		resp.Statistics.AvgETADays = daysUntil(agg.AvgETAEpoch, now)
		resp.Statistics.AvgETDDays = daysUntil(agg.AvgETDEpoch, now)
	}
	for _, v := range arrivals {
		resp.UpcomingArrivals = append(resp.UpcomingArrivals, UpcomingArrival{
			ID: v.ID, VesselName: v.VesselName, VoyageNo: v.VoyageNo, PortName: v.PortName, ETA: v.ETA.UTC(),
		})
	}
	for _, v := range departures {
		resp.UpcomingDepartures = append(resp.UpcomingDepartures, UpcomingDeparture{
			ID: v.ID, VesselName: v.VesselName, VoyageNo: v.VoyageNo, PortName: v.PortName, ETD: v.ETD.UTC(),
		})
	}
	return resp, nil
}

// daysUntil converts a mean Unix timestamp into days from now, rounded to
// one decimal place.
func daysUntil(avgEpoch *float64, now time.Time) float64 {
	if avgEpoch == nil {
		return 0
	}
	nowSeconds := decimal.NewFromInt(now.UnixMilli()).Div(decimal.NewFromInt(1000))
	days := decimal.NewFromFloat(*avgEpoch).Sub(nowSeconds).Div(decimal.NewFromInt(86400))
	return days.Round(1).InexactFloat64()
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInvalidIDFormat, err, "invalid vessel ID format").
			WithDetails([]types.FieldError{{Field: "id", Message: "invalid vessel ID format"}})
	}
	return id, nil
}

// translate maps storage failures onto the API error taxonomy.
func translate(err error, action string) error {
	var validation *models.ValidationError
	switch {
	case pkgerrors.As(err) != nil:
		return err
	case errors.As(err, &validation):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "vessel validation failed").WithDetails(validation.Errors)
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeDuplicateVessel, err, duplicateVesselMessage)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeVesselNotFound, err, "vessel not found")
	case db.IsCheckViolation(err, etdCheckConstraint):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "vessel validation failed").
			WithDetails([]types.FieldError{{Field: "ETD", Message: etdAfterETAMessage}})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return pkgerrors.Wrap(pkgerrors.CodeServiceUnavailable, err, action)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, action)
}

func (s *service) audit(ctx context.Context, event string, v *models.Vessel) {
	if s.logg == nil || v == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"vessel_id":   v.ID.String(),
		"vessel_name": v.VesselName,
		"voyage_no":   v.VoyageNo,
	}), event)
}
