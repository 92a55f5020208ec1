package vessels

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborline/shipline-backend/pkg/db/models"
	"github.com/harborline/shipline-backend/pkg/enums"
	"github.com/harborline/shipline-backend/pkg/pagination"
	"github.com/harborline/shipline-backend/pkg/types"
)

const etdAfterETAMessage = "Estimated Time of Departure must be after Estimated Time of Arrival"

// CreateVesselRequest is the body accepted when registering a schedule entry.
type CreateVesselRequest struct {
	VesselName string `json:"vesselName" validate:"required,min=2,max=100,vesselname"`
	VoyageNo   string `json:"voyageNo" validate:"required,min=2,max=50,voyageno"`
	Country    string `json:"country" validate:"required,min=2,max=60,country"`
	PortName   string `json:"portName" validate:"required,min=2,max=80,portname"`
	ETA        string `json:"ETA" validate:"required,timestamp"`
	ETD        string `json:"ETD" validate:"required,timestamp"`
}

func (r CreateVesselRequest) CrossValidate() []types.FieldError {
	return checkWindow(&r.ETA, &r.ETD)
}

// ToModel converts a validated request into a storable record.
func (r CreateVesselRequest) ToModel() (*models.Vessel, error) {
	eta, err := types.ParseTimestamp(r.ETA)
	if err != nil {
		return nil, err
	}
	etd, err := types.ParseTimestamp(r.ETD)
	if err != nil {
		return nil, err
	}
	return &models.Vessel{
		VesselName: r.VesselName,
		VoyageNo:   r.VoyageNo,
		Country:    r.Country,
		PortName:   r.PortName,
		ETA:        eta,
		ETD:        etd,
	}, nil
}

// UpdateVesselRequest is a partial update; absent fields keep their stored
// value.
type UpdateVesselRequest struct {
	VesselName *string `json:"vesselName,omitempty" validate:"omitempty,min=2,max=100,vesselname"`
	VoyageNo   *string `json:"voyageNo,omitempty" validate:"omitempty,min=2,max=50,voyageno"`
	Country    *string `json:"country,omitempty" validate:"omitempty,min=2,max=60,country"`
	PortName   *string `json:"portName,omitempty" validate:"omitempty,min=2,max=80,portname"`
	ETA        *string `json:"ETA,omitempty" validate:"omitempty,timestamp"`
	ETD        *string `json:"ETD,omitempty" validate:"omitempty,timestamp"`
}

// CrossValidate checks the port window only when both ends are supplied.
func (r UpdateVesselRequest) CrossValidate() []types.FieldError {
	if r.ETA == nil || r.ETD == nil {
		return nil
	}
	return checkWindow(r.ETA, r.ETD)
}

// Apply merges the supplied fields into v.
func (r UpdateVesselRequest) Apply(v *models.Vessel) error {
	if r.VesselName != nil {
		v.VesselName = *r.VesselName
	}
	if r.VoyageNo != nil {
		v.VoyageNo = *r.VoyageNo
	}
	if r.Country != nil {
		v.Country = *r.Country
	}
	if r.PortName != nil {
		v.PortName = *r.PortName
	}
	if r.ETA != nil {
		eta, err := types.ParseTimestamp(*r.ETA)
		if err != nil {
			return err
		}
		v.ETA = eta
	}
	if r.ETD != nil {
		etd, err := types.ParseTimestamp(*r.ETD)
		if err != nil {
			return err
		}
		v.ETD = etd
	}
	return nil
}

func checkWindow(eta, etd *string) []types.FieldError {
	start, err := types.ParseTimestamp(*eta)
	if err != nil {
		return nil
	}
	end, err := types.ParseTimestamp(*etd)
	if err != nil {
		return nil
	}
	if !end.After(start) {
		return []types.FieldError{{Field: "ETD", Message: etdAfterETAMessage}}
	}
	return nil
}

// BulkDeleteRequest names the records to remove in one call.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// VesselDTO is the public projection of a schedule entry.
type VesselDTO struct {
	ID         uuid.UUID          `json:"id"`
	VesselName string             `json:"vesselName"`
	VoyageNo   string             `json:"voyageNo"`
	Country    string             `json:"country"`
	PortName   string             `json:"portName"`
	ETA        time.Time          `json:"ETA"`
	ETD        time.Time          `json:"ETD"`
	Status     enums.VesselStatus `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

func FromModel(v *models.Vessel, now time.Time) *VesselDTO {
	if v == nil {
		return nil
	}
	return &VesselDTO{
		ID:         v.ID,
		VesselName: v.VesselName,
		VoyageNo:   v.VoyageNo,
		Country:    v.Country,
		PortName:   v.PortName,
		ETA:        v.ETA.UTC(),
		ETD:        v.ETD.UTC(),
		Status:     DeriveStatus(now, v.ETA, v.ETD),
		CreatedAt:  v.CreatedAt.UTC(),
		UpdatedAt:  v.UpdatedAt.UTC(),
	}
}

// Filters echoes the filters applied to a list request.
type Filters struct {
	Q          *string `json:"q,omitempty"`
	VesselName *string `json:"vesselName,omitempty"`
	Country    *string `json:"country,omitempty"`
	PortName   *string `json:"portName,omitempty"`
	FromETA    *string `json:"fromETA,omitempty"`
	ToETA      *string `json:"toETA,omitempty"`
	FromETD    *string `json:"fromETD,omitempty"`
	ToETD      *string `json:"toETD,omitempty"`
}

type ListResponse struct {
	Data       []VesselDTO     `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
	Filters    Filters         `json:"filters"`
	Sort       string          `json:"sort"`
}

type VesselResponse struct {
	Vessel *VesselDTO `json:"vessel"`
}

type MutationResponse struct {
	Message string     `json:"message"`
	Vessel  *VesselDTO `json:"vessel"`
}

type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// Statistics summarises the whole schedule.
type Statistics struct {
	TotalVessels   int64   `json:"totalVessels"`
	TotalCountries int64   `json:"totalCountries"`
	TotalPorts     int64   `json:"totalPorts"`
	AvgETADays     float64 `json:"avgETADays"`
	AvgETDDays     float64 `json:"avgETDDays"`
}

type UpcomingArrival struct {
	ID         uuid.UUID `json:"id"`
	VesselName string    `json:"vesselName"`
	VoyageNo   string    `json:"voyageNo"`
	PortName   string    `json:"portName"`
	ETA        time.Time `json:"ETA"`
}

type UpcomingDeparture struct {
	ID         uuid.UUID `json:"id"`
	VesselName string    `json:"vesselName"`
	VoyageNo   string    `json:"voyageNo"`
	PortName   string    `json:"portName"`
	ETD        time.Time `json:"ETD"`
}

type StatsResponse struct {
	Statistics         Statistics          `json:"statistics"`
	UpcomingArrivals   []UpcomingArrival   `json:"upcomingArrivals"`
	UpcomingDepartures []UpcomingDeparture `json:"upcomingDepartures"`
}
