package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/pkg/types"
)

var (
	VesselNamePattern = regexp.MustCompile(`^[A-Za-z0-9 \-_.()]+$`)
	VoyageNoPattern   = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
	CountryPattern    = regexp.MustCompile(`^[A-Za-z \-.'()]+$`)
	PortNamePattern   = regexp.MustCompile(`^[A-Za-z0-9 \-_.()]+$`)
)

// Vessel is a single schedule entry: one voyage calling at one port.
type Vessel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	VesselName string    `gorm:"column:vessel_name;type:varchar(100);not null;uniqueIndex:ux_vessels_name_voyage,priority:1"`
	VoyageNo   string    `gorm:"column:voyage_no;type:varchar(50);not null;uniqueIndex:ux_vessels_name_voyage,priority:2"`
	Country    string    `gorm:"column:country;type:varchar(60);not null;index"`
	PortName   string    `gorm:"column:port_name;type:varchar(80);not null;index"`
	ETA        time.Time `gorm:"column:eta;not null;index"`
	ETD        time.Time `gorm:"column:etd;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vessel) TableName() string { return "vessels" }

// ValidationError is returned by the save hooks when a record breaks a
// storage invariant.
type ValidationError struct {
	Errors []types.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "vessel validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) FieldErrors() []types.FieldError {
	return e.Errors
}

func (v *Vessel) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *Vessel) BeforeSave(*gorm.DB) error {
	v.Normalize()
	return v.Validate()
}

// Normalize trims text fields and stores timestamps in UTC at millisecond
// precision.
func (v *Vessel) Normalize() {
	v.VesselName = strings.TrimSpace(v.VesselName)
	v.VoyageNo = strings.TrimSpace(v.VoyageNo)
	v.Country = strings.TrimSpace(v.Country)
	v.PortName = strings.TrimSpace(v.PortName)
	v.ETA = v.ETA.UTC().Truncate(time.Millisecond)
	v.ETD = v.ETD.UTC().Truncate(time.Millisecond)
}

// Validate checks the record-level invariants, including ETD after ETA.
func (v *Vessel) Validate() error {
	var errs []types.FieldError
	check := func(field, value string, min, max int, pattern *regexp.Regexp) {
		n := utf8.RuneCountInString(value)
		switch {
		case n == 0:
			errs = append(errs, types.FieldError{Field: field, Message: "is required"})
		case n < min:
			errs = append(errs, types.FieldError{Field: field, Message: fmt.Sprintf("must be at least %d characters", min)})
		case n > max:
			errs = append(errs, types.FieldError{Field: field, Message: fmt.Sprintf("cannot exceed %d characters", max)})
		case !pattern.MatchString(value):
			errs = append(errs, types.FieldError{Field: field, Message: "contains invalid characters"})
		}
	}
	check("vesselName", v.VesselName, 2, 100, VesselNamePattern)
	check("voyageNo", v.VoyageNo, 2, 50, VoyageNoPattern)
	check("country", v.Country, 2, 60, CountryPattern)
	check("portName", v.PortName, 2, 80, PortNamePattern)

	if v.ETA.IsZero() {
		errs = append(errs, types.FieldError{Field: "ETA", Message: "is required"})
	}
	if v.ETD.IsZero() {
		errs = append(errs, types.FieldError{Field: "ETD", Message: "is required"})
	}
	if !v.ETA.IsZero() && !v.ETD.IsZero() && !v.ETD.After(v.ETA) {
		errs = append(errs, types.FieldError{Field: "ETD", Message: "ETD must be after ETA"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
