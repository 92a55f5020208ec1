package vessels

import (
	"time"

	"github.com/harborline/shipline-backend/pkg/enums"
)

// DeriveStatus places now against the [eta, etd] port window.
func DeriveStatus(now, eta, etd time.Time) enums.VesselStatus {
	switch {
	case now.Before(eta):
		return enums.VesselStatusUpcoming
	case !now.After(etd):
		return enums.VesselStatusAtPort
	default:
		return enums.VesselStatusDeparted
	}
}
