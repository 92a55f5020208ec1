package enums

// VesselStatus is derived from the current time against a vessel's port window.
type VesselStatus string

const (
	VesselStatusUpcoming VesselStatus = "UPCOMING"
	VesselStatusAtPort   VesselStatus = "AT_PORT"
	VesselStatusDeparted VesselStatus = "DEPARTED"
)

func (s VesselStatus) String() string {
	return string(s)
}
