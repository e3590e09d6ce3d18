package enums

import "fmt"

// SpaceStatus tracks the availability of a logistics space listing.
type SpaceStatus string

const (
	SpaceStatusAvailable SpaceStatus = "available"
	SpaceStatusPartial   SpaceStatus = "partial"
	SpaceStatusBooked    SpaceStatus = "booked"
)

var validSpaceStatuses = []SpaceStatus{
	SpaceStatusAvailable,
	SpaceStatusPartial,
	SpaceStatusBooked,
}

// String implements fmt.Stringer.
func (s SpaceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SpaceStatus.
func (s SpaceStatus) IsValid() bool {
	for _, candidate := range validSpaceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsBookable reports whether new shipments may still claim the space.
func (s SpaceStatus) IsBookable() bool {
	return s == SpaceStatusAvailable || s == SpaceStatusPartial
}

// ParseSpaceStatus converts raw input into a SpaceStatus.
func ParseSpaceStatus(value string) (SpaceStatus, error) {
	for _, candidate := range validSpaceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid space status %q", value)
}
