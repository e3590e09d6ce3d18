package enums

import "fmt"

// ShipmentStatus tracks the lifecycle of a booked shipment.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusConfirmed ShipmentStatus = "confirmed"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusConfirmed,
	ShipmentStatusInTransit,
	ShipmentStatusDelivered,
}

// shipmentStatusRank orders statuses along the forward-only lifecycle.
var shipmentStatusRank = map[ShipmentStatus]int{
	ShipmentStatusPending:   0,
	ShipmentStatusConfirmed: 1,
	ShipmentStatusInTransit: 2,
	ShipmentStatusDelivered: 3,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusDelivered
}

// CanTransitionTo reports whether moving to next advances the lifecycle
// by exactly one step. Skipping stages and moving backwards are both
// disallowed.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	from, ok := shipmentStatusRank[s]
	if !ok {
		return false
	}
	to, ok := shipmentStatusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
