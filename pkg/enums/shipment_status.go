package enums

import "fmt"

// ShipmentStatus tracks the approval lifecycle of an outgoing shipment.
type ShipmentStatus string

const (
	ShipmentStatusPending  ShipmentStatus = "pending"
	ShipmentStatusApproved ShipmentStatus = "approved"
	ShipmentStatusRejected ShipmentStatus = "rejected"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusApproved,
	ShipmentStatusRejected,
}

func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known shipment status.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsFinal reports whether no further transition is allowed from this status.
func (s ShipmentStatus) IsFinal() bool {
	return s == ShipmentStatusApproved || s == ShipmentStatusRejected
}

// ParseShipmentStatus converts raw input into ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
