package enums

import "fmt"

// IncomingShipmentStatus tracks whether received goods have been booked into stock.
type IncomingShipmentStatus string

const (
	IncomingShipmentStatusPending  IncomingShipmentStatus = "pending"
	IncomingShipmentStatusReceived IncomingShipmentStatus = "received"
)

var validIncomingShipmentStatuses = []IncomingShipmentStatus{
	IncomingShipmentStatusPending,
	IncomingShipmentStatusReceived,
}

func (s IncomingShipmentStatus) String() string {
	return string(s)
}

func (s IncomingShipmentStatus) IsValid() bool {
	for _, candidate := range validIncomingShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseIncomingShipmentStatus(value string) (IncomingShipmentStatus, error) {
	for _, candidate := range validIncomingShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid incoming shipment status %q", value)
}
