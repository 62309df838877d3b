package enums

import (
	"fmt"
	"strings"
)

// ApprovalAction represents the decision an approver can take on a pending shipment.
type ApprovalAction string

const (
	// ApprovalActionApprove releases the goods and decrements stock.
	ApprovalActionApprove ApprovalAction = "approve"
	// ApprovalActionReject closes the shipment without touching stock.
	ApprovalActionReject ApprovalAction = "reject"
)

func (a ApprovalAction) IsValid() bool {
	return a == ApprovalActionApprove || a == ApprovalActionReject
}

// TargetStatus maps the action onto the shipment status it produces.
func (a ApprovalAction) TargetStatus() ShipmentStatus {
	switch a {
	case ApprovalActionApprove:
		return ShipmentStatusApproved
	case ApprovalActionReject:
		return ShipmentStatusRejected
	}
	return ""
}

// ParseApprovalAction normalises case and whitespace before matching.
func ParseApprovalAction(value string) (ApprovalAction, error) {
	action := ApprovalAction(strings.ToLower(strings.TrimSpace(value)))
	if !action.IsValid() {
		return "", fmt.Errorf("invalid approval action %q", value)
	}
	return action, nil
}
