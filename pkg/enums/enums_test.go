package enums

import "testing"

func TestParseApprovalAction(t *testing.T) {
	cases := []struct {
		in      string
		want    ApprovalAction
		wantErr bool
	}{
		{in: "approve", want: ApprovalActionApprove},
		{in: " Reject ", want: ApprovalActionReject},
		{in: "cancel", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseApprovalAction(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseApprovalAction(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseApprovalAction(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestApprovalActionTargetStatus(t *testing.T) {
	if ApprovalActionApprove.TargetStatus() != ShipmentStatusApproved {
		t.Fatal("approve should map to approved")
	}
	if ApprovalActionReject.TargetStatus() != ShipmentStatusRejected {
		t.Fatal("reject should map to rejected")
	}
	if ApprovalAction("bogus").TargetStatus() != "" {
		t.Fatal("unknown action should map to empty status")
	}
}

func TestShipmentStatusIsFinal(t *testing.T) {
	if ShipmentStatusPending.IsFinal() {
		t.Fatal("pending is not final")
	}
	if !ShipmentStatusApproved.IsFinal() || !ShipmentStatusRejected.IsFinal() {
		t.Fatal("approved and rejected are final")
	}
}

func TestUserRoleCanApprove(t *testing.T) {
	if !UserRoleAdmin.CanApprove() || !UserRoleApprover.CanApprove() {
		t.Fatal("admin and approver may approve")
	}
	if UserRoleStaff.CanApprove() {
		t.Fatal("staff may not approve")
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatal("expected unknown role to fail")
	}
}
