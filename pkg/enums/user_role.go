package enums

import "fmt"

// UserRole is the coarse permission level of a warehouse user.
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleApprover UserRole = "approver"
	UserRoleStaff    UserRole = "staff"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleApprover,
	UserRoleStaff,
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanApprove reports whether the role may decide on outgoing shipments.
func (r UserRole) CanApprove() bool {
	return r == UserRoleAdmin || r == UserRoleApprover
}

func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
