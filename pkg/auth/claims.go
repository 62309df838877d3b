package auth

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

// AccessTokenPayload is what the login flow knows about the caller when minting.
type AccessTokenPayload struct {
	UserID   uint64
	Username string
	Role     enums.UserRole
	JTI      string
}

// AccessTokenClaims is the JWT body. The role is embedded so approval routes
// can authorize without a database read.
type AccessTokenClaims struct {
	UserID   uint64         `json:"user_id"`
	Username string         `json:"username"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks and rejects tokens whose
// custom claims disagree with each other.
func (c AccessTokenClaims) Validate() error {
	switch {
	case c.UserID == 0:
		return errors.New("token has no user id")
	case c.Subject != strconv.FormatUint(c.UserID, 10):
		return errors.New("token subject does not match user id")
	case !c.Role.IsValid():
		return errors.New("token carries an unknown role")
	case c.ID == "":
		return errors.New("token has no session id")
	}
	return nil
}
