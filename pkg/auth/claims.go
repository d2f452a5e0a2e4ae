package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusshelf/library-backend/pkg/enums"
)

var (
	errUnknownRole     = errors.New("token carries an unknown role")
	errSubjectMismatch = errors.New("token subject does not match user id")
)

// AccessTokenPayload is what the auth service supplies when it opens a
// session. An empty JTI gets a random one.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the body of every access token. The JTI doubles as
// the redis session key.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.UserRoleAdmin
}

// Validate runs after the registered-claim checks during parsing.
func (c *AccessTokenClaims) Validate() error {
	if !c.Role.IsValid() {
		return errUnknownRole
	}
	if c.Subject != c.UserID.String() {
		return errSubjectMismatch
	}
	return nil
}
