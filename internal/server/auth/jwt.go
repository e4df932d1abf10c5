package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/citizendesk/grievance-server/internal/common"
)

// Role is the caller's authorization level carried in the token.
type Role string

const (
	RoleAgent      Role = "AGENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// CanUpload reports whether the role may request presigned uploads and
// confirm them.
func (r Role) CanUpload() bool {
	return r == RoleAgent || r == RoleAdmin || r == RoleSuperAdmin
}

// CanManage reports whether the role may use the fallback upload path and
// delete cases.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Claims carries the registered claims plus the caller's identity and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Role   Role
}

func GenerateToken(userID string, role Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Role:   role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
