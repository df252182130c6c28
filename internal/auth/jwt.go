package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ShiftLength is how long a staff session token stays valid.
const ShiftLength = 12 * time.Hour

var ErrStaffNameRequired = errors.New("staff name is required")

// Claims identify the server working a terminal. They carry no permissions.
type Claims struct {
	SessionID uuid.UUID `json:"session_id"`
	StaffName string    `json:"staff_name"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, staffName string, now time.Time) (string, error) {
	staffName = strings.TrimSpace(staffName)
	if staffName == "" {
		return "", ErrStaffNameRequired
	}
	claims := Claims{
		SessionID: uuid.New(),
		StaffName: staffName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffName,
			ExpiresAt: jwt.NewNumericDate(now.Add(ShiftLength)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.StaffName == "" {
		return nil, ErrStaffNameRequired
	}
	return claims, nil
}
