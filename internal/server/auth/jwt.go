// Package auth signs and parses the short-lived handles that tie the two
// halves of a passkey ceremony together.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Ceremony kinds.
const (
	KindRegistration = "registration"
	KindLogin        = "login"
)

// CeremonyClaims identifies the Verification record holding ceremony state.
type CeremonyClaims struct {
	jwt.RegisteredClaims
	Kind       string `json:"kind"`
	Identifier string `json:"vid"`
	UserID     string `json:"uid,omitempty"`
}

// GenerateCeremonyHandle signs a handle issued at now and valid until
// expiresAt. Callers pass the same instant they stamp on the Verification row.
func GenerateCeremonyHandle(kind, identifier, userID string, secretKey []byte, now, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CeremonyClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind:       kind,
		Identifier: identifier,
		UserID:     userID,
	})
	return token.SignedString(secretKey)
}

// ParseCeremonyHandle verifies the handle as of now and that it was issued
// for kind. An expired handle yields common.ErrChallengeExpired; anything
// else that fails verification yields common.ErrInvalidCredentials.
func ParseCeremonyHandle(handle, kind string, secretKey []byte, now time.Time) (*CeremonyClaims, error) {
	claims := &CeremonyClaims{}

	token, err := jwt.ParseWithClaims(handle, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrChallengeExpired
		}
		return nil, common.ErrInvalidCredentials
	}

	if !token.Valid || claims.Kind != kind || claims.Identifier == "" {
		return nil, common.ErrInvalidCredentials
	}

	return claims, nil
}
