package auth

import (
	"dm-lab/errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
// The identity provider owns these fields; the messaging core only trusts them.
type CustomClaims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and checks HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// GenerateToken creates a signed JWT for an identity.
func (t *TokenIssuer) GenerateToken(identity Identity, duration time.Duration) (string, error) {
	now := t.now()
	claims := &CustomClaims{
		UserID:      identity.ParticipantID,
		DisplayName: identity.DisplayName,
		Role:        identity.Role,
		AvatarURL:   identity.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ParticipantID,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken parses and validates the signature, issuer and expiration of
// a JWT string, then checks the identity it carries.
func (t *TokenIssuer) ValidateToken(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.ErrInvalidToken
	}
	identity := Identity{
		ParticipantID: claims.UserID,
		DisplayName:   claims.DisplayName,
		Role:          claims.Role,
		AvatarURL:     claims.AvatarURL,
	}
	if err := ValidateIdentity(identity); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	return identity, nil
}
