package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/01moynul/storefront-golang/internal/models"
)

// Issuer signs and validates session tokens.
// The secret and lifetime come from config instead of being hardcoded.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer for the given HMAC secret and token lifetime.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a new JWT for the given identity.
func (i *Issuer) GenerateToken(id models.Identity) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":   id.ID,                 // "sub" (Subject) is the standard claim for User ID
		"email": id.Email,              // lets us rebuild the session without a DB read
		"exp":   now.Add(i.ttl).Unix(), // Expiry
		"iat":   now.Unix(),            // "iat" (Issued At)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the identity carried by the token if it is valid.
func (i *Issuer) ValidateToken(tokenString string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token was signed with the same algorithm we use.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return models.Identity{}, err // expired, malformed, bad signature
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, errors.New("invalid token")
	}

	// JSON numbers decode as float64.
	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return models.Identity{}, errors.New("invalid subject claim")
	}
	email, _ := claims["email"].(string)

	return models.Identity{ID: int64(userIDFloat), Email: email}, nil
}
