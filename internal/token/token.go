package token

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/taskforge/backend/domain"
)

// Kind discriminates the two token families.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the JWT payload used for both access and refresh tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens bound to a user id.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer builds an Issuer. TTLs fall back to 15 minutes and 7 days.
func NewIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess mints a short-lived access token for userID.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	return i.issue(userID, KindAccess, i.accessTTL)
}

// IssueRefresh mints a refresh token for userID. The caller is responsible
// for persisting its hash into the user's session slot.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	return i.issue(userID, KindRefresh, i.refreshTTL)
}

func (i *Issuer) issue(userID string, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses tokenString and returns the bound user id. It fails with
// domain.ErrInvalidToken on expiry, signature mismatch, malformed input, or a
// token of the wrong kind.
func (i *Issuer) Verify(tokenString string, kind Kind) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.UserID == "" || claims.TokenType != string(kind) {
		return "", domain.ErrInvalidToken
	}
	return claims.UserID, nil
}

// AccessTTL exposes the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL exposes the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// HashRefresh reduces a refresh token to the digest persisted in the user's
// session slot. Slot comparison never touches the raw token.
func HashRefresh(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}
