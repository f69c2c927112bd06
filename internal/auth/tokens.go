package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// Claims are the claims carried by an access token
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// ProfileID returns the subject as a profile id
func (c *Claims) ProfileID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// AccessToken is a signed access token and its expiry
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

// TokenManager issues and validates RS256 access tokens
type TokenManager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	accessTTL  time.Duration
}

// NewTokenManager parses the PEM encoded key pair. The private key may be
// empty for a verifier-only manager.
func NewTokenManager(privateKeyPEM, publicKeyPEM, issuer string, accessTTL time.Duration) (*TokenManager, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not configured")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	m := &TokenManager{
		publicKey: publicKey,
		issuer:    issuer,
		accessTTL: accessTTL,
	}

	if privateKeyPEM != "" {
		m.privateKey, err = jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
		}
	}

	return m, nil
}

// Issue signs an access token for a profile
func (m *TokenManager) Issue(profileID uuid.UUID, email string, now time.Time) (*AccessToken, error) {
	if m.privateKey == nil {
		return nil, errors.New("JWT private key not configured")
	}

	expiresAt := now.Add(m.accessTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Email: email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AccessToken{Token: token, ExpiresAt: expiresAt, ExpiresIn: m.accessTTL}, nil
}

// Validate parses and verifies an access token. Expired tokens return
// domain.ErrTokenExpired and every other failure domain.ErrInvalidToken.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return m.publicKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if _, err := claims.ProfileID(); err != nil {
		return nil, fmt.Errorf("%w: invalid subject", domain.ErrInvalidToken)
	}

	return claims, nil
}

// NewOpaqueToken returns a random URL-safe token for refresh and CSRF cookies
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 of an opaque token; only hashes are stored
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CSRFMatches compares the CSRF cookie with the header in constant time
func CSRFMatches(cookie, header string) bool {
	if cookie == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}
