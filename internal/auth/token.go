// ABOUTME: Room access token minting and verification for the signaling endpoint
// ABOUTME: Uses HS256 signing with the configured room API secret

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Grant describes what a minted token permits.
type Grant struct {
	Identity string // participant identity, becomes the "sub" claim
	Room     string // room the token admits to
	TTL      time.Duration
}

// Claims is the verified content of a room access token.
type Claims struct {
	Identity string
	Room     string
}

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// RoomKey mints and verifies room access tokens using HS256 signed JWTs
type RoomKey struct {
	apiKey string
	secret []byte
}

// NewRoomKey creates a room key from the configured API key and secret
func NewRoomKey(apiKey string, secret []byte) *RoomKey {
	return &RoomKey{apiKey: apiKey, secret: secret}
}

// Mint creates a new access token for the given grant
func (k *RoomKey) Mint(grant Grant) (string, error) {
	if grant.Identity == "" {
		return "", fmt.Errorf("%w: identity", ErrMissingClaim)
	}
	if grant.Room == "" {
		return "", fmt.Errorf("%w: room", ErrMissingClaim)
	}

	ttl := grant.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  grant.Identity,
		"iss":  k.apiKey,
		"room": grant.Room,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(k.secret)
}

// Verify validates the token and extracts the identity and room claims
func (k *RoomKey) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return k.secret, nil
	})

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	room, ok := mapClaims["room"].(string)
	if !ok || room == "" {
		return nil, fmt.Errorf("%w: room", ErrMissingClaim)
	}

	return &Claims{Identity: sub, Room: room}, nil
}
