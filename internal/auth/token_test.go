// ABOUTME: Tests for room access token minting and verification
// ABOUTME: Covers round trips, expiry, tampering, and room/identity claims

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomKey_MintAndVerify(t *testing.T) {
	key := NewRoomKey("devkey", []byte("test-secret"))

	tok, err := key.Mint(Grant{Identity: "phone", Room: "yogi", TTL: time.Hour})
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := key.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "phone", claims.Identity)
	assert.Equal(t, "yogi", claims.Room)
}

func TestRoomKey_Mint_RequiresIdentityAndRoom(t *testing.T) {
	key := NewRoomKey("devkey", []byte("test-secret"))

	_, err := key.Mint(Grant{Room: "yogi"})
	assert.ErrorIs(t, err, ErrMissingClaim)

	_, err = key.Mint(Grant{Identity: "phone"})
	assert.ErrorIs(t, err, ErrMissingClaim)
}

func TestRoomKey_Verify_WrongSecret(t *testing.T) {
	key := NewRoomKey("devkey", []byte("test-secret"))
	other := NewRoomKey("devkey", []byte("different-secret"))

	tok, err := key.Mint(Grant{Identity: "phone", Room: "yogi", TTL: time.Hour})
	require.NoError(t, err)

	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoomKey_Verify_Expired(t *testing.T) {
	key := NewRoomKey("devkey", []byte("test-secret"))

	// Build an already-expired token directly
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  "phone",
		"iss":  "devkey",
		"room": "yogi",
		"iat":  now.Add(-2 * time.Hour).Unix(),
		"exp":  now.Add(-time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = key.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRoomKey_Verify_MissingRoomClaim(t *testing.T) {
	key := NewRoomKey("devkey", []byte("test-secret"))

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "phone",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = key.Verify(tok)
	assert.ErrorIs(t, err, ErrMissingClaim)
}

func TestRoomKey_Verify_Garbage(t *testing.T) {
	key := NewRoomKey("devkey", []byte("test-secret"))

	_, err := key.Verify("not-a-token")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrExpiredToken))
}

func TestRoomKey_DefaultTTL(t *testing.T) {
	key := NewRoomKey("devkey", []byte("test-secret"))

	tok, err := key.Mint(Grant{Identity: "phone", Room: "yogi"})
	require.NoError(t, err)

	_, err = key.Verify(tok)
	assert.NoError(t, err)
}
