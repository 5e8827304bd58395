package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type mintOptions struct {
	id       string
	userID   string
	email    string
	issuer   string
	audience string
	expires  time.Time
	secret   string
}

func defaultMintOptions() mintOptions {
	return mintOptions{
		id:       "507f1f77bcf86cd799439011",
		email:    "user@example.com",
		issuer:   TokenIssuer,
		audience: TokenAudience,
		expires:  time.Now().Add(time.Hour),
		secret:   testSecret,
	}
}

func mintToken(t *testing.T, opts mintOptions) string {
	t.Helper()
	claims := tokenClaims{
		ID:     opts.id,
		UserID: opts.userID,
		Email:  opts.email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    opts.issuer,
			Audience:  jwt.ClaimStrings{opts.audience},
			ExpiresAt: jwt.NewNumericDate(opts.expires),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(opts.secret))
	require.NoError(t, err)
	return token
}

func TestVerifyValidToken(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	identity, err := v.Verify(context.Background(), mintToken(t, defaultMintOptions()))
	require.NoError(t, err)
	require.Equal(t, "507f1f77bcf86cd799439011", identity.UserID)
	require.Equal(t, "user@example.com", identity.Email)
}

func TestVerifyAcceptsUserIdClaimFallback(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	opts := defaultMintOptions()
	opts.id = ""
	opts.userID = "legacy-user"

	identity, err := v.Verify(context.Background(), mintToken(t, opts))
	require.NoError(t, err)
	require.Equal(t, "legacy-user", identity.UserID)
}

func TestVerifyMissingCredential(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	_, err := v.Verify(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingCredential)

	_, err = v.Verify(context.Background(), "   ")
	require.ErrorIs(t, err, ErrMissingCredential)
}

func TestVerifyExpiredCredential(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	opts := defaultMintOptions()
	opts.expires = time.Now().Add(-time.Hour)

	_, err := v.Verify(context.Background(), mintToken(t, opts))
	require.ErrorIs(t, err, ErrExpiredCredential)
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	opts := defaultMintOptions()
	opts.secret = "another-secret"

	_, err := v.Verify(context.Background(), mintToken(t, opts))
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyWrongIssuerOrAudience(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	opts := defaultMintOptions()
	opts.issuer = "someone-else"
	_, err := v.Verify(context.Background(), mintToken(t, opts))
	require.ErrorIs(t, err, ErrInvalidCredential)

	opts = defaultMintOptions()
	opts.audience = "other-audience"
	_, err = v.Verify(context.Background(), mintToken(t, opts))
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyGarbageToken(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	_, err := v.Verify(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyTokenWithoutUserIsMalformed(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	opts := defaultMintOptions()
	opts.id = ""
	opts.userID = ""

	_, err := v.Verify(context.Background(), mintToken(t, opts))
	require.ErrorIs(t, err, ErrMalformedPayload)
}
