package token

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/bearer-auth/internal/models"
)

const testSecret = "unit-test-secret"

func newCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()

	c, err := New(testSecret, "HS256", opts...)
	require.NoError(t, err)
	return c
}

// signRaw — подписывает произвольные утверждения в обход кодека.
func signRaw(t *testing.T, method jwt.SigningMethod, key any, cl jwt.MapClaims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(method, cl).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "42",
		"typ": "access",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
}

func TestMintDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newCodec(t)

	for _, typ := range []models.TokenType{models.TokenTypeAccess, models.TokenTypeRefresh} {
		for _, sub := range []int64{1, 42, 1 << 40} {
			start := time.Now().UTC()
			raw, exp, err := c.Mint(sub, typ, 30*time.Minute)
			require.NoError(t, err)

			tok, err := c.Decode(raw)
			require.NoError(t, err)
			require.Equal(t, sub, tok.Subject)
			require.Equal(t, typ, tok.Type)
			require.NotEmpty(t, tok.ID)
			require.Equal(t, exp, tok.ExpiresAt)
			require.WithinDuration(t, start.Add(30*time.Minute), tok.ExpiresAt, 2*time.Second)
			require.WithinDuration(t, start, tok.IssuedAt, 2*time.Second)
			require.False(t, tok.Expired(time.Now()))
		}
	}
}

func TestMint_PayloadClaimNames(t *testing.T) {
	t.Parallel()

	raw, _, err := newCodec(t).Mint(42, models.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)

	cl := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(raw, cl)
	require.NoError(t, err)

	require.Equal(t, "refresh", cl["typ"])
	require.Equal(t, "42", cl["sub"])
	require.NotContains(t, cl, "type")
	for _, k := range []string{"iat", "exp", "jti"} {
		require.Contains(t, cl, k)
	}
}

func TestMint_SameInputsSameSecond_DistinctTokens(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newCodec(t, WithClock(func() time.Time { return fixed }))

	a, _, err := c.Mint(7, models.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	b, _, err := c.Mint(7, models.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestMint_UnknownType(t *testing.T) {
	t.Parallel()

	_, _, err := newCodec(t).Mint(1, models.TokenType("id"), time.Minute)
	require.Error(t, err)
}

// TestDecode_ExpiredTokenStillDecodes — Decode не проверяет срок действия.
func TestDecode_ExpiredTokenStillDecodes(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-2 * time.Hour)
	minter := newCodec(t, WithClock(func() time.Time { return past }))

	raw, _, err := minter.Mint(5, models.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	tok, err := newCodec(t).Decode(raw)
	require.NoError(t, err)
	require.True(t, tok.Expired(time.Now()))
}

func TestDecode_DifferentSecret_InvalidSignature(t *testing.T) {
	t.Parallel()

	other, err := New("another-secret", "HS256")
	require.NoError(t, err)

	raw, _, err := other.Mint(1, models.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = newCodec(t).Decode(raw)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecode_TamperedPayload_InvalidSignature(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	raw, _, err := c.Mint(1, models.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	forged := signRaw(t, jwt.SigningMethodHS256, []byte("attacker"), validClaims(time.Now()))
	parts := strings.Split(raw, ".")
	forgedParts := strings.Split(forged, ".")

	// чужой payload с исходной подписью.
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = c.Decode(tampered)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

// TestDecode_AlgorithmConfusion — токен другого алгоритма отклоняется даже при верном секрете.
func TestDecode_AlgorithmConfusion(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	now := time.Now()

	t.Run("hs512_with_same_secret", func(t *testing.T) {
		raw := signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(now))

		_, err := c.Decode(raw)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("alg_none", func(t *testing.T) {
		raw := signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(now))

		_, err := c.Decode(raw)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("rs256", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		raw := signRaw(t, jwt.SigningMethodRS256, key, validClaims(now))

		_, err = c.Decode(raw)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	c := newCodec(t)
	now := time.Now()
	key := []byte(testSecret)

	without := func(field string) jwt.MapClaims {
		cl := validClaims(now)
		delete(cl, field)
		return cl
	}
	with := func(field string, v any) jwt.MapClaims {
		cl := validClaims(now)
		cl[field] = v
		return cl
	}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "not_a_jwt", raw: "not-a-jwt"},
		{name: "garbage_segments", raw: "a.b.c"},
		{name: "missing_sub", raw: signRaw(t, jwt.SigningMethodHS256, key, without("sub"))},
		{name: "non_integer_sub", raw: signRaw(t, jwt.SigningMethodHS256, key, with("sub", "user-42"))},
		{name: "zero_sub", raw: signRaw(t, jwt.SigningMethodHS256, key, with("sub", "0"))},
		{name: "numeric_sub_json", raw: signRaw(t, jwt.SigningMethodHS256, key, with("sub", 42))},
		{name: "missing_type", raw: signRaw(t, jwt.SigningMethodHS256, key, without("typ"))},
		{name: "unknown_type", raw: signRaw(t, jwt.SigningMethodHS256, key, with("typ", "id"))},
		{name: "missing_exp", raw: signRaw(t, jwt.SigningMethodHS256, key, without("exp"))},
		{name: "missing_iat", raw: signRaw(t, jwt.SigningMethodHS256, key, without("iat"))},
		{name: "string_exp", raw: signRaw(t, jwt.SigningMethodHS256, key, with("exp", "tomorrow"))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := c.Decode(tt.raw)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New("", "HS256")
	require.ErrorIs(t, err, ErrEmptySecret)

	_, err = New("s", "RS256")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = New("s", "none")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		c, err := New("s", alg)
		require.NoError(t, err)
		require.Equal(t, alg, c.Algorithm())
	}
}

func TestCodec_ConfiguredAlgorithmIsEnforced(t *testing.T) {
	t.Parallel()

	c512, err := New(testSecret, "HS512")
	require.NoError(t, err)

	raw, _, err := c512.Mint(3, models.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	tok, err := c512.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, int64(3), tok.Subject)

	_, err = newCodec(t).Decode(raw)
	require.ErrorIs(t, err, ErrInvalidSignature)
}
