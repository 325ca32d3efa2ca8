package otp

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(now time.Time) *Issuer {
	iss := NewIssuer("test-secret", 3*time.Minute)
	iss.now = func() time.Time { return now }
	return iss
}

func TestGenerateCode(t *testing.T) {
	iss := NewIssuer("s", time.Minute)
	for range 200 {
		code := iss.GenerateCode()
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestChallengeDeterminism(t *testing.T) {
	now := time.Now()
	iss := newTestIssuer(now)

	a := iss.Challenge("admin@example.com", "123456")
	b := iss.Challenge("admin@example.com", "123456")
	assert.Equal(t, a, b, "same inputs under a fixed clock and key must yield the same token")

	dot := strings.LastIndex(a, ".")
	require.Positive(t, dot)
	assert.Len(t, a[:dot], 64, "digest part is hex-encoded SHA-256")
	exp, err := strconv.ParseInt(a[dot+1:], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, now.Add(3*time.Minute).UnixMilli(), exp)
}

func TestVerifyHappyPath(t *testing.T) {
	iss := newTestIssuer(time.Now())
	token := iss.Challenge("admin@example.com", "123456")
	assert.NoError(t, iss.Verify("admin@example.com", "123456", token))
}

func TestVerifyIsReplayable(t *testing.T) {
	// No server-side state is kept, so an unexpired token verifies more
	// than once. Documented current behavior, not a desired property.
	iss := newTestIssuer(time.Now())
	token := iss.Challenge("admin@example.com", "123456")
	assert.NoError(t, iss.Verify("admin@example.com", "123456", token))
	assert.NoError(t, iss.Verify("admin@example.com", "123456", token))
}

func TestVerifyTamperSensitivity(t *testing.T) {
	iss := newTestIssuer(time.Now())
	token := iss.Challenge("admin@example.com", "123456")

	assert.ErrorIs(t, iss.Verify("admin@example.com", "123457", token), ErrCodeInvalid)
	assert.ErrorIs(t, iss.Verify("bdmin@example.com", "123456", token), ErrCodeInvalid)

	// shift embedded expiry by 1ms: digest no longer matches
	dot := strings.LastIndex(token, ".")
	exp, err := strconv.ParseInt(token[dot+1:], 10, 64)
	require.NoError(t, err)
	shifted := token[:dot+1] + strconv.FormatInt(exp+1, 10)
	assert.ErrorIs(t, iss.Verify("admin@example.com", "123456", shifted), ErrCodeInvalid)
}

func TestVerifyNoCrossIdentityReuse(t *testing.T) {
	iss := newTestIssuer(time.Now())
	token := iss.Challenge("a@x.com", "654321")
	assert.ErrorIs(t, iss.Verify("b@x.com", "654321", token), ErrCodeInvalid)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issued := time.Now()
	iss := newTestIssuer(issued)
	token := iss.Challenge("admin@example.com", "123456")
	expiry := issued.Add(3 * time.Minute)

	iss.now = func() time.Time { return expiry.Add(-time.Millisecond) }
	assert.NoError(t, iss.Verify("admin@example.com", "123456", token))

	iss.now = func() time.Time { return expiry }
	assert.NoError(t, iss.Verify("admin@example.com", "123456", token), "valid exactly at expiry")

	iss.now = func() time.Time { return expiry.Add(time.Millisecond) }
	assert.ErrorIs(t, iss.Verify("admin@example.com", "123456", token), ErrCodeExpired)
}

func TestVerifyExpiredBeatsInvalid(t *testing.T) {
	// expiry is enforced before the digest compare, wrong code included
	issued := time.Now()
	iss := newTestIssuer(issued)
	token := iss.Challenge("admin@example.com", "123456")
	iss.now = func() time.Time { return issued.Add(3*time.Minute + time.Second) }
	assert.ErrorIs(t, iss.Verify("admin@example.com", "000000", token), ErrCodeExpired)
}

func TestVerifyMalformedToken(t *testing.T) {
	iss := newTestIssuer(time.Now())
	token := iss.Challenge("admin@example.com", "123456")

	assert.ErrorIs(t, iss.Verify("admin@example.com", "123456", strings.ReplaceAll(token, ".", "")), ErrMalformedToken)
	assert.ErrorIs(t, iss.Verify("admin@example.com", "123456", "deadbeef.notanumber"), ErrMalformedToken)
	assert.ErrorIs(t, iss.Verify("admin@example.com", "123456", ""), ErrMalformedToken)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	now := time.Now()
	iss := newTestIssuer(now)
	other := NewIssuer("other-secret", 3*time.Minute)
	other.now = iss.now

	token := other.Challenge("admin@example.com", "123456")
	assert.ErrorIs(t, iss.Verify("admin@example.com", "123456", token), ErrCodeInvalid)
}
