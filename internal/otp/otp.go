package otp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrCodeExpired    = errors.New("code expired")
	ErrCodeInvalid    = errors.New("code invalid")
)

// Issuer mints and verifies stateless reset challenges. A challenge is an
// HMAC-SHA256 over "identity.code.expiry" keyed with a server secret; the
// token handed to the client is "hex(digest).expiryMillis". Nothing is
// stored server-side, so a token stays verifiable until its expiry lapses.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateCode returns a uniformly random 6-digit code (100000..999999).
func (i *Issuer) GenerateCode() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}

// Challenge binds identity and code to a fresh expiry and returns the token
// the client must replay on verification.
func (i *Issuer) Challenge(identity, code string) string {
	expiry := i.now().Add(i.ttl).UnixMilli()
	return i.digest(identity, code, expiry) + "." + strconv.FormatInt(expiry, 10)
}

// Verify checks a client-submitted (identity, code, token) triple.
// Expiry is enforced before the digest is recomputed, so an expired token
// fails with ErrCodeExpired even when the code is correct.
func (i *Issuer) Verify(identity, code, token string) error {
	dot := strings.LastIndex(token, ".")
	if dot < 0 {
		return ErrMalformedToken
	}
	digestPart := token[:dot]
	expiry, err := strconv.ParseInt(token[dot+1:], 10, 64)
	if err != nil {
		return ErrMalformedToken
	}
	if i.now().UnixMilli() > expiry {
		return ErrCodeExpired
	}
	// recompute with the parsed expiry, not a fresh one
	want := i.digest(identity, code, expiry)
	if !hmac.Equal([]byte(want), []byte(digestPart)) {
		return ErrCodeInvalid
	}
	return nil
}

func (i *Issuer) digest(identity, code string, expiry int64) string {
	mac := hmac.New(sha256.New, i.secret)
	fmt.Fprintf(mac, "%s.%s.%d", identity, code, expiry)
	return hex.EncodeToString(mac.Sum(nil))
}
