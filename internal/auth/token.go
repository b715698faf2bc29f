// Package auth implements the HMAC bearer tokens issued to admins after
// login.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// TokenSigner issues and validates expiring admin tokens of the form
// "<expiryUnix>.<hexSignature>".
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner creates a TokenSigner.
func NewTokenSigner(secret []byte, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: secret, ttl: ttl}
}

// Issue returns a fresh token and its expiry time.
func (s *TokenSigner) Issue(now time.Time) (string, time.Time) {
	expiresAt := now.Add(s.ttl)
	exp := expiresAt.Unix()
	return strconv.FormatInt(exp, 10) + "." + s.sign(exp), expiresAt
}

// Validate reports whether the token is well formed, unexpired, and signed
// with this signer's secret.
func (s *TokenSigner) Validate(token string, now time.Time) bool {
	expStr, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return false
	}
	if time.Unix(exp, 0).Before(now) {
		return false
	}
	expected := s.sign(exp)
	// hmac.Equal is constant time.
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *TokenSigner) sign(expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strconv.FormatInt(expiresUnix, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
