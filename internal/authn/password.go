// Package authn resolves the session principal for a Bind request: it
// verifies a presented password against an entry's userPassword values
// and tracks per-principal lockout state across failed attempts.
//
// Distilled from the teacher's internal/server/auth.go scheme-prefixed
// verification idiom ({SSHA256}, {CLEARTEXT}, ...), generalized with a
// {BCRYPT} scheme backed by golang.org/x/crypto/bcrypt as the scheme new
// userPassword values are hashed with, and from internal/password/
// lockout.go's AccountLockout, generalized from a single account to a
// registry keyed by bound DN.
package authn

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/obadir/oba/internal/errs"
)

// Password scheme prefixes, per RFC 3112 §3.
const (
	SchemeBcrypt    = "{BCRYPT}"
	SchemeSSHA256   = "{SSHA256}"
	SchemeSHA256    = "{SHA256}"
	SchemeCleartext = "{CLEARTEXT}"
)

// HashPassword produces a new userPassword value using {BCRYPT}, the
// scheme this package writes for every password it hashes; verification
// still accepts the teacher's legacy schemes so entries imported via
// LDIF from another directory keep working.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.Wrap(errs.KindOperationsError, "hashing password", err)
	}
	return SchemeBcrypt + string(hash), nil
}

// VerifyPassword checks plaintext against one stored userPassword value.
func VerifyPassword(plaintext, stored string) error {
	schemeEnd := strings.IndexByte(stored, '}')
	if schemeEnd == -1 || !strings.HasPrefix(stored, "{") {
		if subtle.ConstantTimeCompare([]byte(plaintext), []byte(stored)) == 1 {
			return nil
		}
		return errs.New(errs.KindInvalidCredentials, "password mismatch")
	}

	scheme := strings.ToUpper(stored[:schemeEnd+1])
	rest := stored[schemeEnd+1:]

	switch scheme {
	case SchemeBcrypt:
		if bcrypt.CompareHashAndPassword([]byte(rest), []byte(plaintext)) != nil {
			return errs.New(errs.KindInvalidCredentials, "password mismatch")
		}
		return nil
	case SchemeCleartext:
		if subtle.ConstantTimeCompare([]byte(plaintext), []byte(rest)) == 1 {
			return nil
		}
		return errs.New(errs.KindInvalidCredentials, "password mismatch")
	case SchemeSHA256:
		return compareDigest(sha256Sum(plaintext), rest)
	case SchemeSSHA256:
		return verifySalted(plaintext, rest)
	default:
		return errs.New(errs.KindInvalidCredentials, "unsupported password scheme "+scheme)
	}
}

// VerifyAny checks plaintext against every stored value, succeeding if
// any one matches, per userPassword's multi-valued semantics.
func VerifyAny(plaintext string, stored []string) error {
	for _, s := range stored {
		if VerifyPassword(plaintext, s) == nil {
			return nil
		}
	}
	return errs.New(errs.KindInvalidCredentials, "password mismatch")
}

func sha256Sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func compareDigest(computed []byte, encoded string) error {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errs.New(errs.KindInvalidCredentials, "malformed stored password")
	}
	if subtle.ConstantTimeCompare(computed, decoded) == 1 {
		return nil
	}
	return errs.New(errs.KindInvalidCredentials, "password mismatch")
}

// verifySalted implements {SSHA256}: base64(sha256(password+salt)+salt).
func verifySalted(plaintext, encoded string) error {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errs.New(errs.KindInvalidCredentials, "malformed stored password")
	}
	if len(decoded) < sha256.Size {
		return errs.New(errs.KindInvalidCredentials, "malformed stored password")
	}
	digest, salt := decoded[:sha256.Size], decoded[sha256.Size:]
	h := sha256.New()
	h.Write([]byte(plaintext))
	h.Write(salt)
	if subtle.ConstantTimeCompare(h.Sum(nil), digest) == 1 {
		return nil
	}
	return errs.New(errs.KindInvalidCredentials, "password mismatch")
}
