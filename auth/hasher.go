package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

// Password hashing uses PBKDF2-SHA256 with a per password random salt.
// The same scheme is used to produce and to verify a hash; iteration
// count and output size are fixed so stored hashes stay verifiable.
const (
	saltSize       = 32
	hashIterations = 1000
	hashKeyLength  = 32
)

// HashPassword will generate a password hash and its salt, both
// base64 encoded.
func HashPassword(password string) (hash string, salt string, err error) {
	if password == "" {
		return "", "", ErrNoEmptyString
	}

	rawSalt := make([]byte, saltSize)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", errors.Wrap(err, errors.CategoryInternal, "failed to generate password salt")
	}

	salt = base64.StdEncoding.EncodeToString(rawSalt)
	hash = deriveHash(password, salt)

	return hash, salt, nil
}

// VerifyPassword will validate the given cleartext password against a
// stored hash and salt. It returns false, never an error, on empty or
// undecodable inputs.
func VerifyPassword(password, storedHash, storedSalt string) bool {
	if password == "" || storedHash == "" || storedSalt == "" {
		return false
	}

	computed := deriveHash(password, storedSalt)

	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// deriveHash keys PBKDF2 with the base64 form of the salt, matching
// what stored hashes were derived from.
func deriveHash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, hashKeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}
