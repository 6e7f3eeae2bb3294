package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/library-system/internal/core/domain"
)

// SaltedHashCost is the bcrypt work factor for every non-admin secret.
const SaltedHashCost = 10

// Digest returns the lowercase hex SHA-256 of password. This is the stored
// form of the administrator secret.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// SaltedHash returns a bcrypt hash of password at SaltedHashCost.
func SaltedHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), SaltedHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifySecret checks password against stored using exactly the given scheme.
// The two schemes are never tried as fallbacks for one another.
func VerifySecret(scheme domain.CredentialScheme, password, stored string) bool {
	switch scheme {
	case domain.SchemeDigest:
		return verifyDigest(password, stored)
	case domain.SchemeSaltedHash:
		return verifySaltedHash(password, stored)
	default:
		return false
	}
}

func verifyDigest(password, stored string) bool {
	computed := Digest(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}

func verifySaltedHash(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
