// Package crypto provides the password hashing primitive behind the
// registration and login flows. Plaintext passwords never leave this
// package's call frames; only digests are stored.
package crypto

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a salted bcrypt digest of the password. The cost is
// bcrypt's default (10), enough to resist offline brute force.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored digest.
// The comparison is constant-time within bcrypt.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
