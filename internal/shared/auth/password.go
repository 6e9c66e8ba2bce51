package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost matches the salt rounds of hashes already stored.
const passwordCost = 12

var decoyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("decoy-password"), passwordCost)
	return h
})

// HashPassword hashes a plain text password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. Only a malformed hash
// is an error; a mismatch is (false, nil).
func CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// BurnPasswordCheck spends one comparison's worth of time against a decoy
// hash, so an unknown email answers as slowly as a wrong password.
func BurnPasswordCheck(password string) {
	bcrypt.CompareHashAndPassword(decoyHash(), []byte(password))
}
