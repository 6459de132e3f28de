package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a secret such as a terminal pairing code
func HashPassword(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash compares a secret with its bcrypt hash
func CheckPasswordHash(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
