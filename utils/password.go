package utils

import "golang.org/x/crypto/bcrypt"

// HashAccessKey returns the bcrypt hash stored in ACCESS_KEY_HASH.
func HashAccessKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAccessKey compares a bcrypt hash with a plaintext access key.
func CheckAccessKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
