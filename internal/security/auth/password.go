package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with a fresh random salt. Hashing
// the same password twice yields different stored values.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext candidate against a stored hash using
// the salt embedded in the hash. It returns false for any mismatch,
// including a malformed hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
