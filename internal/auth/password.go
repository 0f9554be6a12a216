package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is used when configuration leaves the cost unset.
const DefaultBcryptCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password with the given bcrypt cost.
// Costs below the bcrypt minimum fall back to DefaultBcryptCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
