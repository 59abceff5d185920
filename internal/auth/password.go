package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword computes a salted bcrypt hash (cost 10). Called only at
// registration, the one place a password is ever set.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
