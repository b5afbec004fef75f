package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a plain password with the configured cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashKey reduces a bcrypt hash to its first n alphanumeric characters.
// Registration folds this fragment into the synthesized placeholder email
// so the unique-email column is satisfied without a real address.
func HashKey(hash string, n int) string {
	out := make([]byte, 0, n)
	for i := 0; i < len(hash) && len(out) < n; i++ {
		c := hash[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}
