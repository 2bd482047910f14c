package auth

import "golang.org/x/crypto/bcrypt"

// Bcrypt hashes passwords with a fixed cost.
type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) Bcrypt {
	return Bcrypt{cost: cost}
}

func (b Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares in constant time; any error counts as a mismatch.
func (b Bcrypt) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
