package auth

import "golang.org/x/crypto/bcrypt"

// HashPrefix is common to every bcrypt variant we produce or accept
// ("$2a$", "$2b$", ...). The migration uses it to tell hashed passwords
// from legacy plaintext ones.
const HashPrefix = "$2"

// PasswordHasher turns passwords into salted one-way hashes and verifies
// them. Hashing is deliberately expensive; verification never fails loudly.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, storedHash string) bool
}

// BcryptHasher is the production PasswordHasher.
type BcryptHasher struct {
	// Cost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify treats every comparison error, including malformed stored hashes,
// as a plain mismatch. A corrupted hash must never take down a login flow.
func (h BcryptHasher) Verify(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
