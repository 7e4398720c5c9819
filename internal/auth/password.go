package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptEncoder hashes and verifies passwords.
type BcryptEncoder struct {
	Cost int
}

func (e BcryptEncoder) Encode(plain string) (string, error) {
	cost := e.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (e BcryptEncoder) Matches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
