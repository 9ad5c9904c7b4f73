// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// ConfirmationCodeLength is the digit count of an emailed confirmation code.
const ConfirmationCodeLength = 6

// GenerateConfirmationCode produces a cryptographically random numeric code
// suitable for the email sign-in flow.
func GenerateConfirmationCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < ConfirmationCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate confirmation code: %w", err)
	}

	return fmt.Sprintf("%0*d", ConfirmationCodeLength, n), nil
}

// HashCode hashes a confirmation code with bcrypt before it is cached.
//
// Codes are short-lived but grant full account access, so they are never
// stored in plain text.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash confirmation code: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckCodeHash compares a plain confirmation code with its hashed version.
func CheckCodeHash(code, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(code))
	return err == nil
}
