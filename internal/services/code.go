package services

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// ConfirmationCodeLength is the number of digits in a confirmation code.
const ConfirmationCodeLength = 6

const codeDigits = "0123456789"

// IntSource yields uniform integers in [0, n).
type IntSource interface {
	Intn(n int) int
}

// CryptoSource reads from crypto/rand.
type CryptoSource struct{}

func (CryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return int(v.Int64())
}

// GenerateConfirmationCode returns length digits drawn from src.
// Codes are not unique across users.
func GenerateConfirmationCode(length int, src IntSource) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(codeDigits[src.Intn(len(codeDigits))])
	}
	return b.String()
}
