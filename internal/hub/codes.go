package hub

import (
	"crypto/rand"
	"math/big"
)

// codeAlphabet excludes glyphs that read ambiguously over voice or handwriting
// (I, O, 0). 33 characters, sampled independently per position.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789"

const codeLength = 6

// GenerateCode produces a human-shareable join code. Collision handling is
// the caller's job (regenerate and retry).
func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
