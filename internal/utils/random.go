package utils

import (
	"crypto/rand"
	"math/big"
)

// RandomCode draws length symbols from alphabet using crypto/rand.
func RandomCode(alphabet string, length int) string {
	max := big.NewInt(int64(len(alphabet)))

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}

	return string(b)
}
