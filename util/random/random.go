// Package random provides crypto-backed random keys.
package random

import (
	"crypto/rand"
)

// Key returns n random bytes, suitable for signing cookies.
func Key(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return b
}
