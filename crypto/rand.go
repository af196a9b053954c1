package crypto

import (
	"crypto/rand"
)

// AlphanumericAlphabet is URL-safe and suitable for secrets and state values.
const AlphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// digitAlphabet is used for numeric one-time codes typed by users.
const digitAlphabet = "0123456789"

// RandomString returns a cryptographically secure random string of the given
// length drawn from alphabet. It panics on an empty alphabet or if the
// system's secure random source fails, both of which make the process
// unfit to serve authentication traffic anyway.
func RandomString(length int, alphabet string) string {
	if len(alphabet) == 0 {
		panic("crypto: RandomString called with empty alphabet")
	}

	out := make([]byte, length)
	buf := make([]byte, length)
	// Rejection sampling keeps the distribution uniform across the alphabet.
	// When the alphabet size divides 256 the limit is 256 and no byte is
	// rejected; a byte-typed limit would wrap to 0 and reject everything.
	limit := 256 - (256 % len(alphabet))
	i := 0
	for i < length {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto: secure random source failed: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out[i] = alphabet[int(b)%len(alphabet)]
			i++
			if i == length {
				break
			}
		}
	}
	return string(out)
}

// GenerateOtp returns a numeric one-time code of the given width, zero
// padding included.
func GenerateOtp(digits int) string {
	return RandomString(digits, digitAlphabet)
}
