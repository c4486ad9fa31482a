package rand

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateString generates a cryptographically-secure, URL-safe value from n
// random bytes. If the value is unable to be generated an error is returned.
func GenerateString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

const alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyz"

// maxUnbiased is the largest multiple of len(alphanumeric) a byte can hold.
// Bytes at or above it are discarded so every character is equally likely.
const maxUnbiased = 256 - 256%len(alphanumeric)

// GenerateAlphanumeric generates n random lower-case alphanumeric characters,
// suitable for use in file names.
func GenerateAlphanumeric(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			if int(c) >= maxUnbiased {
				continue
			}
			out = append(out, alphanumeric[int(c)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
