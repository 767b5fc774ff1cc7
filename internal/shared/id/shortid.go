// Package id generates Stripe-style prefixed identifiers for courses and techniques.
package id

import (
	"crypto/rand"
	"fmt"
)

// Base62 alphabet: 0-9, A-Z, a-z
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultLength is the length of the random part of a SID.
const DefaultLength = 12

// Prefixes for entity types.
const (
	PrefixCourse    = "crs"
	PrefixTechnique = "tec"
)

// maxUnbiased is the largest multiple of len(alphabet) that fits in a byte.
// Bytes at or above it are drawn again so every symbol is equally likely.
const maxUnbiased = 256 - 256%len(alphabet)

// Generate returns length random Base62 characters.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

func newSID(prefix string) (string, error) {
	s, err := Generate(DefaultLength)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

// NewCourseID generates a new course SID.
func NewCourseID() (string, error) {
	return newSID(PrefixCourse)
}

// NewTechniqueID generates a new technique SID.
func NewTechniqueID() (string, error) {
	return newSID(PrefixTechnique)
}
