package uniuri

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// StdLen gives about 95 bits of entropy with StdChars.
const StdLen = 16

// StdChars is the default alphabet.
const StdChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const byteRange = 256

// ErrCharset is returned for alphabets outside 2..256 characters.
var ErrCharset = errors.New("uniuri: charset must hold between 2 and 256 characters")

// New returns a StdLen string of StdChars.
func New() (string, error) {
	return NewLenChars(StdLen, StdChars)
}

// NewLenChars returns a random string of length characters drawn uniformly from chars.
// Bytes that would bias the modulo are discarded and read again.
func NewLenChars(length int, chars string) (string, error) {
	n := len(chars)
	if n < 2 || n > byteRange {
		return "", ErrCharset
	}

	if length <= 0 {
		return "", nil
	}

	limit := byteRange - byteRange%n
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("uniuri: read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
