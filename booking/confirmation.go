package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength   = 8

	// maxCodeAttempts bounds verify-and-regenerate before giving up.
	maxCodeAttempts = 5
)

// CodeGenerator produces confirmation codes.
type CodeGenerator interface {
	NewCode() (string, error)
}

// RandomCodes draws CodeLength symbols uniformly from CodeAlphabet.
// A nil Reader means crypto/rand.
type RandomCodes struct {
	Reader io.Reader
}

func (g RandomCodes) NewCode() (string, error) {
	r := g.Reader
	if r == nil {
		r = rand.Reader
	}

	// Bytes >= 252 are rejected so every symbol has probability 7/252.
	const limit = 256 - 256%len(CodeAlphabet)

	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength*2)
	for len(code) < CodeLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, CodeAlphabet[int(b)%len(CodeAlphabet)])
			if len(code) == CodeLength {
				break
			}
		}
	}
	return string(code), nil
}

// ValidCode reports whether s has the shape of a confirmation code.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// uniqueCode generates codes until one is unused in the store. The store's
// unique constraint still guards the insert.
func uniqueCode(ctx context.Context, gen CodeGenerator, store ReservationStore) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := gen.NewCode()
		if err != nil {
			return "", err
		}
		existing, err := store.GetReservationByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check confirmation code: %w", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: gave up after %d attempts", ErrDuplicateCode, maxCodeAttempts)
}
