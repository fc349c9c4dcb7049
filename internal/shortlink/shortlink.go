// Package shortlink maps recipe ids to compact base-36 tokens.
package shortlink

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidToken = errors.New("invalid short link token")

const base = 36

func Encode(id uint) string {
	return strconv.FormatUint(uint64(id), base)
}

// Decode accepts tokens in either case. Zero, empty and overflowing tokens
// are rejected.
func Decode(token string) (uint, error) {
	if token == "" || strings.HasPrefix(token, "-") || strings.HasPrefix(token, "+") {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(strings.ToLower(token), base, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
