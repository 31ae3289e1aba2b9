package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// NewID returns 160 bits of randomness as a lowercase base32 string.
func (g *RandomGenerator) NewID() (string, error) {
	var buf [20]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	return strings.ToLower(idEncoding.EncodeToString(buf[:])), nil
}
