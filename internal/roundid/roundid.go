// Package roundid generates sortable identifiers for blackjack rounds.
//
// IDs are UUIDv7 values rendered as 26 characters of Crockford base32, so they
// sort by creation time and stay short enough for log lines.
package roundid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded round ID
const Length = 26

// Generator produces round IDs. The zero value uses crypto/rand.
type Generator struct {
	random io.Reader
}

// NewGenerator creates a generator reading its random bits from r.
// A nil reader falls back to crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{random: r}
}

// Generate creates a new round ID using crypto/rand
func Generate() string {
	return (&Generator{}).Generate()
}

// Generate creates a new round ID. It panics only if the random source fails,
// which for crypto/rand means the process cannot continue safely anyway.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g == nil || g.random == nil {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewV7FromReader(g.random)
	}
	if err != nil {
		panic("failed to generate round id: " + err.Error())
	}
	return encodeBase32(id)
}

// encodeBase32 encodes a 128-bit UUID as 26 base32 characters. The value is
// treated as 130 bits with two leading zero bits.
func encodeBase32(data uuid.UUID) string {
	var b strings.Builder
	b.Grow(Length)

	// Take 5 bits at a time starting at bit -2
	for i := 0; i < Length; i++ {
		bitOffset := i*5 - 2
		var value uint8
		for bit := 0; bit < 5; bit++ {
			pos := bitOffset + bit
			value <<= 1
			if pos < 0 {
				continue
			}
			if data[pos/8]&(0x80>>(pos%8)) != 0 {
				value |= 1
			}
		}
		b.WriteByte(alphabet[value])
	}

	return b.String()
}

// Validate checks if a round ID is well formed (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("round ID must be exactly %d characters, got %d", Length, len(id))
	}

	// The leading character only carries 3 bits
	if id[0] > '7' {
		return fmt.Errorf("round ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
