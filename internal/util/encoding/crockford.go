package encoding

import "strings"

const crockfordBase32Alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// EncodeCrockfordB32LC encodes a byte slice using Crockford's lowercase Base32
// alphabet, without padding.
//
//nolint:gosec
func EncodeCrockfordB32LC(input []byte) string {
	var (
		result strings.Builder
		bits   = 0
		accum  = 0
	)

	result.Grow((len(input)*8 + 4) / 5)

	for _, b := range input {
		accum = accum<<8 | int(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			result.WriteByte(crockfordBase32Alphabet[(accum>>bits)&0x1F])
		}
	}

	if bits > 0 {
		result.WriteByte(crockfordBase32Alphabet[(accum<<uint(5-bits))&0x1F])
	}

	return result.String()
}
