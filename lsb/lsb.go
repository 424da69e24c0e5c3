/*
Package lsb implements hiding text inside an uncompressed bitmap using the
least significant bit of each pixel data byte.

The first 54 bytes of the carrier are treated as an opaque header and are
never read or modified. Every byte after that holds one bit of hidden data in
its least significant bit. Each hidden byte is spread across eight
consecutive carrier bytes, least significant bit first, so bit 0 of the
character lands in the first carrier byte and bit 7 in the eighth.

The hidden text is followed by a single ASCII ETX (0x03) byte, encoded the
same way, which marks where the text ends. A carrier of n bytes can therefore
hold (n-54)/8 - 1 bytes of text.
*/
package lsb

import (
	"errors"
	"fmt"
)

const (
	// HeaderSkip is the number of leading carrier bytes left untouched
	HeaderSkip = 54

	// Terminator marks the end of the hidden text
	Terminator = 0x03

	bitsPerByte = 8
)

// ErrInsufficientCapacity is matched by any *CapacityError
var ErrInsufficientCapacity = errors.New("lsb: carrier is too small to hide data")

// CapacityError is returned by Encode when the carrier cannot hold the
// payload and its terminator.
type CapacityError struct {
	// Need is the number of encoding units required, including the terminator
	Need int
	// Have is the number of encoding units available in the carrier
	Have int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("lsb: carrier is too small to hide data; need %d bytes of capacity, have %d", e.Need, e.Have)
}

// Is reports whether target is ErrInsufficientCapacity.
func (e *CapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

// Capacity returns the number of encoding units, one per hidden byte
// including the terminator, that fit in a carrier of length n.
func Capacity(n int) int {
	if n <= HeaderSkip {
		return 0
	}
	return (n - HeaderSkip) / bitsPerByte
}

// GetBit returns bit i of p, where bit 0 is the least significant bit of
// p[0] and bit 8 is the least significant bit of p[1].
func GetBit(p []byte, i int) byte {
	return p[i/bitsPerByte] >> uint(i%bitsPerByte) & 1
}

// SetBit sets bit i of p, numbered as for GetBit, to the lowest bit of v.
func SetBit(p []byte, i int, v byte) {
	mask := byte(1) << uint(i%bitsPerByte)
	if v&1 == 1 {
		p[i/bitsPerByte] |= mask
	} else {
		p[i/bitsPerByte] &^= mask
	}
}
