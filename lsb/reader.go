package lsb

import (
	"io"
	"io/ioutil"
)

// Reader yields the text hidden in a carrier one byte at a time. It stops at
// the terminator or when fewer than eight carrier bytes remain, whichever
// comes first. Bytes of 128 or above are skipped. A Reader cannot be rewound.
type Reader struct {
	carrier    []byte
	cursor     int
	done       bool
	terminated bool
}

// NewReader returns a Reader over carrier. The carrier is not modified.
func NewReader(carrier []byte) *Reader {
	return &Reader{
		carrier: carrier,
		cursor:  HeaderSkip,
	}
}

// Rebuild the next byte from the LSB of eight carrier bytes
func (r *Reader) next() (byte, bool) {
	if len(r.carrier)-r.cursor < bitsPerByte {
		return 0, false
	}

	var c [1]byte
	for pos := 0; pos < bitsPerByte; pos++ {
		SetBit(c[:], pos, GetBit(r.carrier[r.cursor+pos:], 0))
	}
	r.cursor += bitsPerByte

	return c[0], true
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	for !r.done {
		c, ok := r.next()
		switch {
		case !ok:
			r.done = true
		case c == Terminator:
			r.done, r.terminated = true, true
		case c < 0x80:
			return c, nil
		}
	}
	return 0, io.EOF
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	for ; n < len(p); n++ {
		if p[n], err = r.ReadByte(); err != nil {
			if n > 0 {
				err = nil
			}
			return
		}
	}
	return
}

// Terminated reports whether the Reader stopped because it found the
// terminator rather than running out of carrier.
func (r *Reader) Terminated() bool {
	return r.terminated
}

// Decode returns all of the text hidden in carrier.
func Decode(carrier []byte) []byte {
	// Reader only ever returns io.EOF, which ReadAll does not report
	b, _ := ioutil.ReadAll(NewReader(carrier))
	return b
}
