package lsb

type encoder struct {
	carrier []byte
	cursor  int
}

// Spread each bit of p across the LSB of the next carrier bytes
func (e *encoder) embed(p []byte) {
	for i := 0; i < len(p)*bitsPerByte; i++ {
		SetBit(e.carrier[e.cursor:], 0, GetBit(p, i))
		e.cursor++
	}
}

// Encode hides payload in a copy of carrier and returns the copy. The payload
// is followed by the terminator. Only the least significant bits of the
// (len(payload)+1)*8 bytes after the header are changed and carrier itself is
// left untouched. If the carrier is too small a *CapacityError is returned.
func Encode(payload, carrier []byte) ([]byte, error) {
	if need, have := len(payload)+1, Capacity(len(carrier)); have < need {
		return nil, &CapacityError{Need: need, Have: have}
	}

	e := encoder{
		carrier: make([]byte, len(carrier)),
		cursor:  HeaderSkip,
	}
	copy(e.carrier, carrier)

	e.embed(payload)
	e.embed([]byte{Terminator})

	return e.carrier, nil
}
