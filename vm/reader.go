package classvm

import (
	"encoding/binary"
	"fmt"
)

// reader wraps a byte buffer with an offset cursor. All reads advance
// the cursor; there is no recovery from underrun, the caller is
// expected to have supplied a well-formed file (§4.1).
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) require(n int) error {
	if r.pos+n > len(r.buf) {
		return fmt.Errorf("%w: unexpected end of class file at offset %d (need %d more bytes)", ErrParse, r.pos, n)
	}
	return nil
}

func (r *reader) u8() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// u16 reads two bytes in native (little-endian, on every platform this
// parser will run on) order. The wire format itself is always
// big-endian; this accessor exists only because the reference model
// calls it out as present-but-unused by the parser (§4.1).
func (r *reader) u16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u16be() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) s16be() (int16, error) {
	v, err := r.u16be()
	return int16(v), err
}

func (r *reader) u32be() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}
