package loader

import (
	"encoding/binary"
	"math"

	"luavm/internal/errors"
)

// reader is a cursor over an in-memory binary chunk, providing the
// little-endian primitive reads the Lua 5.3 dump format is built from.
// Grounded on the hand-rolled byte-slicing style of a NES cartridge
// parser in the example pack (no library in the pack parses bespoke
// tagged binary formats, so this is written from scratch the same way).
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, errors.NewLoadError("truncated chunk: need %d bytes at offset %d, have %d", n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) int32() (int32, error) {
	u, err := r.uint32()
	return int32(u), err
}

func (r *reader) int64() (int64, error) {
	u, err := r.uint64()
	return int64(u), err
}

func (r *reader) float64() (float64, error) {
	u, err := r.uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// string implements spec §6.2's length-prefixed string encoding: a
// leading size byte, where 0 means nil/absent, 0xFF means "read an
// 8-byte size next", and otherwise the byte itself is size with the
// actual content length being size-1.
func (r *reader) string() (string, error) {
	b, err := r.byte()
	if err != nil {
		return "", err
	}
	size := uint64(b)
	if b == 0xFF {
		size, err = r.uint64()
		if err != nil {
			return "", err
		}
	}
	if size == 0 {
		return "", nil
	}
	data, err := r.bytes(int(size - 1))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
