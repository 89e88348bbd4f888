package hyperloglog

import "github.com/pkg/errors"

const (
	// registerWidth is the number of bits backing one register. Six
	// bits hold every rank either hash width can produce (see rank.go)
	// at three quarters of a byte per register.
	registerWidth = 6

	// registerMax is the largest value a register can hold.
	registerMax = 1<<registerWidth - 1
)

// Registers is a fixed-size array of 6-bit counters packed into a byte
// slice. Counter i occupies bits [6i, 6i+6) of the slice, low-order
// bits first, so a counter may straddle two adjacent bytes. Values only
// ever grow: the write path is UpdateIfGreater, which keeps the
// element-wise maximum of everything it has been offered.
//
// Registers is not safe for concurrent use.
type Registers struct {
	data  []byte
	count uint32
}

// RegistersSize returns the packed byte length of count registers. Two
// arrays with the same count always occupy the same number of bytes.
func RegistersSize(count uint32) int {
	return (int(count)*registerWidth + 7) / 8
}

// NewRegisters returns count zero-valued registers.
func NewRegisters(count uint32) *Registers {
	return &Registers{
		data:  make([]byte, RegistersSize(count)),
		count: count,
	}
}

// NewRegistersFromBytes reinterprets data, as produced by Bytes, as the
// packed form of count registers. The bytes are copied, not retained.
// It fails with ErrMalformedInput when the length does not match
// RegistersSize(count).
func NewRegistersFromBytes(count uint32, data []byte) (*Registers, error) {
	if len(data) != RegistersSize(count) {
		return nil, errors.Wrapf(ErrMalformedInput,
			"register data is %d bytes, want %d for %d registers",
			len(data), RegistersSize(count), count)
	}
	r := &Registers{
		data:  make([]byte, len(data)),
		count: count,
	}
	copy(r.data, data)
	return r, nil
}

// Get returns the value of register i. It assumes i is within range and
// may panic when it is not.
func (r *Registers) Get(i uint32) uint8 {
	bit := uint(i) * registerWidth
	idx, off := bit/8, bit%8
	w := uint16(r.data[idx])
	if off > 8-registerWidth {
		w |= uint16(r.data[idx+1]) << 8
	}
	return uint8(w>>off) & registerMax
}

// set stores v, which must fit registerWidth bits, in register i.
func (r *Registers) set(i uint32, v uint8) {
	bit := uint(i) * registerWidth
	idx, off := bit/8, bit%8
	w := uint16(r.data[idx])
	spill := off > 8-registerWidth
	if spill {
		w |= uint16(r.data[idx+1]) << 8
	}
	w = w&^(uint16(registerMax)<<off) | uint16(v)<<off
	r.data[idx] = byte(w)
	if spill {
		r.data[idx+1] = byte(w >> 8)
	}
}

// UpdateIfGreater raises register i to v when v exceeds the stored
// value, reporting whether the register changed. Values above the
// 6-bit maximum are clamped to it, so an overflowing rank saturates
// the register instead of wrapping.
func (r *Registers) UpdateIfGreater(i uint32, v uint8) bool {
	if v > registerMax {
		v = registerMax
	}
	if r.Get(i) >= v {
		return false
	}
	r.set(i, v)
	return true
}

// Merge folds other into r, leaving each register at the maximum of the
// two. It fails with ErrIncompatibleSize, changing nothing, when the
// register counts differ.
func (r *Registers) Merge(other *Registers) error {
	if other.count != r.count {
		return errors.Wrapf(ErrIncompatibleSize,
			"cannot merge %d registers into %d", other.count, r.count)
	}
	for i := uint32(0); i < r.count; i++ {
		r.UpdateIfGreater(i, other.Get(i))
	}
	return nil
}

// Bytes returns a copy of the packed register contents.
func (r *Registers) Bytes() []byte {
	b := make([]byte, len(r.data))
	copy(b, r.data)
	return b
}

// Clone returns an independent copy of r.
func (r *Registers) Clone() *Registers {
	return &Registers{
		data:  r.Bytes(),
		count: r.count,
	}
}
