package hyperloglog

import "github.com/pkg/errors"

// Builder carries a validated precision so call sites can size and
// build sketches repeatedly without re-deriving parameters. The zero
// value builds precision-0 sketches; anything useful starts with
// NewBuilder or NewBuilderForRSD.
type Builder struct {
	p uint8
}

// NewBuilder returns a Builder producing sketches with 2^precision
// registers.
func NewBuilder(precision uint8) (Builder, error) {
	if precision > MaxPrecision {
		return Builder{}, errors.Wrapf(ErrInvalidPrecision, "got %d", precision)
	}
	return Builder{p: precision}, nil
}

// NewBuilderForRSD returns a Builder producing sketches sized for the
// requested relative standard deviation.
func NewBuilderForRSD(rsd float64) (Builder, error) {
	p, err := precisionForRSD(rsd)
	if err != nil {
		return Builder{}, err
	}
	return Builder{p: p}, nil
}

// Build returns a fresh empty sketch.
func (b Builder) Build() *HyperLogLog {
	h, _ := New(b.p) // precision was validated at construction
	return h
}

// SizeInBytes returns the exact MarshalBinary length of any sketch this
// Builder produces, without building one. Callers use it to size
// buffers and storage columns ahead of time.
func (b Builder) SizeInBytes() int {
	return headerSize + RegistersSize(uint32(1)<<b.p)
}

// BuildFromBytes reconstructs a sketch serialized with MarshalBinary.
func BuildFromBytes(data []byte) (*HyperLogLog, error) {
	h := new(HyperLogLog)
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return h, nil
}
