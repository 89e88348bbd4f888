package hyperloglog

import (
	"math"

	"github.com/pkg/errors"
	"github.com/twmb/murmur3"
)

// MaxPrecision is the largest supported precision. Above 30 the
// register count no longer fits a signed 32-bit integer, which the
// wire format relies on.
const MaxPrecision = 30

// HyperLogLog estimates the number of distinct values inserted into it
// using 2^precision six-bit registers. The zero value is not usable;
// construct sketches with New, NewForRSD or a Builder.
type HyperLogLog struct {
	regs    *Registers
	alphaMM float64
	m       uint32
	p       uint8
}

// New returns an empty sketch with 2^precision registers. Precision
// trades memory for accuracy: each extra bit doubles the register
// count and shrinks the typical relative error, 1.04/sqrt(2^precision),
// by a factor of sqrt(2).
func New(precision uint8) (*HyperLogLog, error) {
	if precision > MaxPrecision {
		return nil, errors.Wrapf(ErrInvalidPrecision, "got %d", precision)
	}
	return newWithRegisters(precision, NewRegisters(uint32(1)<<precision))
}

// NewForRSD returns an empty sketch sized for the requested relative
// standard deviation. Memory grows quadratically as rsd shrinks, so
// rsd 0.01 already takes 2^13 registers.
func NewForRSD(rsd float64) (*HyperLogLog, error) {
	p, err := precisionForRSD(rsd)
	if err != nil {
		return nil, err
	}
	return New(p)
}

// newWithRegisters wraps regs, which must hold 2^precision registers,
// in a sketch.
func newWithRegisters(precision uint8, regs *Registers) (*HyperLogLog, error) {
	if precision > MaxPrecision {
		return nil, errors.Wrapf(ErrInvalidPrecision, "got %d", precision)
	}
	m := uint32(1) << precision

	// Bias correction from the HyperLogLog paper, folded together with
	// the m^2 factor because the estimate only ever uses the product.
	fm := float64(m)
	var alphaMM float64
	switch precision {
	case 4:
		alphaMM = 0.673 * fm * fm
	case 5:
		alphaMM = 0.697 * fm * fm
	case 6:
		alphaMM = 0.709 * fm * fm
	default:
		alphaMM = (0.7213 / (1 + 1.079/fm)) * fm * fm
	}

	return &HyperLogLog{
		regs:    regs,
		alphaMM: alphaMM,
		m:       m,
		p:       precision,
	}, nil
}

// precisionForRSD derives the precision whose typical relative error
// stays under rsd.
func precisionForRSD(rsd float64) (uint8, error) {
	if rsd <= 0 {
		return 0, errors.Wrapf(ErrInvalidPrecision,
			"relative standard deviation %v is not positive", rsd)
	}
	p := math.Floor(math.Log2((1.106 / rsd) * (1.106 / rsd)))
	if p < 0 || p > MaxPrecision {
		return 0, errors.Wrapf(ErrInvalidPrecision,
			"relative standard deviation %v needs %.0f index bits", rsd, p)
	}
	return uint8(p), nil
}

// InsertHash64 folds a pre-hashed 64-bit value into the sketch and
// reports whether any register changed. The hash must be uniformly
// distributed for the estimate to mean anything.
func (h *HyperLogLog) InsertHash64(x uint64) bool {
	return h.regs.UpdateIfGreater(bucket64(x, h.p), rank64(x, h.p))
}

// InsertHash32 is InsertHash64 for 32-bit hashes.
func (h *HyperLogLog) InsertHash32(x uint32) bool {
	return h.regs.UpdateIfGreater(bucket32(x, h.p), rank32(x, h.p))
}

// Insert hashes v with murmur3 and folds it into the sketch. A true
// result means v had not been inserted before, up to hash collisions;
// false is only a hint, since distinct values can leave the registers
// unchanged.
func (h *HyperLogLog) Insert(v []byte) bool {
	return h.InsertHash64(murmur3.Sum64(v))
}

// InsertString is Insert for strings, avoiding a copy.
func (h *HyperLogLog) InsertString(s string) bool {
	return h.InsertHash64(murmur3.StringSum64(s))
}

// SeenHash64 reports whether a value hashing to x may already have been
// inserted. False positives are routine, since any value of equal or
// higher rank in the same register answers true, but an inserted hash
// is never reported unseen.
func (h *HyperLogLog) SeenHash64(x uint64) bool {
	return h.regs.Get(bucket64(x, h.p)) >= rank64(x, h.p)
}

// SeenHash32 is SeenHash64 for 32-bit hashes.
func (h *HyperLogLog) SeenHash32(x uint32) bool {
	return h.regs.Get(bucket32(x, h.p)) >= rank32(x, h.p)
}

// Count returns the estimated number of distinct values inserted so
// far. Below 2.5*2^precision the raw estimate is replaced by linear
// counting over the still-zero registers, which removes the algorithm's
// low-cardinality bias; when every register is occupied the raw
// estimate is used no matter how small it is. No correction is applied
// at the top of the range.
func (h *HyperLogLog) Count() uint64 {
	var sum float64
	var zeros uint32
	for i := uint32(0); i < h.m; i++ {
		v := h.regs.Get(i)
		sum += 1 / float64(uint64(1)<<v)
		if v == 0 {
			zeros++
		}
	}

	fm := float64(h.m)
	est := h.alphaMM / sum
	if est <= 2.5*fm && zeros != 0 {
		return uint64(math.Round(fm * math.Log(fm/float64(zeros))))
	}
	return uint64(math.Round(est))
}

// AddAll folds other's registers into h, after which h estimates the
// union of both input streams. It fails with ErrIncompatibleSketch,
// leaving h unchanged, when the register sizes differ.
func (h *HyperLogLog) AddAll(other *HyperLogLog) error {
	if other.SizeInBytes() != h.SizeInBytes() {
		return errors.Wrapf(ErrIncompatibleSketch,
			"cannot merge sketches of %d and %d bytes",
			h.SizeInBytes(), other.SizeInBytes())
	}
	return h.regs.Merge(other.regs)
}

// Merge returns a new sketch estimating the union of h and every
// operand, leaving all inputs unchanged. Operands are validated up
// front: any operand that is not a *HyperLogLog, or whose register
// size differs from h's, fails the whole merge with
// ErrIncompatibleSketch before anything is built. Merging is
// commutative, associative and idempotent.
func (h *HyperLogLog) Merge(others ...Sketch) (*HyperLogLog, error) {
	hlls := make([]*HyperLogLog, 0, len(others))
	for _, other := range others {
		o, ok := other.(*HyperLogLog)
		if !ok {
			return nil, errors.Wrapf(ErrIncompatibleSketch,
				"cannot merge %T", other)
		}
		if o.SizeInBytes() != h.SizeInBytes() {
			return nil, errors.Wrapf(ErrIncompatibleSketch,
				"cannot merge sketches of %d and %d bytes",
				h.SizeInBytes(), o.SizeInBytes())
		}
		hlls = append(hlls, o)
	}

	merged := h.Clone()
	for _, o := range hlls {
		if err := merged.AddAll(o); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// Clone returns an independent deep copy of h.
func (h *HyperLogLog) Clone() *HyperLogLog {
	return &HyperLogLog{
		regs:    h.regs.Clone(),
		alphaMM: h.alphaMM,
		m:       h.m,
		p:       h.p,
	}
}

// Clear resets h to its initial empty state.
func (h *HyperLogLog) Clear() {
	h.regs = NewRegisters(h.m)
}

// SizeInBytes returns the packed byte length of the register array. It
// depends only on the precision; two sketches can merge exactly when
// their sizes match.
func (h *HyperLogLog) SizeInBytes() int {
	return RegistersSize(h.m)
}

// Precision returns the number of hash bits used for register
// selection.
func (h *HyperLogLog) Precision() uint8 {
	return h.p
}
