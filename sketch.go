package hyperloglog

import "encoding"

// Sketch is a streaming cardinality estimator: values or their hashes
// go in, a distinct-count estimate comes out. Code that aggregates many
// estimators can hold Sketch values without caring which kind they are;
// HyperLogLog.Merge accepts Sketch operands for the same reason and
// rejects foreign kinds at runtime.
type Sketch interface {
	// Insert folds a raw value into the sketch, hashing it internally,
	// and reports whether the sketch changed.
	Insert(v []byte) bool

	// InsertHash32 folds a pre-hashed 32-bit value into the sketch.
	InsertHash32(x uint32) bool

	// InsertHash64 folds a pre-hashed 64-bit value into the sketch.
	InsertHash64(x uint64) bool

	// Count estimates the number of distinct values inserted so far.
	Count() uint64

	// SizeInBytes is the packed register footprint. Sketches merge
	// only when their sizes match.
	SizeInBytes() int

	encoding.BinaryMarshaler
}

var _ Sketch = (*HyperLogLog)(nil)
