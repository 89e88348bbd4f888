// Package hyperloglog implements the HyperLogLog algorithm for
// cardinality estimation over pre-hashed 32-bit or 64-bit values.
//
// A sketch holds 2^precision six-bit registers and estimates the number
// of distinct values inserted into it with a typical relative error of
// 1.04/sqrt(2^precision), regardless of how many values that is. The
// algorithm is described in:
//
// http://algo.inria.fr/flajolet/Publications/FlFuGaMe07.pdf
//
// Hashing stays outside the core. InsertHash32 and InsertHash64 take
// hashes the caller has already computed, so the same sketch type works
// with whatever hash function the surrounding system uses; Insert and
// InsertString are murmur3-backed conveniences for callers that do not
// care. The estimate is only as good as the hash is uniform.
//
// Sketches of equal precision merge losslessly: merging produces exactly
// the register state a single sketch would have reached ingesting both
// streams, so streams can be sharded across machines, sketched locally
// and folded together afterwards. Low cardinalities are corrected with
// linear counting over the still-empty registers; no correction is
// applied at the top of the range.
//
// Sketches are not safe for concurrent use. Either serialize access
// externally or give each writer its own sketch and Merge when the
// writers are done.
package hyperloglog
