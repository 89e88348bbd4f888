package hyperloglog

import "math/bits"

// bucket32 returns the register index addressed by the top p bits of x.
// Shifting by the full word width is defined in Go, so p == 0 sends
// everything to register 0.
func bucket32(x uint32, p uint8) uint32 {
	return x >> (32 - p)
}

// bucket64 is bucket32 for 64-bit hashes.
func bucket64(x uint64, p uint8) uint32 {
	return uint32(x >> (64 - p))
}

// rank32 returns the position, starting at 1, of the leftmost one bit
// among the hash bits left over after bucket selection. The sentinel
// ORed in below caps the result when those bits are all zero, so a
// rank never exceeds 32-p+1 and always fits a 6-bit register.
func rank32(x uint32, p uint8) uint8 {
	return uint8(bits.LeadingZeros32(x<<p|sentinel32(p))) + 1
}

// rank64 is rank32 for 64-bit hashes; ranks are bounded by 64-p+1.
func rank64(x uint64, p uint8) uint8 {
	return uint8(bits.LeadingZeros64(x<<p|sentinel64(p))) + 1
}

// sentinel32 returns the guard bits ORed into the shifted hash before
// the leading-zero count: bit p-1 plus bit 0. The two fold into bit 1
// when p == 1. With p == 0 there is no spare position below the rank
// window, so the top bit is pinned instead and every rank degenerates
// to 1.
func sentinel32(p uint8) uint32 {
	if p == 0 {
		return 1<<31 + 1
	}
	return 1<<(p-1) + 1
}

// sentinel64 is sentinel32 for 64-bit hashes.
func sentinel64(p uint8) uint64 {
	if p == 0 {
		return 1<<63 + 1
	}
	return 1<<(p-1) + 1
}
