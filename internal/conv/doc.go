// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between Go's canonical 64-bit file position and the
// caller-chosen offset width, or between int and fixed-width types.
//
// Use cases:
//   - Narrowing true file positions into compact offset types (index build)
//   - Widening stored offsets back into seekable positions (record fetch)
//   - Validating untrusted counts read from snapshot headers
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
