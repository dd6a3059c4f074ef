package conv

import (
	"fmt"
	"math"
)

// Unsigned is the set of unsigned integer types usable as file offsets.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// OverflowError reports a value that cannot be represented in the target type.
type OverflowError struct {
	Value uint64
	Type  string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("integer overflow: %d cannot be converted to %s", e.Value, e.Type)
}

// ToOffset narrows a 64-bit file position into the offset type O.
// It fails instead of truncating when pos exceeds the range of O.
func ToOffset[O Unsigned](pos int64) (O, error) {
	if pos < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to %s (negative)", pos, typeName[O]())
	}
	o := O(pos)
	if uint64(o) != uint64(pos) {
		return 0, &OverflowError{Value: uint64(pos), Type: typeName[O]()}
	}
	return o, nil
}

// FromOffset widens an offset back into a canonical 64-bit file position.
// Only uint64 offsets above math.MaxInt64 can fail.
func FromOffset[O Unsigned](off O) (int64, error) {
	if uint64(off) > math.MaxInt64 {
		return 0, &OverflowError{Value: uint64(off), Type: "int64"}
	}
	return int64(off), nil
}

func typeName[O Unsigned]() string {
	var zero O
	return fmt.Sprintf("%T", zero)
}

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	// On 64-bit systems, int can exceed uint32 max; on 32-bit, this is always false
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}
