package addr

import (
	"fmt"
	"math"
)

// Address is an offset within a 24-bit address space
type Address uint32

// MaxAddress is the highest address representable in a 24-bit space
const MaxAddress Address = 0xFFFFFF

// Range is an inclusive, contiguous span of addresses. Range is a value type: none of its methods
// modify the receiver, and every transformation produces new values. The zero value is Empty.
type Range struct {
	start Address
	end   Address
	valid bool
}

// Empty is the range with no addresses in it. Every range whose length would not be positive
// normalizes to Empty.
var Empty = Range{}

// NewRange creates the range covering start through end inclusive. If end is before start,
// Empty is returned.
func NewRange(start, end Address) Range {
	if end < start {
		return Empty
	}

	return Range{start: start, end: end, valid: true}
}

// RangeOf creates the range of length addresses beginning at start. A length of zero or less
// produces Empty. A length running past the top of Address ends the range at math.MaxUint32.
func RangeOf(start Address, length int) Range {
	if length <= 0 {
		return Empty
	}

	end := uint64(start) + uint64(length) - 1
	if end > math.MaxUint32 {
		end = math.MaxUint32
	}

	return NewRange(start, Address(end))
}

// Start returns the first address in the range. It is zero for Empty.
func (r Range) Start() Address { return r.start }

// End returns the last address in the range. It is zero for Empty.
func (r Range) End() Address { return r.end }

// IsEmpty returns true if the range contains no addresses
func (r Range) IsEmpty() bool { return !r.valid }

// Length returns the number of addresses in the range
func (r Range) Length() int {
	if !r.valid {
		return 0
	}

	return int(r.end-r.start) + 1
}

// Contains returns true if a falls within the range
func (r Range) Contains(a Address) bool {
	return r.valid && r.start <= a && a <= r.end
}

// Intersects returns true if any address belongs to both ranges
func (r Range) Intersects(other Range) bool {
	if !r.valid || !other.valid {
		return false
	}

	return r.Contains(other.start) || r.Contains(other.end) ||
		other.Contains(r.start) || other.Contains(r.end)
}

// Intersect returns the span of addresses that belong to both ranges, or Empty
func (r Range) Intersect(other Range) Range {
	if !r.Intersects(other) {
		return Empty
	}

	start, end := r.start, r.end
	if other.start > start {
		start = other.start
	}
	if other.end < end {
		end = other.end
	}

	return NewRange(start, end)
}

// Merge combines two ranges that overlap or are separated by a gap of at most one address
// into a single range. Ranges that are farther apart are returned unchanged, in the order
// r, other. Empty ranges are left out of the result.
func (r Range) Merge(other Range) []Range {
	switch {
	case !r.valid && !other.valid:
		return nil
	case !r.valid:
		return []Range{other}
	case !other.valid:
		return []Range{r}
	}

	first, second := r, other
	if second.start < first.start {
		first, second = second, first
	}

	// Compare before adding to avoid wrapping at the top of the address space
	if second.start > first.end && second.start-first.end > 1 {
		return []Range{r, other}
	}

	end := first.end
	if second.end > end {
		end = second.end
	}

	return []Range{NewRange(first.start, end)}
}

// Subtract removes every address in other from r and returns the fragments that remain, in
// ascending order. The result is empty if other covers r, is r itself if the two do not
// intersect, and otherwise holds one or two fragments.
func (r Range) Subtract(other Range) []Range {
	if !r.valid {
		return nil
	}

	if !r.Intersects(other) {
		return []Range{r}
	}

	var fragments []Range
	if r.start < other.start {
		fragments = append(fragments, NewRange(r.start, other.start-1))
	}
	if other.end < r.end {
		fragments = append(fragments, NewRange(other.end+1, r.end))
	}

	return fragments
}

func (r Range) String() string {
	if !r.valid {
		return "(( empty ))"
	}

	return fmt.Sprintf("(( %06X ~~ %06X ))", uint32(r.start), uint32(r.end))
}
