package metadata

import "math"

type BlockAllocationHandle uint64

const (
	NoAllocation BlockAllocationHandle = math.MaxUint64
)

// Suballocation is a single placed item within a region
type Suballocation struct {
	Offset   int
	Size     int
	UserData any
}
