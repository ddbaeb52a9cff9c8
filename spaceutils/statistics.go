package spaceutils

import "math"

// Statistics totals the claimed regions and the content packed into them
type Statistics struct {
	// RegionCount is the number of claimed regions counted
	RegionCount int
	// AllocationCount is the number of content blocks placed in those regions
	AllocationCount int
	// RegionBytes is the combined size of the regions
	RegionBytes int
	// AllocationBytes is the combined size of the placed content
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.RegionCount = 0
	s.AllocationCount = 0
	s.RegionBytes = 0
	s.AllocationBytes = 0
}

// FreeBytes is the number of bytes across all counted regions that hold no content
func (s *Statistics) FreeBytes() int {
	return s.RegionBytes - s.AllocationBytes
}

// DetailedStatistics adds the size spread of placed content and of the free spans left behind it.
// Since regions fill from their start, each region has at most one free span, so
// UnusedRangeSizeMax is the largest free block open anywhere.
type DetailedStatistics struct {
	Statistics
	UnusedRangeCount   int
	AllocationSizeMin  int
	AllocationSizeMax  int
	UnusedRangeSizeMin int
	UnusedRangeSizeMax int
}

// Clear resets the statistics so the size minimums pick up the first value added
func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.UnusedRangeCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.UnusedRangeSizeMin = math.MaxInt
	s.UnusedRangeSizeMax = 0
}

func (s *DetailedStatistics) AddUnusedRange(size int) {
	s.UnusedRangeCount++

	if size < s.UnusedRangeSizeMin {
		s.UnusedRangeSizeMin = size
	}

	if size > s.UnusedRangeSizeMax {
		s.UnusedRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}
