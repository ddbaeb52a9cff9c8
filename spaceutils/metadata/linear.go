package metadata

import (
	"github.com/impresaria/romspace/spaceutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
)

// LinearRegionMetadata tracks content placed within a single contiguous region of address space.
// Allocations are always placed directly after the last one, so the region fills from its start
// like a stack and the region's payload is the concatenation of its allocations in order.
//
// A region is filled once per pack and thrown away afterward, so allocations are never freed.
type LinearRegionMetadata struct {
	size           int
	sumFreeSize    int
	suballocations []Suballocation
}

// NewLinearRegionMetadata creates a new, uninitialized LinearRegionMetadata
func NewLinearRegionMetadata() *LinearRegionMetadata {
	return &LinearRegionMetadata{
		suballocations: []Suballocation{},
	}
}

// Init must be called before the metadata is used. size is the number of bytes in the region.
func (m *LinearRegionMetadata) Init(size int) {
	m.size = size
	m.sumFreeSize = size
}

// Size returns the size of the region in bytes
func (m *LinearRegionMetadata) Size() int { return m.size }

// SumFreeSize returns the number of bytes in the region not used by an allocation
func (m *LinearRegionMetadata) SumFreeSize() int {
	return m.sumFreeSize
}

// UsedSize returns the offset directly after the last allocation in the region, i.e. the
// region's fill cursor
func (m *LinearRegionMetadata) UsedSize() int {
	return m.size - m.sumFreeSize
}

// AllocationCount returns the number of allocations in the region
func (m *LinearRegionMetadata) AllocationCount() int {
	return len(m.suballocations)
}

// Validate performs internal consistency checks on the metadata
func (m *LinearRegionMetadata) Validate() error {
	var offset int
	for suballocIndex, suballoc := range m.suballocations {
		if suballoc.Offset != offset {
			return errors.Errorf("suballoc at index %d has offset %d, but the previous suballocation ended at %d", suballocIndex, suballoc.Offset, offset)
		}

		if suballoc.Size < 0 {
			return errors.Errorf("suballoc at index %d has negative size %d", suballocIndex, suballoc.Size)
		}

		if suballoc.UserData == nil {
			return errors.Errorf("suballoc at index %d has no user data", suballocIndex)
		}

		offset += suballoc.Size
	}

	if offset > m.size {
		return errors.Errorf("calculated a maximum offset of %d, but the metadata indicates a total size of %d, which is smaller", offset, m.size)
	}

	if m.sumFreeSize != m.size-offset {
		return errors.Errorf("the metadata's free size %d and the calculated used size %d don't add up to the metadata-reported size of %d", m.sumFreeSize, offset, m.size)
	}

	return nil
}

// VisitAllRegions will call the provided callback once for each allocation in offset order, and then
// once more for the free span after the last allocation if the region is not full
func (m *LinearRegionMetadata) VisitAllRegions(handleBlock func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error) error {
	for index, suballoc := range m.suballocations {
		err := handleBlock(BlockAllocationHandle(index+1), suballoc.Offset, suballoc.Size, suballoc.UserData, false)
		if err != nil {
			return err
		}
	}

	used := m.UsedSize()
	if used < m.size {
		return handleBlock(NoAllocation, used, m.size-used, nil, true)
	}

	return nil
}

// AddDetailedStatistics sums this region's allocation statistics into the statistics currently present
// in the provided spaceutils.DetailedStatistics object.
func (m *LinearRegionMetadata) AddDetailedStatistics(stats *spaceutils.DetailedStatistics) {
	stats.Statistics.RegionCount++
	stats.Statistics.RegionBytes += m.size

	_ = m.VisitAllRegions(
		func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error {
			if free {
				stats.AddUnusedRange(size)
			} else {
				stats.AddAllocation(size)
			}

			return nil
		})
}

// BlockJsonData populates a json object with information about this region
func (m *LinearRegionMetadata) BlockJsonData(json jwriter.ObjectState) {
	unusedRangeCount := 0
	if m.sumFreeSize > 0 {
		unusedRangeCount = 1
	}

	json.Name("TotalBytes").Int(m.size)
	json.Name("UnusedBytes").Int(m.sumFreeSize)
	json.Name("Allocations").Int(m.AllocationCount())
	json.Name("UnusedRanges").Int(unusedRangeCount)
}

// CreateAllocationRequest retrieves an AllocationRequest object placing allocSize bytes directly after
// the last allocation in the region. Zero-sized requests are permitted and always fit. The boolean
// return is false if the remaining space in the region is smaller than allocSize.
func (m *LinearRegionMetadata) CreateAllocationRequest(allocSize int) (bool, AllocationRequest, error) {
	if allocSize < 0 {
		return false, AllocationRequest{}, errors.Errorf("allocation size must not be negative, but was %d", allocSize)
	}
	spaceutils.DebugValidate(m)

	if m.sumFreeSize < allocSize {
		return false, AllocationRequest{}, nil
	}

	return true, AllocationRequest{
		BlockAllocationHandle: BlockAllocationHandle(len(m.suballocations) + 1),
		Offset:                m.UsedSize(),
		Size:                  allocSize,
	}, nil
}

// Alloc commits an AllocationRequest object, appending the allocation to the region. userData must
// not be nil.
func (m *LinearRegionMetadata) Alloc(req AllocationRequest, userData any) error {
	if userData == nil {
		return errors.New("allocations require non-nil user data")
	}

	if req.BlockAllocationHandle != BlockAllocationHandle(len(m.suballocations)+1) || req.Offset != m.UsedSize() {
		return errors.Errorf("allocation request at offset %d is stale: the region has changed since it was created", req.Offset)
	}

	if req.Size > m.sumFreeSize {
		return errors.Errorf("allocation of %d bytes at offset %d does not fit in a region of %d bytes", req.Size, req.Offset, m.size)
	}

	m.suballocations = append(m.suballocations, Suballocation{
		Offset:   req.Offset,
		Size:     req.Size,
		UserData: userData,
	})
	m.sumFreeSize -= req.Size

	return nil
}
