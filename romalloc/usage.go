package romalloc

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"github.com/impresaria/romspace/spaceutils/metadata"
	"golang.org/x/exp/slices"
)

// UnplacedRegion stands in for a region start when asking about content that did not fit anywhere.
// It is outside the 24-bit address space, so it never collides with a real region.
const UnplacedRegion addr.Address = math.MaxUint32

// UsageSummary totals space usage across every region
type UsageSummary struct {
	// UsedBytes is the number of bytes of placed content, plus the unplaced bytes when out of room
	UsedBytes int
	// FreeBytes is the number of bytes left open across all regions
	FreeBytes int
	// LargestFreeBlock is the most free space left in any single region
	LargestFreeBlock int
	// UnplacedBytes is the number of content bytes that did not fit in any region
	UnplacedBytes int
	// OutOfRoom is true if any content did not fit
	OutOfRoom bool
	// RegionCount is the number of regions in the region set
	RegionCount int
}

func (s UsageSummary) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "$%X bytes used\n", s.UsedBytes)
	if s.OutOfRoom {
		sb.WriteString("**WARNING** Not enough space!\n")
		fmt.Fprintf(&sb, "Unplaced data: $%X bytes\n", s.UnplacedBytes)
	} else {
		fmt.Fprintf(&sb, "$%X bytes available\n", s.FreeBytes)
	}
	fmt.Fprintf(&sb, "largest free block open: $%X bytes", s.LargestFreeBlock)

	return sb.String()
}

// SpaceUsage returns how many bytes are used and free in the region beginning at regionStart.
// Passing UnplacedRegion returns the number of unplaced bytes and no free space. A start that
// does not begin any region returns spaceutils.ErrUnknownRegion.
func (a *Allocator) SpaceUsage(regionStart addr.Address) (used, free int, err error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()

	if regionStart == UnplacedRegion {
		return len(a.packed.unplaced), 0, nil
	}

	region, found := a.packed.findRegion(regionStart)
	if !found {
		return 0, 0, errors.Wrapf(spaceutils.ErrUnknownRegion, "$%06X", uint32(regionStart))
	}

	used = region.metadata.UsedSize()
	return used, region.rng.Length() - used, nil
}

// TotalUsageSummary returns space usage totalled across every region
func (a *Allocator) TotalUsageSummary() UsageSummary {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()

	stats := a.detailedStatistics()
	summary := UsageSummary{
		UsedBytes:        stats.AllocationBytes,
		FreeBytes:        stats.FreeBytes(),
		LargestFreeBlock: stats.UnusedRangeSizeMax,
		UnplacedBytes:    len(a.packed.unplaced),
		OutOfRoom:        a.packed.outOfRoom,
		RegionCount:      stats.RegionCount,
	}

	if summary.OutOfRoom {
		summary.UsedBytes += summary.UnplacedBytes
	}

	return summary
}

// AddressOf returns the address where the content of slot was placed. The boolean return is false
// if the slot is unknown or its content did not fit.
func (a *Allocator) AddressOf(slot content.SlotID) (addr.Address, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()

	return a.packed.slotAddress.Get(slot)
}

// FullDump returns a copy of the packed bytes of every region, keyed by region start. If any content
// did not fit, its concatenated bytes are included under UnplacedRegion, even when all of that
// content is empty.
func (a *Allocator) FullDump() map[addr.Address][]byte {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()

	dump := make(map[addr.Address][]byte, len(a.packed.regions)+1)
	for _, region := range a.packed.regions {
		dump[region.rng.Start()] = append([]byte{}, region.payload...)
	}

	if a.packed.outOfRoom {
		dump[UnplacedRegion] = append([]byte{}, a.packed.unplaced...)
	}

	return dump
}

// OutOfRoom returns true if any content did not fit in the claimed regions
func (a *Allocator) OutOfRoom() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()

	return a.packed.outOfRoom
}

// UnplacedSlots returns every slot whose content did not fit, in ascending order
func (a *Allocator) UnplacedSlots() []content.SlotID {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()

	var slots []content.SlotID
	for _, block := range a.packed.unplacedBlocks {
		slots = append(slots, block.Slots...)
	}

	return sortedSlots(slots)
}

// AddDetailedStatistics sums detailed statistics for every region into stats. The caller is
// responsible for clearing stats beforehand if needed.
func (a *Allocator) AddDetailedStatistics(stats *spaceutils.DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()
	a.addDetailedStatistics(stats)
}

func (a *Allocator) addDetailedStatistics(stats *spaceutils.DetailedStatistics) {
	for _, region := range a.packed.regions {
		region.metadata.AddDetailedStatistics(stats)
	}
}

func (a *Allocator) detailedStatistics() spaceutils.DetailedStatistics {
	var stats spaceutils.DetailedStatistics
	stats.Clear()
	a.addDetailedStatistics(&stats)

	return stats
}

func (a *Allocator) visitPlacements(region *packedRegion, visit func(offset int, size int, block content.Block, free bool)) {
	_ = region.metadata.VisitAllRegions(
		func(handle metadata.BlockAllocationHandle, offset int, size int, userData any, free bool) error {
			if free {
				visit(offset, size, content.Block{}, true)
				return nil
			}

			block, ok := userData.(content.Block)
			if !ok {
				panic(fmt.Sprintf("region %s holds an allocation at offset %d that is not a content block", region.rng, offset))
			}

			visit(offset, size, block, false)
			return nil
		})
}

func sortedSlots(slots []content.SlotID) []content.SlotID {
	slices.Sort(slots)
	return slots
}
