package romalloc

import (
	"fmt"

	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/content"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BuildStatsString returns a json document describing the region set and the packed content.
// When detailed is true, each region also lists every placement and free span within it, along with
// the slots sharing each placement.
func (a *Allocator) BuildStatsString(detailed bool) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.ensurePacked()

	writer := jwriter.NewWriter()
	objState := writer.Object()

	stats := a.detailedStatistics()

	totalObj := objState.Name("Total").Object()
	printDetailedStatistics(&totalObj, &stats)
	totalObj.Name("OutOfRoom").Bool(a.packed.outOfRoom)
	totalObj.End()

	regionsObj := objState.Name("Regions").Object()
	for regionIndex := range a.packed.regions {
		region := &a.packed.regions[regionIndex]

		regionObj := regionsObj.Name(fmt.Sprintf("%06X", uint32(region.rng.Start()))).Object()
		regionObj.Name("Range").String(region.rng.String())
		region.metadata.BlockJsonData(regionObj)

		if detailed {
			a.printPlacements(region, regionObj)
		}

		regionObj.End()
	}
	regionsObj.End()

	unplacedObj := objState.Name("Unplaced").Object()
	unplacedObj.Name("Bytes").Int(len(a.packed.unplaced))
	unplacedObj.Name("Blocks").Int(len(a.packed.unplacedBlocks))
	if detailed {
		printSlots(unplacedObj, "Slots", a.packed.unplacedBlocks)
	}
	unplacedObj.End()

	objState.End()

	return string(writer.Bytes())
}

func printDetailedStatistics(json *jwriter.ObjectState, stats *spaceutils.DetailedStatistics) {
	json.Name("RegionCount").Int(stats.RegionCount)
	json.Name("RegionBytes").Int(stats.RegionBytes)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)
	json.Name("UnusedRangeCount").Int(stats.UnusedRangeCount)

	if stats.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}

	if stats.UnusedRangeCount > 0 {
		json.Name("UnusedRangeSizeMin").Int(stats.UnusedRangeSizeMin)
		json.Name("UnusedRangeSizeMax").Int(stats.UnusedRangeSizeMax)
	}
}

func (a *Allocator) printPlacements(region *packedRegion, json jwriter.ObjectState) {
	arrayState := json.Name("Suballocations").Array()
	defer arrayState.End()

	a.visitPlacements(region, func(offset int, size int, block content.Block, free bool) {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(offset)
		obj.Name("Address").String(fmt.Sprintf("%06X", uint32(region.rng.Start())+uint32(offset)))
		obj.Name("Size").Int(size)

		if free {
			obj.Name("Type").String("FREE")
			return
		}

		obj.Name("Type").String("CONTENT")
		slotsArray := obj.Name("Slots").Array()
		for _, slot := range block.Slots {
			slotsArray.String(string(slot))
		}
		slotsArray.End()
	})
}

func printSlots(json jwriter.ObjectState, name string, blocks []content.Block) {
	var slots []content.SlotID
	for _, block := range blocks {
		slots = append(slots, block.Slots...)
	}

	arrayState := json.Name(name).Array()
	for _, slot := range sortedSlots(slots) {
		arrayState.String(string(slot))
	}
	arrayState.End()
}
