package romalloc

import (
	"context"
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"github.com/impresaria/romspace/spaceutils/metadata"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

type packedRegion struct {
	rng      addr.Range
	metadata *metadata.LinearRegionMetadata
	payload  []byte
}

type packedResult struct {
	dirty     bool
	outOfRoom bool

	slotAddress *swiss.Map[content.SlotID, addr.Address]
	regions     []packedRegion

	unplaced       []byte
	unplacedBlocks []content.Block
}

func (p *packedResult) findRegion(start addr.Address) (*packedRegion, bool) {
	index, found := slices.BinarySearchFunc(p.regions, start, func(region packedRegion, target addr.Address) int {
		switch {
		case region.rng.Start() < target:
			return -1
		case region.rng.Start() > target:
			return 1
		}
		return 0
	})
	if !found {
		return nil, false
	}

	return &p.regions[index], true
}

// ensurePacked repacks all content if anything has changed since the last pack
func (a *Allocator) ensurePacked() {
	if !a.packed.dirty {
		return
	}

	a.pack()
}

// pack places every content block first-fit into the regions in ascending address order. Blocks
// are offered in order of the smallest slot referencing them, so the result depends only on the
// region set and the content, never on the order in which either was built up.
func (a *Allocator) pack() {
	result := packedResult{
		slotAddress: swiss.NewMap[content.SlotID, addr.Address](42),
		regions:     make([]packedRegion, 0, len(a.regions)),
	}

	for _, region := range a.regions {
		md := metadata.NewLinearRegionMetadata()
		md.Init(region.Length())

		result.regions = append(result.regions, packedRegion{
			rng:      region,
			metadata: md,
			payload:  make([]byte, 0, region.Length()),
		})
	}

	blocks := a.store.Blocks()
	for _, block := range blocks {
		if !a.placeBlock(&result, block) {
			result.unplaced = append(result.unplaced, block.Data...)
			result.unplacedBlocks = append(result.unplacedBlocks, block)
			result.outOfRoom = true
		}
	}

	for _, region := range result.regions {
		spaceutils.DebugValidate(region.metadata)
	}

	a.packed = result

	if result.outOfRoom {
		a.logger.LogAttrs(context.Background(), slog.LevelWarn, "not enough free space to place all content",
			slog.Int("UnplacedBlocks", len(result.unplacedBlocks)),
			slog.Int("UnplacedBytes", len(result.unplaced)),
		)
	}

	a.logger.Debug("Allocator::pack",
		slog.Int("Regions", len(result.regions)),
		slog.Int("Blocks", len(blocks)),
		slog.Int("Slots", result.slotAddress.Count()),
	)
}

func (a *Allocator) placeBlock(result *packedResult, block content.Block) bool {
	for regionIndex := range result.regions {
		region := &result.regions[regionIndex]

		fits, request, err := region.metadata.CreateAllocationRequest(len(block.Data))
		if err != nil {
			panic(fmt.Sprintf("unexpected error creating allocation request for %d bytes: %+v", len(block.Data), err))
		}
		if !fits {
			continue
		}

		err = region.metadata.Alloc(request, block)
		if err != nil {
			panic(fmt.Sprintf("unexpected error committing allocation at offset %d: %+v", request.Offset, err))
		}

		region.payload = append(region.payload, block.Data...)

		blockAddress := region.rng.Start() + addr.Address(request.Offset)
		for _, slot := range block.Slots {
			result.slotAddress.Put(slot, blockAddress)
		}

		return true
	}

	return false
}
