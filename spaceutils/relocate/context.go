package relocate

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CollectMoves compares the address each slot's content was originally found at with the
// address it was packed to and returns one Move per slot that changed, ordered by slot.
// Slots without content in the placement are skipped, and unplaced slots are reported with
// Placed set to false.
func CollectMoves(origins map[content.SlotID]addr.Address, placement Placement) []Move {
	slots := maps.Keys(origins)
	slices.Sort(slots)

	var moves []Move
	for _, slot := range slots {
		data, ok := placement.SlotContent(slot)
		if !ok {
			continue
		}

		src := origins[slot]
		dst, placed := placement.AddressOf(slot)
		if placed && dst == src {
			continue
		}

		moves = append(moves, Move{
			Slot:   slot,
			Size:   len(data),
			Src:    src,
			Dst:    dst,
			Placed: placed,
		})
	}

	return moves
}

// Context applies a relocation plan by handing each move to its Handler
type Context struct {
	// Handler is called to complete each placed move
	Handler Handler
	// Stats accumulates across every call to Apply
	Stats Stats
}

// Apply calls the Handler for every placed move and tallies the results. Handler errors do not
// stop the run; they are combined and returned once every move has been offered.
func (c *Context) Apply(moves []Move) error {
	if c.Handler == nil {
		panic("attempted to apply relocations without a handler")
	}

	var pass Stats
	var allErrors error

	for _, move := range moves {
		if !move.Placed {
			pass.SlotsUnplaced++
			continue
		}

		operation, err := c.Handler.Move(move)
		if err != nil {
			allErrors = errors.CombineErrors(allErrors, errors.Wrapf(err, "relocating slot %q", move.Slot))
			continue
		}

		switch operation {
		case MoveCopy:
			pass.BytesMoved += move.Size
			pass.SlotsMoved++
		case MoveIgnore:
			pass.SlotsIgnored++
		default:
			panic(fmt.Sprintf("unexpected move operation: %s", operation))
		}
	}

	c.Stats.Add(pass)
	return allErrors
}
