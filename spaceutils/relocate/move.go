package relocate

import (
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
)

// MoveOperation is returned by a Handler to report what it did with a Move
type MoveOperation uint32

const (
	// MoveCopy indicates that the handler copied the slot's content to its new address
	MoveCopy MoveOperation = iota
	// MoveIgnore indicates that the handler chose not to relocate the slot
	MoveIgnore
)

var moveOperationMapping = map[MoveOperation]string{
	MoveCopy:   "MoveCopy",
	MoveIgnore: "MoveIgnore",
}

func (o MoveOperation) String() string {
	return moveOperationMapping[o]
}

// Move describes a slot whose packed address differs from the address its content was
// originally found at
type Move struct {
	Slot content.SlotID
	// Size is the length in bytes of the slot's content
	Size int
	// Src is the slot's original address
	Src addr.Address
	// Dst is the slot's packed address. It is only meaningful when Placed is true.
	Dst addr.Address
	// Placed is false when the slot's content did not fit anywhere
	Placed bool
}

// Handler is called once for every placed Move while applying a relocation plan
type Handler interface {
	Move(move Move) (MoveOperation, error)
}

// Placement is the view of a packed allocator that relocation planning needs
type Placement interface {
	AddressOf(slot content.SlotID) (addr.Address, bool)
	SlotContent(slot content.SlotID) ([]byte, bool)
}
