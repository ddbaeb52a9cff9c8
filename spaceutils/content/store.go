package content

import (
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// SlotID names one logical thing that needs an address, independent of the bytes it holds.
// SlotIDs are totally ordered by ordinary string comparison.
type SlotID string

// Block is a unique byte sequence along with every slot currently holding it
type Block struct {
	Data  []byte
	Slots []SlotID
}

// MinSlot is the smallest slot id referencing the block. It is the sort key used to place
// blocks deterministically.
func (b Block) MinSlot() SlotID {
	return b.Slots[0]
}

type blockEntry struct {
	data []byte
	// Kept sorted so the minimum slot and per-slot visits never depend on map order
	slots []SlotID
}

// Store is a deduplicating map from slot to content. Slots given byte-identical content share a
// single block, and a block is dropped as soon as no slot references it.
//
// Store is not safe for concurrent use.
type Store struct {
	slotContent   *swiss.Map[SlotID, string]
	contentBlocks *swiss.Map[string, *blockEntry]
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		slotContent:   swiss.NewMap[SlotID, string](42),
		contentBlocks: swiss.NewMap[string, *blockEntry](42),
	}
}

// Set records data as the content of slot, replacing any content the slot held before. A nil
// data removes the slot entirely. The store keeps its own copy of data.
func (s *Store) Set(slot SlotID, data []byte) {
	s.remove(slot)

	if data == nil {
		return
	}

	key := string(data)
	s.slotContent.Put(slot, key)

	entry, ok := s.contentBlocks.Get(key)
	if !ok {
		entry = &blockEntry{data: []byte(key)}
		s.contentBlocks.Put(key, entry)
	}

	index, _ := slices.BinarySearch(entry.slots, slot)
	entry.slots = slices.Insert(entry.slots, index, slot)
}

// Remove drops slot from the store. It returns false if the slot was not present.
func (s *Store) Remove(slot SlotID) bool {
	return s.remove(slot)
}

func (s *Store) remove(slot SlotID) bool {
	key, ok := s.slotContent.Get(slot)
	if !ok {
		return false
	}
	s.slotContent.Delete(slot)

	entry, ok := s.contentBlocks.Get(key)
	if !ok {
		panic("slot content refers to a block that is not in the store")
	}

	index, found := slices.BinarySearch(entry.slots, slot)
	if !found {
		panic("slot was missing from the block it refers to")
	}
	entry.slots = slices.Delete(entry.slots, index, index+1)

	if len(entry.slots) == 0 {
		s.contentBlocks.Delete(key)
	}

	return true
}

// Get returns a copy of the content held by slot
func (s *Store) Get(slot SlotID) ([]byte, bool) {
	key, ok := s.slotContent.Get(slot)
	if !ok {
		return nil, false
	}

	return []byte(key), true
}

// Has returns true if the slot holds content
func (s *Store) Has(slot SlotID) bool {
	return s.slotContent.Has(slot)
}

// SharedWith returns every slot holding the same content as slot, including slot itself, in
// ascending order. It returns nil for unknown slots.
func (s *Store) SharedWith(slot SlotID) []SlotID {
	key, ok := s.slotContent.Get(slot)
	if !ok {
		return nil
	}

	entry, _ := s.contentBlocks.Get(key)
	return slices.Clone(entry.slots)
}

// SlotCount returns the number of slots holding content
func (s *Store) SlotCount() int {
	return s.slotContent.Count()
}

// BlockCount returns the number of distinct content blocks
func (s *Store) BlockCount() int {
	return s.contentBlocks.Count()
}

// Slots returns every slot in the store in ascending order
func (s *Store) Slots() []SlotID {
	slots := make([]SlotID, 0, s.slotContent.Count())
	s.slotContent.Iter(func(slot SlotID, _ string) bool {
		slots = append(slots, slot)
		return false
	})

	slices.Sort(slots)
	return slots
}

// Blocks returns every distinct content block ordered by the smallest slot referencing it.
// The returned blocks alias the store's data and must not be modified.
func (s *Store) Blocks() []Block {
	blocks := make([]Block, 0, s.contentBlocks.Count())
	s.contentBlocks.Iter(func(_ string, entry *blockEntry) bool {
		blocks = append(blocks, Block{Data: entry.data, Slots: entry.slots})
		return false
	})

	slices.SortFunc(blocks, func(left, right Block) int {
		switch {
		case left.MinSlot() < right.MinSlot():
			return -1
		case left.MinSlot() > right.MinSlot():
			return 1
		}
		return 0
	})

	return blocks
}

// Validate checks that the forward and reverse indices agree with one another
func (s *Store) Validate() error {
	var err error
	referenced := 0

	s.contentBlocks.Iter(func(key string, entry *blockEntry) bool {
		if len(entry.slots) == 0 {
			err = errors.Errorf("a content block of %d bytes has no slots but was not collected", len(entry.data))
			return true
		}
		if !slices.IsSorted(entry.slots) {
			err = errors.Errorf("the slots for a content block of %d bytes are out of order", len(entry.data))
			return true
		}

		for _, slot := range entry.slots {
			slotKey, ok := s.slotContent.Get(slot)
			if !ok || slotKey != key {
				err = errors.Errorf("slot %q is listed in a content block it does not hold", slot)
				return true
			}
		}

		referenced += len(entry.slots)
		return false
	})
	if err != nil {
		return err
	}

	if referenced != s.slotContent.Count() {
		return errors.Errorf("%d slots hold content, but content blocks reference %d slots", s.slotContent.Count(), referenced)
	}

	return nil
}
