package romalloc

import (
	"github.com/impresaria/romspace/romalloc/internal/utils"
	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// Allocator tracks which regions of a bounded address space may hold content, which content each
// slot holds, and where that content lands once packed.
//
// Claimed regions never include a forbidden range or any address past the allocator's max value.
// Slots holding byte-identical content share a single placement. Packing is first-fit over regions
// in ascending address order with content blocks ordered by the smallest slot referencing them, so
// the same regions and content always pack the same way.
//
// Mutations only record the change and mark the packed result stale; the next query repacks.
type Allocator struct {
	mutex       utils.OptionalMutex
	logger      *slog.Logger
	createFlags CreateFlags

	maxValue  addr.Address
	forbidden []addr.Range

	regions []addr.Range
	store   *content.Store
	packed  packedResult
}

// MaxValue returns the highest address this allocator will claim
func (a *Allocator) MaxValue() addr.Address {
	return a.maxValue
}

// Forbidden returns a copy of the ranges this allocator will never claim
func (a *Allocator) Forbidden() []addr.Range {
	return slices.Clone(a.forbidden)
}

// Claim adds a range to the set of regions that can hold content. Portions of the range that are
// forbidden or past the max value are dropped, and the range is merged with any region it overlaps
// or touches.
func (a *Allocator) Claim(r addr.Range) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.crunch([]addr.Range{r})
}

// ClaimSpan claims the addresses from start through end, inclusive
func (a *Allocator) ClaimSpan(start, end addr.Address) {
	a.Claim(addr.NewRange(start, end))
}

// ClaimLength claims length addresses beginning at start
func (a *Allocator) ClaimLength(start addr.Address, length int) {
	a.Claim(addr.RangeOf(start, length))
}

// ClaimMany claims several ranges at once
func (a *Allocator) ClaimMany(ranges []addr.Range) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.crunch(ranges)
}

// Release removes a range from the set of regions that can hold content. Regions inside the range
// disappear and regions partially covered by it shrink or split in two.
func (a *Allocator) Release(r addr.Range) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.release(r)
}

// ReleaseSpan releases the addresses from start through end, inclusive
func (a *Allocator) ReleaseSpan(start, end addr.Address) {
	a.Release(addr.NewRange(start, end))
}

// ReleaseLength releases length addresses beginning at start
func (a *Allocator) ReleaseLength(start addr.Address, length int) {
	a.Release(addr.RangeOf(start, length))
}

// Regions returns a copy of the claimed regions in ascending order
func (a *Allocator) Regions() []addr.Range {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return slices.Clone(a.regions)
}

// SetSlotContent records data as the content of slot, replacing anything it held before. Slots
// holding identical bytes are packed once and share an address. A nil data removes the slot.
func (a *Allocator) SetSlotContent(slot content.SlotID, data []byte) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.store.Set(slot, data)
	a.invalidate()
}

// RemoveSlot removes slot and its content. Content no longer held by any slot stops taking up space.
func (a *Allocator) RemoveSlot(slot content.SlotID) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.store.Remove(slot)
	a.invalidate()
}

// SlotContent returns a copy of the content held by slot
func (a *Allocator) SlotContent(slot content.SlotID) ([]byte, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.store.Get(slot)
}

// Slots returns every slot holding content, in ascending order
func (a *Allocator) Slots() []content.SlotID {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.store.Slots()
}

// SharedSlots returns every slot holding the same content as slot, including slot itself.
// It returns nil for unknown slots.
func (a *Allocator) SharedSlots(slot content.SlotID) []content.SlotID {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.store.SharedWith(slot)
}

// BlockCount returns the number of distinct content blocks across all slots
func (a *Allocator) BlockCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.store.BlockCount()
}

// Validate checks the allocator's internal invariants: claimed regions are sorted, separated by
// at least one unclaimed address, clear of forbidden ranges and within the max value, and the
// content store's indices agree.
func (a *Allocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.validate()
}

func (a *Allocator) validate() error {
	for index, region := range a.regions {
		if region.IsEmpty() {
			return errors.Errorf("region %d is empty", index)
		}

		if region.End() > a.maxValue {
			return errors.Errorf("region %s extends past the max value $%06X", region, uint32(a.maxValue))
		}

		for _, forbidden := range a.forbidden {
			if region.Intersects(forbidden) {
				return errors.Errorf("region %s intersects forbidden range %s", region, forbidden)
			}
		}

		if index == 0 {
			continue
		}

		previous := a.regions[index-1]
		if region.Start() <= previous.End() {
			return errors.Errorf("region %s overlaps or is out of order with region %s", region, previous)
		}
		if region.Start()-previous.End() < 2 {
			return errors.Errorf("region %s is adjacent to region %s and should have been merged", region, previous)
		}
	}

	return a.store.Validate()
}

func (a *Allocator) invalidate() {
	a.packed.dirty = true
}

// validateFunc lets internal code run validation while already holding the mutex
type validateFunc func() error

func (f validateFunc) Validate() error { return f() }

var _ spaceutils.Validatable = &Allocator{}
