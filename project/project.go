package project

import (
	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/formats"
	"github.com/impresaria/romspace/romalloc"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"github.com/impresaria/romspace/spaceutils/relocate"
	"golang.org/x/exp/slog"
)

// Version is written to every saved project
const Version = "1"

// Slot is one slot's content as saved in a project
type Slot struct {
	ID   content.SlotID
	Data []byte

	// Origin is the address the content was read from in the source image. It is only meaningful
	// when HasOrigin is true.
	Origin    addr.Address
	HasOrigin bool
}

// Project is the saveable state of an editing session: the regions that may be rewritten, and
// the content of every slot
type Project struct {
	Version    string
	SourceFile string
	Format     string
	Regions    []addr.Range
	Slots      []Slot
}

// Capture snapshots an allocator's regions and content into a Project. origins records the address
// each slot's content came from in the source image and may be nil.
func Capture(format string, alloc *romalloc.Allocator, origins map[content.SlotID]addr.Address) (*Project, error) {
	if _, err := formats.Lookup(format); err != nil {
		return nil, err
	}

	project := &Project{
		Version: Version,
		Format:  format,
		Regions: alloc.Regions(),
	}

	for _, slot := range alloc.Slots() {
		data, ok := alloc.SlotContent(slot)
		if !ok {
			continue
		}

		origin, hasOrigin := origins[slot]
		project.Slots = append(project.Slots, Slot{
			ID:        slot,
			Data:      data,
			Origin:    origin,
			HasOrigin: hasOrigin,
		})
	}

	return project, nil
}

// Restore creates an allocator for the project's format and loads the project's regions and
// content into it
func (p *Project) Restore(logger *slog.Logger, flags romalloc.CreateFlags) (*romalloc.Allocator, error) {
	format, err := formats.Lookup(p.Format)
	if err != nil {
		return nil, err
	}

	alloc, err := romalloc.New(logger, format.CreateOptions(flags))
	if err != nil {
		return nil, errors.Wrapf(err, "creating allocator for format %q", p.Format)
	}

	alloc.ClaimMany(p.Regions)
	for _, slot := range p.Slots {
		data := slot.Data
		if data == nil {
			data = []byte{}
		}
		alloc.SetSlotContent(slot.ID, data)
	}

	return alloc, nil
}

// Origins returns the original address of every slot that has one
func (p *Project) Origins() map[content.SlotID]addr.Address {
	origins := make(map[content.SlotID]addr.Address)
	for _, slot := range p.Slots {
		if slot.HasOrigin {
			origins[slot.ID] = slot.Origin
		}
	}

	return origins
}

// Plan lists the slots whose packed address differs from their original address
func (p *Project) Plan(alloc *romalloc.Allocator) []relocate.Move {
	return relocate.CollectMoves(p.Origins(), alloc)
}
