package project

import (
	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/romalloc"
	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/addr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// BuildImage writes the packed content of every region into a copy of source. The image grows
// with zero padding if content lands past its end. Regions holding no content are left untouched.
// If any content did not fit, no image is built and spaceutils.ErrOutOfRoom is returned.
func BuildImage(source []byte, alloc *romalloc.Allocator) ([]byte, error) {
	if unplaced := alloc.UnplacedSlots(); len(unplaced) > 0 {
		return nil, errors.Wrapf(spaceutils.ErrOutOfRoom, "%d slots could not be placed, first is %q", len(unplaced), unplaced[0])
	}

	dump := alloc.FullDump()
	starts := maps.Keys(dump)
	slices.Sort(starts)

	image := slices.Clone(source)
	for _, start := range starts {
		if len(dump[start]) == 0 {
			continue
		}
		image = insertBytes(image, start, dump[start])
	}

	return image, nil
}

func insertBytes(image []byte, position addr.Address, data []byte) []byte {
	end := int(position) + len(data)
	if end > len(image) {
		image = append(image, make([]byte, end-len(image))...)
	}

	copy(image[position:], data)
	return image
}
