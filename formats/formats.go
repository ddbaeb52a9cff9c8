package formats

import (
	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/romalloc"
	"github.com/impresaria/romspace/spaceutils/addr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrUnknownFormat is returned when a format id is not in the format table
var ErrUnknownFormat = errors.New("unknown format")

// ErrMapModeMismatch is returned when an image's internal header does not declare any of the map
// modes its format expects
var ErrMapModeMismatch = errors.New("image map mode does not match format")

// headerMapModeOffsets are the file offsets of the map mode byte in an ExHiROM and a HiROM header
var headerMapModeOffsets = []int{0x40FFD5, 0xFFD5}

// Format describes the address layout of one family of images
type Format struct {
	ID          string
	DisplayName string

	// MaxValue is the highest file offset that can hold relocated content
	MaxValue addr.Address
	// Forbidden lists file offset ranges that can never hold relocated content, e.g. bank 0 and
	// the banks that mirror system RAM
	Forbidden []addr.Range
	// MapModes lists the header mapping mode bytes images of this format are expected to use
	MapModes []byte
}

// CreateOptions returns allocator options that enforce this format's layout
func (f Format) CreateOptions(flags romalloc.CreateFlags) romalloc.CreateOptions {
	return romalloc.CreateOptions{
		Flags:     flags,
		MaxValue:  f.MaxValue,
		Forbidden: slices.Clone(f.Forbidden),
	}
}

// CheckMapMode verifies that the internal header of image declares one of the format's map modes.
// Formats that list no map modes accept any image.
func (f Format) CheckMapMode(image []byte) error {
	if len(f.MapModes) == 0 {
		return nil
	}

	var declared []byte
	for _, offset := range headerMapModeOffsets {
		if offset >= len(image) {
			continue
		}

		mode := image[offset]
		if slices.Contains(f.MapModes, mode) {
			return nil
		}
		declared = append(declared, mode)
	}

	if len(declared) == 0 {
		return errors.Wrapf(ErrMapModeMismatch, "image of $%X bytes is too small to hold a header", len(image))
	}

	return errors.Wrapf(ErrMapModeMismatch, "%s expects map mode % X, header declares % X", f.DisplayName, f.MapModes, declared)
}

var formatTable = map[string]Format{
	"ff6": {
		ID:          "ff6",
		DisplayName: "AKAO4 / Final Fantasy VI",
		MaxValue:    0x7FFFFF,
		Forbidden: []addr.Range{
			addr.RangeOf(0x000000, 0x10000),
			addr.RangeOf(0x050000, 0x3C5F),
			addr.RangeOf(0x400000, 0x10000),
			addr.RangeOf(0x7E0000, 0x8000),
			addr.RangeOf(0x7F0000, 0x8000),
		},
		MapModes: []byte{0x31, 0x35},
	},
}

// Lookup returns the format with the provided id
func Lookup(id string) (Format, error) {
	format, ok := formatTable[id]
	if !ok {
		return Format{}, errors.Wrapf(ErrUnknownFormat, "%q", id)
	}

	format.Forbidden = slices.Clone(format.Forbidden)
	format.MapModes = slices.Clone(format.MapModes)
	return format, nil
}

// IDs returns the id of every known format in ascending order
func IDs() []string {
	ids := maps.Keys(formatTable)
	slices.Sort(ids)
	return ids
}
