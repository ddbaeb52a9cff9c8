package romalloc

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/romalloc/internal/utils"
	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

const (
	// CreateExternallySynchronized ensures that this allocator will not be synchronized internally.
	// The consumer must guarantee it is used from only one goroutine at a time or is synchronized
	// by some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	CreateExternallySynchronized: "CreateExternallySynchronized",
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for bit := CreateFlags(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}

		name, known := createFlagsMapping[bit]
		if !known {
			name = "Unknown"
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}

// CreateOptions contains the settings used to create an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// MaxValue is the highest address that may ever be claimed. If it is left at 0,
	// addr.MaxAddress is used.
	MaxValue addr.Address
	// Forbidden lists address ranges that can never be claimed, e.g. reserved system banks.
	// Claims that overlap a forbidden range are trimmed around it.
	Forbidden []addr.Range
}

// New creates a new Allocator with no claimed regions and no content
//
// logger - The logger that diagnostics will be sent to. If nil, slog.Default() is used.
//
// options - The format-specific settings for the address space being packed
func New(logger *slog.Logger, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	maxValue := options.MaxValue
	if maxValue == 0 {
		maxValue = addr.MaxAddress
	}
	if maxValue > addr.MaxAddress {
		return nil, errors.Wrapf(spaceutils.ErrInvalidOptions, "max value $%X is beyond the 24-bit address space", uint32(maxValue))
	}

	for index, forbidden := range options.Forbidden {
		if forbidden.IsEmpty() {
			return nil, errors.Wrapf(spaceutils.ErrInvalidOptions, "forbidden range %d is empty", index)
		}
		if forbidden.End() > addr.MaxAddress {
			return nil, errors.Wrapf(spaceutils.ErrInvalidOptions, "forbidden range %s is beyond the 24-bit address space", forbidden)
		}
	}

	useMutex := options.Flags&CreateExternallySynchronized == 0

	allocator := &Allocator{
		mutex:       utils.OptionalMutex{UseMutex: useMutex},
		logger:      logger,
		createFlags: options.Flags,
		maxValue:    maxValue,
		forbidden:   slices.Clone(options.Forbidden),
		store:       content.NewStore(),
	}
	allocator.packed.dirty = true

	logger.Debug("Allocator::New",
		slog.String("Flags", options.Flags.String()),
		slog.Int("MaxValue", int(maxValue)),
		slog.Int("ForbiddenRanges", len(options.Forbidden)),
	)

	return allocator, nil
}
