package spaceutils

import "github.com/pkg/errors"

// ErrUnknownRegion is returned when a region start address does not name any region in the region set
var ErrUnknownRegion error = errors.New("no region begins at this address")

// ErrOutOfRoom is returned by operations that require every content block to have been placed
var ErrOutOfRoom error = errors.New("not enough free space to place all content")

// ErrInvalidOptions is returned when an allocator is created with settings it cannot honor
var ErrInvalidOptions error = errors.New("invalid allocator options")
