package formats

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/spaceutils/addr"
)

// FromROMAddress converts a HiROM bus address into a file offset. Banks $C0-$FF map to the first
// 4MB of the file, and banks $3E-$3F map to the banks past $7E0000 that the upper mirror cannot reach.
// Anything else is assumed to already be a file offset.
func FromROMAddress(address addr.Address) addr.Address {
	switch {
	case address >= 0xC00000:
		return address - 0xC00000
	case address >= 0x3E0000 && address < 0x400000:
		return address + 0x400000
	}

	return address
}

// ToROMAddress converts a file offset into the HiROM bus address the console reads it from
func ToROMAddress(offset addr.Address) addr.Address {
	switch {
	case offset < 0x400000:
		return offset + 0xC00000
	case offset >= 0x7E0000 && offset < 0x800000:
		return offset - 0x400000
	}

	return offset
}

// ParseAddress reads an address written in one of the forms used by the editor and by ROM hacking
// documentation, returning a file offset:
//
//	0x05F000  - a file offset
//	$C5/F000  - a bus address with the bank split off
//	$C5F000   - a bus address
//	C5F000    - a bus address
func ParseAddress(text string) (addr.Address, error) {
	trimmed := strings.TrimSpace(text)

	if hex, isOffset := cutPrefixFold(trimmed, "0x"); isOffset {
		value, err := parseHex(hex)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid file offset %q", text)
		}

		return value, nil
	}

	trimmed = strings.TrimPrefix(trimmed, "$")
	trimmed = strings.Replace(trimmed, "/", "", 1)

	value, err := parseHex(trimmed)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid address %q", text)
	}

	return FromROMAddress(value), nil
}

// ParseRange reads a range written as start-end, where both ends use any form accepted by
// ParseAddress. The end is inclusive.
func ParseRange(text string) (addr.Range, error) {
	startText, endText, found := strings.Cut(text, "-")
	if !found {
		return addr.Empty, errors.Newf("range %q should be written as start-end", text)
	}

	start, err := ParseAddress(startText)
	if err != nil {
		return addr.Empty, err
	}

	end, err := ParseAddress(endText)
	if err != nil {
		return addr.Empty, err
	}

	r := addr.NewRange(start, end)
	if r.IsEmpty() {
		return addr.Empty, errors.Newf("range %q ends before it starts", text)
	}

	return r, nil
}

func parseHex(text string) (addr.Address, error) {
	if text == "" {
		return 0, errors.New("no digits")
	}

	value, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, err
	}

	if addr.Address(value) > addr.MaxAddress {
		return 0, errors.Newf("$%X does not fit in 24 bits", value)
	}

	return addr.Address(value), nil
}

func cutPrefixFold(text, prefix string) (string, bool) {
	if len(text) < len(prefix) || !strings.EqualFold(text[:len(prefix)], prefix) {
		return text, false
	}

	return text[len(prefix):], true
}
