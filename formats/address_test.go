package formats_test

import (
	"testing"

	"github.com/impresaria/romspace/formats"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/stretchr/testify/require"
)

func TestROMAddressMapping(t *testing.T) {
	tests := []struct {
		rom    addr.Address
		offset addr.Address
	}{
		{rom: 0xC00000, offset: 0x000000},
		{rom: 0xC51234, offset: 0x051234},
		{rom: 0xFFFFFF, offset: 0x3FFFFF},
		{rom: 0x400000, offset: 0x400000},
		{rom: 0x7DFFFF, offset: 0x7DFFFF},
		{rom: 0x3E0000, offset: 0x7E0000},
		{rom: 0x3FFFFF, offset: 0x7FFFFF},
	}

	for _, test := range tests {
		require.Equal(t, test.offset, formats.FromROMAddress(test.rom), "$%06X", uint32(test.rom))
		require.Equal(t, test.rom, formats.ToROMAddress(test.offset), "$%06X", uint32(test.offset))
	}
}

func TestParseAddress(t *testing.T) {
	tests := map[string]addr.Address{
		"0x05F000": 0x05F000,
		"0X10":     0x10,
		"$C5/F000": 0x05F000,
		"$C5F000":  0x05F000,
		"C5F000":   0x05F000,
		" c5f000 ": 0x05F000,
		"$3E/0000": 0x7E0000,
		"123456":   0x123456,
		"0x7FFFFF": 0x7FFFFF,
	}

	for text, expected := range tests {
		actual, err := formats.ParseAddress(text)
		require.NoError(t, err, text)
		require.Equal(t, expected, actual, text)
	}

	for _, text := range []string{"", "0x", "$", "zz", "0x1000000", "$C5/F0/00"} {
		_, err := formats.ParseAddress(text)
		require.Error(t, err, text)
	}
}

func TestParseRange(t *testing.T) {
	r, err := formats.ParseRange("0x10000-0x1FFFF")
	require.NoError(t, err)
	require.Equal(t, addr.NewRange(0x10000, 0x1FFFF), r)

	r, err = formats.ParseRange("$C6/0000-$C6/FFFF")
	require.NoError(t, err)
	require.Equal(t, addr.NewRange(0x060000, 0x06FFFF), r)

	_, err = formats.ParseRange("0x10000")
	require.Error(t, err)

	_, err = formats.ParseRange("0x20-0x10")
	require.Error(t, err)
}
