package formats_test

import (
	"io"
	"testing"

	"github.com/impresaria/romspace/formats"
	"github.com/impresaria/romspace/romalloc"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLookup(t *testing.T) {
	format, err := formats.Lookup("ff6")
	require.NoError(t, err)
	require.Equal(t, addr.Address(0x7FFFFF), format.MaxValue)
	require.Len(t, format.Forbidden, 5)
	require.Equal(t, addr.NewRange(0x050000, 0x053C5E), format.Forbidden[1])

	_, err = formats.Lookup("ff5")
	require.ErrorIs(t, err, formats.ErrUnknownFormat)

	require.Equal(t, []string{"ff6"}, formats.IDs())
}

func TestLookup_ReturnsCopies(t *testing.T) {
	format, err := formats.Lookup("ff6")
	require.NoError(t, err)
	format.Forbidden[0] = addr.Empty

	again, err := formats.Lookup("ff6")
	require.NoError(t, err)
	require.Equal(t, addr.RangeOf(0, 0x10000), again.Forbidden[0])
}

func TestCreateOptions(t *testing.T) {
	format, err := formats.Lookup("ff6")
	require.NoError(t, err)

	allocator, err := romalloc.New(slog.New(slog.NewTextHandler(io.Discard, nil)), format.CreateOptions(0))
	require.NoError(t, err)

	allocator.ClaimSpan(0x000000, 0x7FFFFF)
	require.Equal(t, []addr.Range{
		addr.NewRange(0x010000, 0x04FFFF),
		addr.NewRange(0x053C5F, 0x3FFFFF),
		addr.NewRange(0x410000, 0x7DFFFF),
		addr.NewRange(0x7E8000, 0x7EFFFF),
		addr.NewRange(0x7F8000, 0x7FFFFF),
	}, allocator.Regions())

	allocator.ClaimSpan(0x800000, 0xFFFFFF)
	require.Len(t, allocator.Regions(), 5)
	require.Equal(t, romalloc.CreateFlags(0), format.CreateOptions(0).Flags)
}

func TestCheckMapMode(t *testing.T) {
	format, err := formats.Lookup("ff6")
	require.NoError(t, err)

	hiROM := make([]byte, 0x400000)
	hiROM[0xFFD5] = 0x31
	require.NoError(t, format.CheckMapMode(hiROM))

	exHiROM := make([]byte, 0x600000)
	exHiROM[0x40FFD5] = 0x35
	require.NoError(t, format.CheckMapMode(exHiROM))

	loROM := make([]byte, 0x400000)
	loROM[0x7FD5] = 0x20
	loROM[0xFFD5] = 0x20
	err = format.CheckMapMode(loROM)
	require.ErrorIs(t, err, formats.ErrMapModeMismatch)
	require.Contains(t, err.Error(), "header declares 20")

	err = format.CheckMapMode(make([]byte, 0x100))
	require.ErrorIs(t, err, formats.ErrMapModeMismatch)

	require.NoError(t, formats.Format{}.CheckMapMode(nil))
}

func TestLookup_DisplayName(t *testing.T) {
	for _, id := range formats.IDs() {
		format, err := formats.Lookup(id)
		require.NoError(t, err)
		require.Equal(t, id, format.ID)
		require.NotEmpty(t, format.DisplayName)
		require.NotEmpty(t, format.MapModes)
	}
}
