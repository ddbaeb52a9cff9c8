package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/impresaria/romspace/formats"
	"github.com/impresaria/romspace/project"
	"github.com/impresaria/romspace/spaceutils"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T) string {
	p := &project.Project{
		Version:    project.Version,
		SourceFile: "ff6.sfc",
		Format:     "ff6",
		Regions: []addr.Range{
			addr.RangeOf(0x060000, 0x10),
			addr.RangeOf(0x070000, 0x4),
		},
		Slots: []project.Slot{
			{ID: "brr01", Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, Origin: 0x060000, HasOrigin: true},
			{ID: "brr02", Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, Origin: 0x065000, HasOrigin: true},
			{ID: "seq01", Data: []byte{9, 9, 9, 9, 9, 9, 9, 9, 9, 9}, Origin: 0x066000, HasOrigin: true},
		},
	}

	path := filepath.Join(t.TempDir(), "project.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, p.Save(f))
	return path
}

func readProject(t *testing.T, path string) *project.Project {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	p, err := project.Load(f)
	require.NoError(t, err)
	return p
}

func writeSource(t *testing.T, mapMode byte) string {
	source := make([]byte, 0x80000)
	source[0xFFD5] = mapMode

	path := filepath.Join(t.TempDir(), "source.sfc")
	require.NoError(t, os.WriteFile(path, source, 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer

	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestSummary(t *testing.T) {
	out, err := run(t, "summary", writeProject(t))
	require.NoError(t, err)
	require.Contains(t, out, "(( 060000 ~~ 06000F )) $8 used, $8 free\n")
	require.Contains(t, out, "(( 070000 ~~ 070003 )) $0 used, $4 free\n")
	require.Contains(t, out, "$12 bytes used\n**WARNING** Not enough space!\nUnplaced data: $A bytes\n")
}

func TestAddr(t *testing.T) {
	path := writeProject(t)

	out, err := run(t, "addr", path, "brr02")
	require.NoError(t, err)
	require.Equal(t, "brr02: $C6/0000 (file offset 0x060000)\nshared with [brr01 brr02]\n", out)

	out, err = run(t, "addr", path, "seq01")
	require.NoError(t, err)
	require.Equal(t, "seq01: unplaced\n", out)

	_, err = run(t, "addr", path, "missing")
	require.Error(t, err)
}

func TestPlan(t *testing.T) {
	out, err := run(t, "plan", writeProject(t))
	require.NoError(t, err)
	require.Equal(t, "brr02: $8 bytes 0x065000 -> 0x060000\n"+
		"seq01: $A bytes at 0x066000 could not be placed\n"+
		"1 slots moved ($8 bytes), 1 unplaced\n", out)
}

func TestStats(t *testing.T) {
	out, err := run(t, "stats", "--detailed", writeProject(t))
	require.NoError(t, err)
	require.Contains(t, out, `"Slots":["brr01","brr02"]`)
	require.Contains(t, out, `"Unplaced":{"Bytes":10,"Blocks":1,"Slots":["seq01"]}`)
}

func TestBuild(t *testing.T) {
	path := writeProject(t)
	outPath := filepath.Join(t.TempDir(), "out.sfc")

	_, err := run(t, "build", path, "--source", writeSource(t, 0x31), "--out", outPath)
	require.ErrorIs(t, err, spaceutils.ErrOutOfRoom)
	require.NoFileExists(t, outPath)

	_, err = run(t, "build", path)
	require.Error(t, err)
}

func TestFormats(t *testing.T) {
	out, err := run(t, "formats")
	require.NoError(t, err)
	require.Equal(t, "ff6\tAKAO4 / Final Fantasy VI\n", out)
}

func TestClaim(t *testing.T) {
	path := writeProject(t)

	out, err := run(t, "claim", path, "0x070010-0x07001F")
	require.NoError(t, err)
	require.Equal(t, "claimed (( 070010 ~~ 07001F ))\n3 regions\n", out)

	saved := readProject(t, path)
	require.Equal(t, "ff6.sfc", saved.SourceFile)
	require.Equal(t, []addr.Range{
		addr.RangeOf(0x060000, 0x10),
		addr.RangeOf(0x070000, 0x4),
		addr.RangeOf(0x070010, 0x10),
	}, saved.Regions)
	require.Len(t, saved.Slots, 3)
	require.Equal(t, addr.Address(0x066000), saved.Origins()["seq01"])

	out, err = run(t, "addr", path, "seq01")
	require.NoError(t, err)
	require.Equal(t, "seq01: $C7/0010 (file offset 0x070010)\n", out)
}

func TestClaim_ForbiddenSpaceIsSkipped(t *testing.T) {
	path := writeProject(t)

	_, err := run(t, "claim", path, "$C5/0000-$C5/FFFF")
	require.NoError(t, err)
	require.Equal(t, []addr.Range{
		addr.NewRange(0x053C5F, 0x06000F),
		addr.RangeOf(0x070000, 0x4),
	}, readProject(t, path).Regions)
}

func TestClaim_InvalidRange(t *testing.T) {
	path := writeProject(t)

	_, err := run(t, "claim", path, "0x070010-0x07001F", "0x20-0x10")
	require.Error(t, err)
	require.Len(t, readProject(t, path).Regions, 2)

	_, err = run(t, "claim", path)
	require.Error(t, err)
}

func TestRelease(t *testing.T) {
	path := writeProject(t)

	out, err := run(t, "release", path, "$C7/0000-$C7/0003", "0x060008-0x06000F")
	require.NoError(t, err)
	require.Equal(t, "released (( 070000 ~~ 070003 ))\nreleased (( 060008 ~~ 06000F ))\n1 regions\n", out)
	require.Equal(t, []addr.Range{addr.RangeOf(0x060000, 0x8)}, readProject(t, path).Regions)

	out, err = run(t, "summary", path)
	require.NoError(t, err)
	require.Contains(t, out, "(( 060000 ~~ 060007 )) $8 used, $0 free\n")
}

func TestBuild_WritesPackedContent(t *testing.T) {
	path := writeProject(t)
	_, err := run(t, "claim", path, "0x070010-0x07001F")
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "out.sfc")
	out, err := run(t, "build", path, "--source", writeSource(t, 0x31), "--out", outPath)
	require.NoError(t, err)
	require.Equal(t, "wrote $80000 bytes to "+outPath+"\n", out)

	image, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Len(t, image, 0x80000)
	require.Equal(t, byte(0x31), image[0xFFD5])
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, image[0x060000:0x060008])
	require.Equal(t, bytes.Repeat([]byte{9}, 10), image[0x070010:0x07001A])
	require.Equal(t, make([]byte, 4), image[0x070000:0x070004])
}

func TestBuild_RejectsWrongMapMode(t *testing.T) {
	path := writeProject(t)
	_, err := run(t, "claim", path, "0x070010-0x07001F")
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "out.sfc")
	_, err = run(t, "build", path, "--source", writeSource(t, 0x20), "--out", outPath)
	require.ErrorIs(t, err, formats.ErrMapModeMismatch)
	require.NoFileExists(t, outPath)
}
