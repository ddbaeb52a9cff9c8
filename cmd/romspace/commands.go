package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/formats"
	"github.com/impresaria/romspace/project"
	"github.com/impresaria/romspace/romalloc"
	"github.com/impresaria/romspace/spaceutils/addr"
	"github.com/impresaria/romspace/spaceutils/content"
	"github.com/impresaria/romspace/spaceutils/relocate"
	"github.com/spf13/cobra"
)

func allocatorFrom(c *cobra.Command) *romalloc.Allocator {
	return c.Context().Value(ctxAllocator).(*romalloc.Allocator)
}

func projectFrom(c *cobra.Command) *project.Project {
	return c.Context().Value(ctxProject).(*project.Project)
}

// saveProject captures the allocator's current state over the project file it was loaded from
func saveProject(c *cobra.Command, path string) error {
	p := projectFrom(c)

	updated, err := project.Capture(p.Format, allocatorFrom(c), p.Origins())
	if err != nil {
		return err
	}
	updated.SourceFile = p.SourceFile

	var buf bytes.Buffer
	if err := updated.Save(&buf); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func formatsCmd() *cobra.Command {
	return cmd(
		&cobra.Command{
			Use:   "formats",
			Short: "list the image formats a project can use",
			Args:  cobra.NoArgs,
		},
		func(c *cobra.Command, args []string) error {
			for _, id := range formats.IDs() {
				format, err := formats.Lookup(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", format.ID, format.DisplayName)
			}
			return nil
		},
	)
}

// regionsCmd builds a command that applies update to every range named on the command line and
// saves the project
func regionsCmd(use, short, verb string, update func(*romalloc.Allocator, addr.Range)) *cobra.Command {
	return projectCmd(
		&cobra.Command{
			Use:   use + " <project> <range>...",
			Short: short,
			Args:  cobra.MinimumNArgs(2),
		},
		func(c *cobra.Command, args []string) error {
			ranges := make([]addr.Range, 0, len(args)-1)
			for _, text := range args[1:] {
				r, err := formats.ParseRange(text)
				if err != nil {
					return err
				}
				ranges = append(ranges, r)
			}

			alloc := allocatorFrom(c)
			for _, r := range ranges {
				update(alloc, r)
				fmt.Fprintf(c.OutOrStdout(), "%s %s\n", verb, r)
			}

			if err := saveProject(c, args[0]); err != nil {
				return errors.Wrapf(err, "saving %s", args[0])
			}

			fmt.Fprintf(c.OutOrStdout(), "%d regions\n", len(alloc.Regions()))
			return nil
		},
	)
}

func claimCmd() *cobra.Command {
	return regionsCmd("claim", "mark ranges as free space content may be packed into", "claimed", (*romalloc.Allocator).Claim)
}

func releaseCmd() *cobra.Command {
	return regionsCmd("release", "return ranges to the image so no content is packed there", "released", (*romalloc.Allocator).Release)
}

func summaryCmd() *cobra.Command {
	return projectCmd(
		&cobra.Command{
			Use:   "summary <project>",
			Short: "show how much free space the project's content uses",
			Args:  cobra.ExactArgs(1),
		},
		func(c *cobra.Command, args []string) error {
			alloc := allocatorFrom(c)
			out := c.OutOrStdout()

			for _, region := range alloc.Regions() {
				used, free, err := alloc.SpaceUsage(region.Start())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s $%X used, $%X free\n", region, used, free)
			}

			fmt.Fprintln(out, alloc.TotalUsageSummary())
			return nil
		},
	)
}

func statsCmd() *cobra.Command {
	var detailed bool

	return projectCmd(
		&cobra.Command{
			Use:   "stats <project>",
			Short: "dump region and placement statistics as json",
			Args:  cobra.ExactArgs(1),
		},
		func(c *cobra.Command) {
			c.Flags().BoolVar(&detailed, "detailed", false, "list every placement in each region")
		},
		func(c *cobra.Command, args []string) error {
			fmt.Fprintln(c.OutOrStdout(), allocatorFrom(c).BuildStatsString(detailed))
			return nil
		},
	)
}

func addrCmd() *cobra.Command {
	return projectCmd(
		&cobra.Command{
			Use:   "addr <project> <slot>",
			Short: "show where a slot's content was packed",
			Args:  cobra.ExactArgs(2),
		},
		func(c *cobra.Command, args []string) error {
			alloc := allocatorFrom(c)
			slot := content.SlotID(args[1])

			if _, ok := alloc.SlotContent(slot); !ok {
				return errors.Newf("project has no slot %q", slot)
			}

			address, placed := alloc.AddressOf(slot)
			if !placed {
				fmt.Fprintf(c.OutOrStdout(), "%s: unplaced\n", slot)
				return nil
			}

			rom := formats.ToROMAddress(address)
			fmt.Fprintf(c.OutOrStdout(), "%s: $%02X/%04X (file offset 0x%06X)\n", slot, uint32(rom>>16), uint32(rom&0xFFFF), uint32(address))

			if shared := alloc.SharedSlots(slot); len(shared) > 1 {
				fmt.Fprintf(c.OutOrStdout(), "shared with %v\n", shared)
			}
			return nil
		},
	)
}

type printHandler struct {
	c *cobra.Command
}

func (h printHandler) Move(move relocate.Move) (relocate.MoveOperation, error) {
	fmt.Fprintf(h.c.OutOrStdout(), "%s: $%X bytes 0x%06X -> 0x%06X\n", move.Slot, move.Size, uint32(move.Src), uint32(move.Dst))
	return relocate.MoveCopy, nil
}

func planCmd() *cobra.Command {
	return projectCmd(
		&cobra.Command{
			Use:   "plan <project>",
			Short: "list slots whose content moves when the image is rebuilt",
			Args:  cobra.ExactArgs(1),
		},
		func(c *cobra.Command, args []string) error {
			moves := projectFrom(c).Plan(allocatorFrom(c))

			relocations := relocate.Context{Handler: printHandler{c: c}}
			if err := relocations.Apply(moves); err != nil {
				return err
			}

			for _, move := range moves {
				if !move.Placed {
					fmt.Fprintf(c.OutOrStdout(), "%s: $%X bytes at 0x%06X could not be placed\n", move.Slot, move.Size, uint32(move.Src))
				}
			}

			stats := relocations.Stats
			fmt.Fprintf(c.OutOrStdout(), "%d slots moved ($%X bytes), %d unplaced\n", stats.SlotsMoved, stats.BytesMoved, stats.SlotsUnplaced)
			return nil
		},
	)
}

func buildCmd() *cobra.Command {
	var sourcePath, outPath string

	return projectCmd(
		&cobra.Command{
			Use:   "build <project>",
			Short: "write the project's packed content into a copy of the source image",
			Args:  cobra.ExactArgs(1),
		},
		func(c *cobra.Command) {
			c.Flags().StringVar(&sourcePath, "source", "", "source image to copy")
			c.Flags().StringVar(&outPath, "out", "", "where to write the rebuilt image")
			c.MarkFlagRequired("source")
			c.MarkFlagRequired("out")
		},
		func(c *cobra.Command, args []string) error {
			source, err := os.ReadFile(sourcePath)
			if err != nil {
				return err
			}

			format, err := formats.Lookup(projectFrom(c).Format)
			if err != nil {
				return err
			}
			if err := format.CheckMapMode(source); err != nil {
				return errors.Wrapf(err, "checking %s", sourcePath)
			}

			image, err := project.BuildImage(source, allocatorFrom(c))
			if err != nil {
				return err
			}

			if err := os.WriteFile(outPath, image, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "wrote $%X bytes to %s\n", len(image), outPath)
			return nil
		},
	)
}

var _ relocate.Handler = printHandler{}
