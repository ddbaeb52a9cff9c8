package main

import (
	"context"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/impresaria/romspace/project"
	"github.com/impresaria/romspace/romalloc"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

const (
	ctxLogger = iota
	ctxProject
	ctxAllocator
)

func withLogger(c *cobra.Command, args []string) error {
	verbose, _ := c.Flags().GetBool("verbose")

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	c.SetContext(context.WithValue(c.Context(), ctxLogger, logger))
	return nil
}

// withProject loads the project named by the first argument and packs it into an allocator
func withProject(c *cobra.Command, args []string) error {
	logger := c.Context().Value(ctxLogger).(*slog.Logger)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := project.Load(f)
	if err != nil {
		return errors.Wrapf(err, "loading %s", args[0])
	}

	alloc, err := p.Restore(logger, romalloc.CreateExternallySynchronized)
	if err != nil {
		return err
	}

	logger.Debug("loaded project",
		slog.String("Path", args[0]),
		slog.String("Format", p.Format),
		slog.Int("Regions", len(p.Regions)),
		slog.Int("Slots", len(p.Slots)),
	)

	ctx := context.WithValue(c.Context(), ctxProject, p)
	c.SetContext(context.WithValue(ctx, ctxAllocator, alloc))
	return nil
}

func projectCmd(c *cobra.Command, stuff ...any) *cobra.Command {
	return cmd(c, append([]any{runE(withLogger), runE(withProject)}, stuff...)...)
}

func rootCmd() *cobra.Command {
	return cmd(
		&cobra.Command{
			Use:          "romspace",
			Short:        "romspace - pack relocatable content into free image space",
			SilenceUsage: true,
		},
		func(c *cobra.Command) {
			c.PersistentFlags().BoolP("verbose", "v", false, "log allocator diagnostics")
		},
		formatsCmd(),
		claimCmd(),
		releaseCmd(),
		summaryCmd(),
		statsCmd(),
		addrCmd(),
		planCmd(),
		buildCmd(),
	)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
