package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vbxproj/vbxproj/internal/asset/memstore"
	"github.com/vbxproj/vbxproj/internal/cli/ui"
	"github.com/vbxproj/vbxproj/internal/project"
)

func newLoadCommand(e *env) *cobra.Command {
	var (
		overwrite    bool
		adoptMissing bool
		fresh        bool
	)

	cmd := &cobra.Command{
		Use:   "load [manifest.vproj]",
		Short: "Read a project directory into the catalog",
		Long: `Read a project directory and store the result in the catalog.

The project is loaded on top of the current catalog content. Records that
already exist are kept unless --overwrite is given; use --fresh to start
from an empty store instead.

Projects written by another format version ask for confirmation first,
--yes answers it.

Examples:
  vbxproj load
  vbxproj load --overwrite mods/demo.vproj
  vbxproj load --fresh --yes old/demo.vproj
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manifest := e.manifestArg(args)

			reg, err := e.registry()
			if err != nil {
				return err
			}
			catalog, err := e.openCatalog(ctx, reg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			st := memstore.New()
			if !fresh {
				if err := catalog.Restore(ctx, st); err != nil {
					return err
				}
			}

			progress := ui.NewStageProgress(cmd.ErrOrStderr(), "Loading", e.noColor)
			spinner := progress.Spinner()
			opts := project.Options{
				Overwrite:    overwrite || e.cfg.Load.Overwrite,
				AdoptMissing: adoptMissing || e.cfg.Load.AdoptMissing,
				Progress:     progress,
				Confirm:      ui.PausingConfirm(spinner, ui.Confirm(e.yes)),
			}
			sess := project.NewSession(st, reg, e.log, opts)

			spinner.Start()
			if err := sess.Load(ctx, manifest); err != nil {
				if errors.Is(err, project.ErrDeclined) {
					spinner.Warn("Load cancelled")
					return nil
				}
				spinner.Error("Load failed")
				return err
			}

			if err := catalog.Snapshot(ctx, st); err != nil {
				spinner.Error("Catalog update failed")
				return err
			}
			stats, err := catalog.Stats(ctx)
			if err != nil {
				spinner.Error("Catalog update failed")
				return err
			}

			p := sess.Current()
			summary := fmt.Sprintf("Loaded %s: %d assets, %d resources, %d chunks (%s)",
				p.DisplayName, stats.Assets, stats.Resources, stats.Chunks, humanize.Bytes(uint64(stats.Bytes)))
			if n := e.warnings.Load(); n > 0 {
				spinner.Warn(fmt.Sprintf("%s with %d warnings", summary, n))
			} else {
				spinner.Success(summary)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace records the catalog already has")
	cmd.Flags().BoolVar(&adoptMissing, "adopt-missing", false, "Create entries for unmodified records the catalog does not know")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Start from an empty store instead of the catalog")

	return cmd
}
