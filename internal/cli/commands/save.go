package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset/memstore"
	"github.com/vbxproj/vbxproj/internal/cli/ui"
	"github.com/vbxproj/vbxproj/internal/project"
)

func newSaveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "save [manifest.vproj]",
		Short: "Write the catalog to a project directory",
		Long: `Write every bundle, asset, resource and chunk in the catalog to a project
directory next to the manifest.

When the manifest already exists, managed files (.vbx .bdl .res .chunk .bin
.mres) under the project directory are removed first, so records deleted
from the catalog disappear from disk.

Examples:
  # Save to the manifest named in vbxproj.yml
  vbxproj save

  # Save somewhere else
  vbxproj save out/demo.vproj
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
			if err := catalog.Restore(ctx, st); err != nil {
				return err
			}

			progress := ui.NewStageProgress(cmd.ErrOrStderr(), "Saving", e.noColor)
			sess := project.NewSession(st, reg, e.log, project.Options{Progress: progress})

			spinner := progress.Spinner()
			spinner.Start()
			if err := sess.Save(ctx, manifest); err != nil {
				spinner.Error("Save failed")
				return err
			}

			p := sess.Current()
			summary := fmt.Sprintf("Saved %s (%d items) to %s", p.DisplayName, p.ItemsCount, p.Dir)
			if n := e.warnings.Load(); n > 0 {
				spinner.Warn(fmt.Sprintf("%s with %d warnings", summary, n))
			} else {
				spinner.Success(summary)
			}
			e.log.Debug("save finished", zap.String("manifest", p.Path), zap.Int("items", p.ItemsCount))
			return nil
		},
	}
}
