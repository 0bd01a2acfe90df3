package commands

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/project"
	"github.com/vbxproj/vbxproj/internal/watch"
)

// newWatchCommand creates the watch command
func newWatchCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-validate project files as they are edited",
		Long: `Watch a project directory and decode every project file that changes,
reporting parse warnings as they appear. Nothing is loaded into the catalog.

Changes are batched for watch.debounce (default 100ms) before they are
checked.

Examples:
  vbxproj watch
  vbxproj watch --verbose out/demo
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Dir(e.cfg.Project)
			if len(args) > 0 {
				dir = args[0]
			}

			reg, err := e.registry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ok := color.New(color.FgGreen)
			warn := color.New(color.FgYellow)
			bad := color.New(color.FgRed, color.Bold)

			fw, err := watch.NewFileWatcher(dir, project.CheckExts, e.cfg.Watch.Debounce, e.log.Named("watch"), func(files []string) error {
				for _, f := range files {
					r := project.CheckFile(f, reg, e.log)
					name := relPath(dir, f)
					switch {
					case r.Err != nil:
						bad.Fprintf(out, "✗ %s: %v\n", name, r.Err)
					case r.Warnings > 0:
						warn.Fprintf(out, "⚠ %s: %d warnings\n", name, r.Warnings)
					default:
						ok.Fprintf(out, "✓ %s\n", name)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if err := fw.Start(); err != nil {
				return err
			}

			banner := color.New(color.FgCyan, color.Bold)
			fmt.Fprintln(out)
			banner.Fprintf(out, "Watching %s\n", dir)
			color.New(color.FgYellow).Fprintln(out, "Press Ctrl+C to stop")
			fmt.Fprintln(out)

			<-cmd.Context().Done()

			fmt.Fprintln(out, "\nShutting down...")
			if err := fw.Stop(); err != nil {
				e.log.Warn("stopping watcher failed", zap.Error(err))
			}
			return nil
		},
	}

	return cmd
}
