package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vbxproj/vbxproj/internal/cli/ui"
	"github.com/vbxproj/vbxproj/internal/project"
)

func newCheckCommand(e *env) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Validate project files without loading them",
		Long: `Decode every project file under a directory with the matching reader and
report parse warnings and unreadable files. Nothing is written.

By default only files with problems are listed; --all lists every file.`,
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

			results, err := project.CheckDir(cmd.Context(), dir, reg, e.log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable(out, e.noColor, "FILE", "WARNINGS", "STATUS")
			failed := 0
			for _, r := range results {
				if !r.OK() {
					failed++
				}
				if r.OK() && !all {
					continue
				}
				table.AddRow(relPath(dir, r.File), strconv.Itoa(r.Warnings), checkStatus(r))
			}
			if table.Len() > 0 {
				table.Render()
				fmt.Fprintln(out)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files have problems", failed, len(results))
			}
			fmt.Fprintln(out, ui.FormatSuccess(fmt.Sprintf("%d files OK", len(results)), e.noColor))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List files without problems too")
	return cmd
}

func checkStatus(r project.CheckResult) string {
	switch {
	case r.Err != nil:
		return color.RedString("error: %v", r.Err)
	case r.Warnings > 0:
		return color.YellowString("warn")
	default:
		return color.GreenString("ok")
	}
}

func relPath(base, file string) string {
	if rel, err := filepath.Rel(base, file); err == nil {
		return rel
	}
	return file
}
