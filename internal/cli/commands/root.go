package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vbxproj/vbxproj/internal/asset/typelib"
	"github.com/vbxproj/vbxproj/internal/cli/config"
	"github.com/vbxproj/vbxproj/internal/store/sqlite"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// env carries what the persistent flags and the config file resolve to.
type env struct {
	configDir string
	noColor   bool
	verbose   bool
	yes       bool

	cfg      *config.Config
	log      *zap.Logger
	warnings atomic.Int64
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "vbxproj",
		Short: "Save and load asset stores as editable project directories",
		Long: color.CyanString(`vbxproj - asset project serializer

vbxproj writes an asset store to a directory of hand-editable text files
and binary sidecars, and reads such a directory back.

  save     write the catalog to a project directory
  load     read a project directory into the catalog
  check    validate project files without loading them
  inspect  summarize the catalog or show one asset
  watch    re-validate project files as they are edited`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&e.configDir, "config-dir", "C", "", "Directory holding vbxproj.yml (default: nearest parent with one, else .)")
	flags.BoolVar(&e.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "Log at debug level")
	flags.BoolVarP(&e.yes, "yes", "y", false, "Answer yes to confirmation prompts")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newSaveCommand(e))
	rootCmd.AddCommand(newLoadCommand(e))
	rootCmd.AddCommand(newCheckCommand(e))
	rootCmd.AddCommand(newInspectCommand(e))
	rootCmd.AddCommand(newWatchCommand(e))

	return rootCmd
}

func (e *env) setup() error {
	if e.noColor {
		color.NoColor = true
	}

	dir := e.configDir
	if dir == "" {
		if root, err := config.FindRoot("."); err == nil {
			dir = root
		} else {
			dir = "."
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	e.cfg = cfg

	level := cfg.Level()
	if e.verbose {
		level = zapcore.DebugLevel
	}
	e.log, err = e.buildLogger(level, cfg.Log.Development)
	return err
}

// buildLogger logs to stderr and counts the warnings it emits.
func (e *env) buildLogger(level zapcore.Level, development bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if e.noColor {
			zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true

	log, err := zc.Build(zap.Hooks(func(entry zapcore.Entry) error {
		if entry.Level == zapcore.WarnLevel {
			e.warnings.Add(1)
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

func (e *env) registry() (*typelib.Registry, error) {
	reg, err := typelib.Load(e.cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("loading type schema %s: %w", e.cfg.Schema, err)
	}
	return reg, nil
}

func (e *env) openCatalog(ctx context.Context, reg *typelib.Registry) (*sqlite.Catalog, error) {
	return sqlite.Open(ctx, e.cfg.Catalog, reg, e.log.Named("catalog"))
}

// manifestArg returns the manifest named on the command line or the
// configured one.
func (e *env) manifestArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return e.cfg.Project
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the vbxproj version, Git commit, build date, and Go version",
		// Version needs neither config nor logger.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			for _, row := range [][2]string{
				{"vbxproj version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, row[0])
				fmt.Fprintln(out, row[1])
			}
		},
	}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running
// command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
