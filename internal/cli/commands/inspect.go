package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vbxproj/vbxproj/internal/asset"
	"github.com/vbxproj/vbxproj/internal/asset/memstore"
	"github.com/vbxproj/vbxproj/internal/cli/ui"
	"github.com/vbxproj/vbxproj/internal/store/sqlite"
)

// catalogSummary is the --yaml form of a catalog overview.
type catalogSummary struct {
	Catalog   string `yaml:"catalog"`
	Bundles   int    `yaml:"bundles"`
	Assets    int    `yaml:"assets"`
	Resources int    `yaml:"resources"`
	Chunks    int    `yaml:"chunks"`
	Size      string `yaml:"size"`
}

type assetSummary struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	FileID       string   `yaml:"fileId"`
	Transient    bool     `yaml:"transient,omitempty"`
	Objects      int      `yaml:"objects,omitempty"`
	HandlerData  string   `yaml:"handlerData,omitempty"`
	Bundles      []string `yaml:"bundles,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Linked       []string `yaml:"linked,omitempty"`
}

func newInspectCommand(e *env) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "inspect [asset]",
		Short: "Summarize the catalog or show one asset",
		Long: `Without arguments, print record counts and the stored size of the catalog.
With an asset name, print that asset's bundles, dependencies and linked
records as YAML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, err := e.registry()
			if err != nil {
				return err
			}
			catalog, err := e.openCatalog(ctx, reg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				stats, err := catalog.Stats(ctx)
				if err != nil {
					return err
				}
				return e.printStats(out, stats, asYAML)
			}

			st := memstore.New()
			if err := catalog.Restore(ctx, st); err != nil {
				return err
			}
			a := st.AssetByName(args[0])
			if a == nil {
				names := make([]string, 0, len(st.Assets()))
				for _, a := range st.Assets() {
					names = append(names, a.Name)
				}
				fmt.Fprint(cmd.ErrOrStderr(), ui.NotFoundError("asset", args[0], ui.FindSimilar(args[0], names), e.noColor))
				return errors.New("asset not found")
			}
			return writeYAML(out, summarizeAsset(st, a))
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the catalog summary as YAML")
	return cmd
}

func (e *env) printStats(w io.Writer, stats sqlite.Stats, asYAML bool) error {
	size := humanize.Bytes(uint64(stats.Bytes))
	if asYAML {
		return writeYAML(w, catalogSummary{
			Catalog:   e.cfg.Catalog,
			Bundles:   stats.Bundles,
			Assets:    stats.Assets,
			Resources: stats.Resources,
			Chunks:    stats.Chunks,
			Size:      size,
		})
	}

	ui.Header(w, "Catalog", e.noColor)
	kv := ui.NewKeyValueTable(w, e.noColor)
	kv.AddRow("Path", e.cfg.Catalog)
	kv.AddRow("Bundles", humanize.Comma(int64(stats.Bundles)))
	kv.AddRow("Assets", humanize.Comma(int64(stats.Assets)))
	kv.AddRow("Resources", humanize.Comma(int64(stats.Resources)))
	kv.AddRow("Chunks", humanize.Comma(int64(stats.Chunks)))
	kv.AddRow("Size", size)
	kv.Render()
	return nil
}

func summarizeAsset(st asset.Store, a *asset.AssetEntry) assetSummary {
	s := assetSummary{
		Name:      a.Name,
		Type:      a.Type,
		FileID:    a.FileID.String(),
		Transient: a.Transient,
	}
	if a.Graph != nil {
		s.Objects = a.Graph.Len()
	}
	if a.HasHandlerData() {
		s.HandlerData = humanize.Bytes(uint64(len(a.HandlerData)))
	}
	for _, id := range a.Bundles {
		if b := st.Bundle(id); b != nil {
			s.Bundles = append(s.Bundles, b.Name)
		} else {
			s.Bundles = append(s.Bundles, "#"+strconv.Itoa(id))
		}
	}
	for _, dep := range a.Dependencies {
		if d := st.AssetByID(dep); d != nil {
			s.Dependencies = append(s.Dependencies, d.Name)
		} else {
			s.Dependencies = append(s.Dependencies, dep.String())
		}
	}
	for _, l := range a.Linked {
		s.Linked = append(s.Linked, l.Key())
	}
	return s
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
