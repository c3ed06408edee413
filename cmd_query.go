package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/tools"
)

var listFlags struct {
	extension string
	refType   string
	name      string
	ignore    string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed assets",
	Long: `List the assets of the graph, one "path<TAB>id" line each.

Examples:
  assetgraph-mcp list
  assetgraph-mcp list --ext .png --ref-type isolated
  assetgraph-mcp list --name Hero
  assetgraph-mcp list --ignore Plugins,ThirdParty`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		refType, err := graph.ParseRefType(listFlags.refType)
		if err != nil {
			return err
		}

		p, err := openProject(cfg, setupLogger(cfg.LogLevel, cfg.LogFile))
		if err != nil {
			return err
		}
		defer p.Close()

		if cmd.Flags().Changed("ignore") {
			if _, err := p.controller.SetIgnoreList(listFlags.ignore); err != nil {
				return err
			}
		}

		ids := p.controller.SetFilter(tools.NormalizeExtension(listFlags.extension), refType)
		if listFlags.name != "" {
			ids = intersect(p.controller.Search(listFlags.name), ids)
		}
		printAssets(cmd.OutOrStdout(), ids, p.controller.Paths(ids))
		return nil
	},
}

var refsFlags struct {
	ignoreFolders bool
}

var refsCmd = &cobra.Command{
	Use:   "refs <asset>",
	Short: "Show what an asset references and what references it",
	Long: `Show one asset's outgoing and incoming references. The asset is a path
relative to the project directory or an asset ID.

Examples:
  assetgraph-mcp refs Assets/Materials/Hero.mat
  assetgraph-mcp refs 0123456789abcdef0123456789abcdef --ignore-folders`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cfg, setupLogger(cfg.LogLevel, cfg.LogFile))
		if err != nil {
			return err
		}
		defer p.Close()

		id, ok := tools.ResolveAsset(p.controller, args[0])
		if !ok {
			return fmt.Errorf("asset not found in graph: %s", args[0])
		}
		sel, ok := p.controller.Select(id, refsFlags.ignoreFolders)
		if !ok {
			return fmt.Errorf("asset not found in graph: %s", args[0])
		}
		desc, err := p.controller.Describe(id)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tools.FormatSelection(desc, sel,
			p.controller.Paths(sel.Outgoing), p.controller.Paths(sel.Incoming)))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFlags.extension, "ext", "", "Extension filter, e.g. .png (default: all)")
	listCmd.Flags().StringVar(&listFlags.refType, "ref-type", "", "Reference filter: none|no-outgoing|no-incoming|isolated")
	listCmd.Flags().StringVar(&listFlags.name, "name", "", "Name search term (exact name or substring)")
	listCmd.Flags().StringVar(&listFlags.ignore, "ignore", "", "Set and save the comma-separated ignored folder list first")
	refsCmd.Flags().BoolVar(&refsFlags.ignoreFolders, "ignore-folders", false, "Hide references in ignored folders")

	rootCmd.AddCommand(listCmd, refsCmd)
}

func printAssets(w io.Writer, ids []graph.ID, paths []string) {
	for i, id := range ids {
		fmt.Fprintf(w, "%s\t%s\n", paths[i], id)
	}
}

// intersect keeps the elements of a that are also in b, in a's order.
func intersect(a, b []graph.ID) []graph.ID {
	keep := make(map[graph.ID]bool, len(b))
	for _, id := range b {
		keep[id] = true
	}
	var out []graph.ID
	for _, id := range a {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}
