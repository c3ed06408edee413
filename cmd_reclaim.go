package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/tools"
)

var reclaimFlags struct {
	yes bool
}

var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Delete assets that nothing references and that reference nothing",
	Long: `List the assets with neither outgoing nor incoming references. With --yes
they are deleted together with their .meta sidecars and the graph is rebuilt.
Deletion cannot be undone.

With --scope narrower than the content root, references from assets outside
the scope are not seen: an asset used only from outside it is deleted too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cfg, setupLogger(cfg.LogLevel, cfg.LogFile))
		if err != nil {
			return err
		}
		defer p.Close()

		out := cmd.OutOrStdout()
		fmt.Fprint(out, tools.ReclaimScopeWarning(p.controller.Status()))
		if !reclaimFlags.yes {
			ids := p.controller.ReclaimCandidates()
			fmt.Fprintf(out, "%d assets would be deleted (run again with --yes):\n", len(ids))
			printAssets(out, ids, p.controller.Paths(ids))
			return nil
		}

		report, err := p.controller.ReclaimUnreferenced(func(report graph.ReclaimReport) {
			fmt.Fprint(out, tools.FormatReclaimReport(report))
		})
		if err != nil {
			return err
		}
		return report.Err()
	},
}

func init() {
	reclaimCmd.Flags().BoolVar(&reclaimFlags.yes, "yes", false, "Delete without further confirmation. Under --scope, assets used only from outside the scope are deleted too")
	rootCmd.AddCommand(reclaimCmd)
}
