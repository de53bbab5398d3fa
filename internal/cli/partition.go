package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/isocell/isocell/pkg/config"
	"github.com/isocell/isocell/pkg/graph"
	"github.com/isocell/isocell/pkg/partition"
	"github.com/isocell/isocell/pkg/schema"
)

// partitionOutputs are the optional artifact paths of a partition run.
type partitionOutputs struct {
	dot     string
	svg     string
	tree    string
	noCache bool
}

func (o *partitionOutputs) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.dot, "dot", "", "write the partition tree as Graphviz DOT")
	f.StringVar(&o.svg, "svg", "", "render the partition tree as SVG")
	f.StringVar(&o.tree, "tree", "", "write the partition tree as JSON")
	f.BoolVar(&o.noCache, "no-cache", false, "rebuild the tree even if a cached one exists")
}

// partitionCommand creates the partition command.
func (c *CLI) partitionCommand() *cobra.Command {
	var (
		pf   partitionFlags
		outs partitionOutputs
	)
	cmd := &cobra.Command{
		Use:   "partition <graph.json>",
		Short: "Partition a graph into cells and store each node's cell",
		Long: `Partition splits the graph recursively along minimum cuts found by the
inertial flow heuristic until every cell holds at most --max-cell nodes, then
writes the cell and border flag of every node to the ext_cells store.

A tree built earlier for the same graph and options is reused unless
--no-cache is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, &pf)
			if err != nil {
				return err
			}
			_, g, err := readGraph(args[0], cfg)
			if err != nil {
				return err
			}
			_, err = c.runPartition(cmd.Context(), cfg, g, outs)
			return err
		},
	}
	pf.register(cmd)
	outs.register(cmd)
	registerOutputCompletions(cmd)
	return cmd
}

// runPartition builds (or fetches) the tree of g, fills the cell store and
// writes the requested artifacts.
func (c *CLI) runPartition(ctx context.Context, cfg *config.Config, g *graph.Graph, outs partitionOutputs) (*partition.Tree, error) {
	opts := cfg.Partition.Options(c.Logger)

	tc, closeCache, err := newTreeCache(ctx, cfg, outs.noCache)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	prog := newProgress(c.Logger)
	spinner := startBuildSpinner(ctx, stderr, g.NodeCount())
	tree, cached, err := tc.GetOrBuild(ctx, g.Hash(), opts.TreeOptions(), func(ctx context.Context) (*partition.Tree, error) {
		return partition.Partition(ctx, g, opts)
	})
	splits := spinner.Stop()
	if err != nil {
		printError("Partition failed")
		return nil, err
	}
	prog.done(fmt.Sprintf("Partitioned %d nodes", g.NodeCount()))

	if err := c.storeCells(ctx, cfg, tree, g); err != nil {
		return nil, err
	}

	sizes := tree.CellSizes()
	printSuccess("Built %d cells", tree.CellCount())
	parts := []string{
		fmt.Sprintf("%d nodes", g.NodeCount()),
		fmt.Sprintf("depth %d", tree.Depth()),
		fmt.Sprintf("%d cut edges", len(tree.CutEdges())),
	}
	if len(sizes) > 0 {
		parts = append(parts, fmt.Sprintf("cells %d..%d", slices.Min(sizes), slices.Max(sizes)))
	}
	if !cached {
		parts = append(parts, fmt.Sprintf("%d splits", splits))
	}
	printStats(cached, parts...)
	for n := range tree.Leaves() {
		if n.Reason != partition.LeafWithinBounds && n.Reason != partition.LeafIrreducible {
			printWarning("cell %d (%d nodes) is a %s leaf", n.CellID, n.Size(), n.Reason)
		}
	}

	return tree, c.writeArtifacts(ctx, tree, outs)
}

// storeCells writes the cell store for tree.
func (c *CLI) storeCells(ctx context.Context, cfg *config.Config, tree *partition.Tree, g *graph.Graph) error {
	dir, err := cfg.Storage.OpenDirectory(ctx, c.Logger)
	if err != nil {
		return err
	}
	defer dir.Close()

	cells := schema.NewCellStorage()
	defer cells.Close()
	if err := cells.Init(dir, g.NodeCount()); err != nil {
		return err
	}
	if err := cells.Fill(tree, g); err != nil {
		return err
	}
	return cells.Flush(ctx)
}

func (c *CLI) writeArtifacts(ctx context.Context, tree *partition.Tree, outs partitionOutputs) error {
	if outs.tree != "" {
		if err := partition.WriteTreeFile(outs.tree, tree); err != nil {
			return err
		}
		printFile(outs.tree)
	}
	if outs.dot != "" {
		if err := os.WriteFile(outs.dot, []byte(tree.ToDOT()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outs.dot, err)
		}
		printFile(outs.dot)
	}
	if outs.svg != "" {
		svg, err := tree.RenderSVG(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outs.svg, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outs.svg, err)
		}
		printFile(outs.svg)
	}
	return nil
}
