package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isocell/isocell/pkg/config"
	isoerrors "github.com/isocell/isocell/pkg/errors"
	"github.com/isocell/isocell/pkg/graph"
	"github.com/isocell/isocell/pkg/schema"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <graph.json>",
		Short: "Write edge attribute stores from a graph file",
		Long: `Import reads the wheelchair and border tags of every edge in a graph
document and writes them to the ext_wheelchair and ext_borders stores of the
configured storage backend. Existing stores are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			doc, g, err := readGraph(args[0], cfg)
			if err != nil {
				return err
			}
			stats, err := c.runImport(cmd.Context(), cfg, doc, g)
			if err != nil {
				return err
			}
			printSuccess("Imported %s", args[0])
			printStats(false,
				fmt.Sprintf("%d edges", g.EdgeCount()),
				fmt.Sprintf("%d wheelchair", stats.wheelchair),
				fmt.Sprintf("%d borders", stats.borders))
			if stats.clamped > 0 {
				printWarning("%d edge widths clamped to %.1f m", stats.clamped, schema.MaxWidth())
			}
			return nil
		},
	}
}

// readGraph loads and builds the graph document at path.
func readGraph(path string, cfg *config.Config) (*graph.Document, *graph.Graph, error) {
	doc, err := graph.ReadDocumentFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := doc.Build(cfg.Partition.EdgeCapacity)
	if err != nil {
		return nil, nil, fmt.Errorf("build graph %s: %w", path, err)
	}
	return doc, g, nil
}

type importStats struct {
	wheelchair int
	borders    int
	clamped    int // wheelchair widths saturated to the recordable range
}

// runImport writes the tagged edges of doc to fresh attribute stores.
func (c *CLI) runImport(ctx context.Context, cfg *config.Config, doc *graph.Document, g *graph.Graph) (importStats, error) {
	var stats importStats

	dir, err := cfg.Storage.OpenDirectory(ctx, c.Logger)
	if err != nil {
		return stats, err
	}
	defer dir.Close()

	wc := schema.NewWheelchairStorage()
	defer wc.Close()
	if err := wc.Init(dir, g.EdgeCount()); err != nil {
		return stats, err
	}
	bs := schema.NewBordersStorage()
	defer bs.Close()
	if err := bs.Init(dir, g.EdgeCount()); err != nil {
		return stats, err
	}

	for id, e := range doc.Edges {
		if e.Wheelchair != nil {
			a, err := wheelchairAttributes(*e.Wheelchair)
			if err != nil {
				return stats, fmt.Errorf("edge %d: %w", id, err)
			}
			if w, clamped := schema.ClampWidth(a.Width); clamped {
				c.Logger.Warn("width out of range, clamped", "edge", id, "width", a.Width, "stored", w)
				a.Width = w
				stats.clamped++
			}
			if err := wc.SetEdgeValues(id, a); err != nil {
				return stats, err
			}
			stats.wheelchair++
		}
		if e.Border != nil {
			if err := bs.SetEdgeValue(id, schema.BorderType(e.Border.Type), e.Border.Start, e.Border.End); err != nil {
				return stats, err
			}
			stats.borders++
		}
	}

	if err := wc.Flush(ctx); err != nil {
		return stats, err
	}
	if err := bs.Flush(ctx); err != nil {
		return stats, err
	}
	c.Logger.Debug("attribute stores written",
		"wheelchair_bytes", wc.Capacity(), "borders_bytes", bs.Capacity())
	return stats, nil
}

// wheelchairAttributes maps graph document tags to stored attributes.
func wheelchairAttributes(t graph.WheelchairTags) (schema.WheelchairAttributes, error) {
	a := schema.NewWheelchairAttributes()
	side, err := schema.ParseSide(t.Side)
	if err != nil {
		return a, err
	}
	a.SurfaceType = t.Surface
	a.SmoothnessType = t.Smoothness
	a.TrackType = t.TrackType
	if t.Incline != nil {
		if *t.Incline < 0 {
			return a, isoerrors.New(isoerrors.ErrCodeInvalidInput, "incline %d is negative", *t.Incline)
		}
		a.Incline = *t.Incline
	}
	a.KerbHeight = t.KerbHeight
	a.Width = t.Width
	a.Side = side
	return a, nil
}
