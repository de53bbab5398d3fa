package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/isocell/isocell/pkg/edgestore"
	isoerrors "github.com/isocell/isocell/pkg/errors"
	"github.com/isocell/isocell/pkg/schema"
)

// inspectCommand creates the inspect command group.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode stored rows",
	}
	cmd.AddCommand(c.inspectEdgeCommand())
	cmd.AddCommand(c.inspectNodeCommand())
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, isoerrors.New(isoerrors.ErrCodeInvalidInput, "invalid id %q", s)
	}
	return id, nil
}

// loadStore binds s to dir and reloads it. ok is false if the store was
// never written.
func loadStore(ctx context.Context, dir edgestore.Directory, s interface {
	Init(edgestore.Directory, int) error
	LoadExisting(context.Context) error
}) (ok bool, err error) {
	if err := s.Init(dir, 0); err != nil {
		return false, err
	}
	err = s.LoadExisting(ctx)
	if isoerrors.Is(err, isoerrors.ErrCodeStoreNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (c *CLI) inspectEdgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edge <id>",
		Short: "Show the wheelchair and border attributes of an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			dir, err := cfg.Storage.OpenDirectory(ctx, c.Logger)
			if err != nil {
				return err
			}
			defer dir.Close()

			printTitle(fmt.Sprintf("Edge %d", id))

			wc := schema.NewWheelchairStorage()
			defer wc.Close()
			if ok, err := loadStore(ctx, dir, wc); err != nil {
				return err
			} else if !ok {
				printWarning("no %s store; run isocell import first", schema.WheelchairSegment)
			} else {
				a, err := wc.EdgeValues(id)
				if err != nil {
					return err
				}
				printWheelchair(a)
			}

			bs := schema.NewBordersStorage()
			defer bs.Close()
			if ok, err := loadStore(ctx, dir, bs); err != nil {
				return err
			} else if !ok {
				printWarning("no %s store; run isocell import first", schema.BordersSegment)
			} else {
				typ, err := bs.EdgeValue(id, schema.PropertyType)
				if err != nil {
					return err
				}
				start, _ := bs.EdgeValue(id, schema.PropertyStart)
				end, _ := bs.EdgeValue(id, schema.PropertyEnd)
				printKeyValue("border", schema.BorderType(typ).String())
				if schema.BorderType(typ) != schema.NoBorder {
					printKeyValue("regions", fmt.Sprintf("%d → %d", start, end))
				}
			}
			return nil
		},
	}
}

func printWheelchair(a schema.WheelchairAttributes) {
	if !a.HasValues() {
		printKeyValue("wheelchair", "no data")
		return
	}
	printKeyValue("surface", strconv.Itoa(a.SurfaceType))
	printKeyValue("smoothness", strconv.Itoa(a.SmoothnessType))
	printKeyValue("track type", strconv.Itoa(a.TrackType))
	if a.HasIncline() {
		printKeyValue("incline", fmt.Sprintf("%d%%", a.Incline))
	}
	if a.HasKerbHeight() {
		printKeyValue("kerb height", strconv.FormatFloat(a.KerbHeight, 'f', -1, 64))
	}
	if a.Width > 0 {
		printKeyValue("width", strconv.FormatFloat(a.Width, 'f', 1, 64)+" m")
	}
	printKeyValue("side", a.Side.String())
}

func (c *CLI) inspectNodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "node <id>",
		Short: "Show the partition cell of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			dir, err := cfg.Storage.OpenDirectory(ctx, c.Logger)
			if err != nil {
				return err
			}
			defer dir.Close()

			printTitle(fmt.Sprintf("Node %d", id))
			cells := schema.NewCellStorage()
			defer cells.Close()
			ok, err := loadStore(ctx, dir, cells)
			if err != nil {
				return err
			}
			if !ok {
				printWarning("no %s store; run isocell partition first", schema.CellsSegment)
				return nil
			}
			cell, border, ok := cells.Cell(id)
			if !ok {
				printKeyValue("cell", "none")
				return nil
			}
			printKeyValue("cell", strconv.Itoa(cell))
			printKeyValue("border", strconv.FormatBool(border))
			return nil
		},
	}
}
