package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/isocell/isocell/pkg/config"
)

// watchDebounce groups the burst of events an editor produces on save.
const watchDebounce = 250 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		pf   partitionFlags
		outs partitionOutputs
	)
	cmd := &cobra.Command{
		Use:   "watch <graph.json>",
		Short: "Re-import and re-partition a graph whenever it changes",
		Long: `Watch runs import and partition once, then again every time the graph
file is written. It stops on interrupt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, &pf)
			if err != nil {
				return err
			}
			return c.watch(cmd.Context(), cfg, args[0], outs)
		},
	}
	pf.register(cmd)
	outs.register(cmd)
	return cmd
}

// rebuild runs one import and partition of path.
func (c *CLI) rebuild(ctx context.Context, cfg *config.Config, path string, outs partitionOutputs) error {
	doc, g, err := readGraph(path, cfg)
	if err != nil {
		return err
	}
	if _, err := c.runImport(ctx, cfg, doc, g); err != nil {
		return err
	}
	_, err = c.runPartition(ctx, cfg, g, outs)
	return err
}

// watch rebuilds path on every change until ctx is cancelled. Failed
// rebuilds are reported and the previous stores are kept.
func (c *CLI) watch(ctx context.Context, cfg *config.Config, path string, outs partitionOutputs) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("graph watcher: %w", err)
	}
	defer w.Close()
	// Watch the directory: editors often replace the file by renaming.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	run := func() {
		if err := c.rebuild(ctx, cfg, abs, outs); err != nil && !errors.Is(err, context.Canceled) {
			printError("%v", err)
		}
	}
	run()
	printInfo("Watching %s", path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			c.Logger.Debug("graph changed", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		case <-fire:
			fire = nil
			run()
		}
	}
}
