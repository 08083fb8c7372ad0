package main

import (
	"context"
	"fmt"

	"filelens/cmd/filelens/explorer"
	"filelens/cmd/filelens/ui"
	"filelens/internal/logging"
	"filelens/internal/source"
	"filelens/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// runInteractive starts the explorer TUI. When watching is enabled a
// watch.Manager follows the mounted directory and its changes are fed back
// into the program as DirChangedMsg.
func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmdContext(cmd))
	defer cancel()

	client, err := newAnalyzer(cmd)
	if err != nil {
		return err
	}
	picker := source.NewPicker(cfg.Filesystem.Enabled, cfg.Filesystem.ShowHidden)

	opts := explorer.Options{
		Context:         ctx,
		Demo:            source.NewDemo(),
		Picker:          picker,
		Analyzer:        client,
		Styles:          ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)),
		StartDir:        cfg.Filesystem.StartDir,
		DemoExpandDepth: cfg.UI.DemoExpandDepth,
		StartDemo:       demoFlag,
	}
	if dirFlag != "" {
		lh, err := picker.Open(dirFlag)
		if err != nil {
			return fmt.Errorf("cannot open %s: %w", dirFlag, err)
		}
		opts.Directory = lh
		opts.StartDemo = false
	}

	var mgr *watch.Manager
	if cfg.Filesystem.Enabled && cfg.Filesystem.Watch {
		mgr = watch.NewManager()
		opts.Watch = mgr.Watch
	}

	p := tea.NewProgram(explorer.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if mgr != nil {
			defer mgr.Close()
		}
		_, err := p.Run()
		if err != nil {
			return fmt.Errorf("explorer exited: %w", err)
		}
		return nil
	})
	if mgr != nil {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case ch, ok := <-mgr.Changes():
					if !ok {
						return nil
					}
					logging.WatchDebug("forwarding change in %s", ch.Dir)
					p.Send(explorer.DirChangedMsg{Root: ch.Root, Dir: ch.Dir})
				}
			}
		})
	}
	return g.Wait()
}

func cmdContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
