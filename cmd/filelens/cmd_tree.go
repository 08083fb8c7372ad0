package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"filelens/internal/navigator"
	"filelens/internal/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var treeDepth int

// runTree prints a source the way the navigator lays it out.
func runTree(cmd *cobra.Command, args []string) error {
	src, err := resolveSource(args)
	if err != nil {
		return err
	}
	logger.Debug("Printing tree",
		zap.String("source", src.Name()),
		zap.Int("depth", treeDepth))
	return printTree(cmdContext(cmd), cmd.OutOrStdout(), src, treeDepth)
}

// resolveSource picks the demo tree, the directory argument, or the
// working directory, in that order.
func resolveSource(args []string) (source.Source, error) {
	if demoFlag {
		return source.NewDemo(), nil
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	} else if dirFlag != "" {
		dir = dirFlag
	}
	picker := source.NewPicker(cfg.Filesystem.Enabled, cfg.Filesystem.ShowHidden)
	lh, err := picker.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", dir, err)
	}
	return lh, nil
}

// printTree expands src to depth levels by draining the navigator's
// requests synchronously, then writes one line per visible row.
func printTree(ctx context.Context, w io.Writer, src source.Source, depth int) error {
	if depth < 1 {
		depth = 1
	}
	nav := navigator.New(src.Root(), navigator.Options{AutoExpandDepth: depth})

	queue := []navigator.Request{nav.Start()}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := queue[0]
		queue = queue[1:]
		follow, _ := nav.Apply(navigator.Fetch(ctx, src, req))
		queue = append(queue, follow...)
	}

	for _, row := range nav.Rows() {
		line := strings.Repeat("  ", row.Depth) + row.Name
		if row.IsDir() {
			line += "/"
			if row.State == navigator.StateEmpty {
				line += " (empty)"
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
