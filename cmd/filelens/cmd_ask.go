package main

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	ctl "filelens/internal/explorer"
	"filelens/internal/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runAsk reads one file through the same controller the explorer uses and
// prints the analysis.
func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	file := args[0]
	question := strings.TrimSpace(strings.Join(args[1:], " "))

	ctrl := ctl.New(source.NewDemo())
	handle, err := mountFile(ctrl, file)
	if err != nil {
		return err
	}

	req, ok := ctrl.Select(handle)
	if !ok {
		return fmt.Errorf("%s is not a file", file)
	}
	res := ctl.Read(ctx, req)
	if errors.Is(res.Err, source.ErrNotFound) {
		return fmt.Errorf("%s: %w", file, source.ErrNotFound)
	}
	ctrl.CompleteRead(res)
	sel, _ := ctrl.Selected()
	if strings.TrimSpace(sel.Content) == "" {
		return fmt.Errorf("%s is empty, there is nothing to analyze", file)
	}
	if res.Err != nil {
		logger.Warn("File content replaced by placeholder", zap.String("file", file), zap.Error(res.Err))
	}

	client, err := newAnalyzer(cmd)
	if err != nil {
		return err
	}
	logger.Info("Analyzing file",
		zap.String("file", sel.Path()),
		zap.String("model", client.Model()))

	answer, err := client.Analyze(ctx, sel.Content, question)
	if err != nil {
		logger.Debug("Analysis failed", zap.Error(err))
		return errors.New("failed to get response from Gemini, check your API key and try again")
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

// mountFile points ctrl at the source that holds file and returns its handle.
// Demo paths are slash-separated and relative to the demo root. Local files
// mount their parent directory.
func mountFile(ctrl *ctl.Controller, file string) (source.Handle, error) {
	if demoFlag {
		ctrl.UseDemo()
		p := path.Clean(filepath.ToSlash(file))
		return source.Handle{Name: path.Base(p), Path: p, Kind: source.KindFile}, nil
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return source.Handle{}, fmt.Errorf("failed to resolve %s: %w", file, err)
	}
	picker := source.NewPicker(cfg.Filesystem.Enabled, cfg.Filesystem.ShowHidden)
	lh, err := picker.Open(filepath.Dir(abs))
	if err != nil {
		return source.Handle{}, fmt.Errorf("cannot open %s: %w", file, err)
	}
	ctrl.ChooseDirectory(lh)
	name := filepath.Base(abs)
	return source.Handle{Name: name, Path: name, Kind: source.KindFile}, nil
}
