package explorer

import (
	"context"

	"filelens/internal/navigator"
	"filelens/internal/source"

	ctl "filelens/internal/explorer"

	tea "github.com/charmbracelet/bubbletea"
)

// Analyzer answers a question about one file's content.
type Analyzer interface {
	Analyze(ctx context.Context, content, question string) (string, error)
}

func fetchCmd(ctx context.Context, epoch uint64, src source.Source, req navigator.Request) tea.Cmd {
	return func() tea.Msg {
		return listingMsg{epoch: epoch, listing: navigator.Fetch(ctx, src, req)}
	}
}

func fetchAll(ctx context.Context, epoch uint64, src source.Source, reqs []navigator.Request) tea.Cmd {
	if len(reqs) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, r := range reqs {
		cmds = append(cmds, fetchCmd(ctx, epoch, src, r))
	}
	return tea.Batch(cmds...)
}

func readCmd(ctx context.Context, req ctl.ReadRequest) tea.Cmd {
	return func() tea.Msg {
		return readMsg{result: ctl.Read(ctx, req)}
	}
}

func analyzeCmd(ctx context.Context, a Analyzer, q query) tea.Cmd {
	return func() tea.Msg {
		text, err := a.Analyze(ctx, q.content, q.question)
		return analysisMsg{seq: q.seq, text: text, err: err}
	}
}

func openDirCmd(p *source.Picker, path string) tea.Cmd {
	return func() tea.Msg {
		src, err := p.Open(path)
		return pickedMsg{src: src, err: err}
	}
}
