package explorer

import (
	"filelens/internal/navigator"
	"filelens/internal/source"

	ctl "filelens/internal/explorer"
)

// listingMsg carries a completed directory fetch. epoch ties it to the tree
// that issued it; a root switch starts a new epoch.
type listingMsg struct {
	epoch   uint64
	listing navigator.Listing
}

// readMsg carries a completed file read.
type readMsg struct {
	result ctl.ReadResult
}

// analysisMsg carries the model's answer for one query.
type analysisMsg struct {
	seq  uint64
	text string
	err  error
}

// pickedMsg is the outcome of opening a chosen directory.
type pickedMsg struct {
	src *source.LazyHandle
	err error
}

// DirChangedMsg reports that a watched directory changed on disk. It is sent
// into the program by the CLI's watcher forwarder.
type DirChangedMsg struct {
	Root string
	Dir  string
}
