// Package explorer holds the root state of the file explorer: which tree is
// shown, which file is selected, and the error banner.
package explorer

import (
	"errors"

	"filelens/internal/logging"
	"filelens/internal/source"
)

// Mode is the active root.
type Mode uint8

const (
	ModeNoRoot Mode = iota
	ModeDemo
	ModeDirectory
)

func (m Mode) String() string {
	switch m {
	case ModeDemo:
		return "demo"
	case ModeDirectory:
		return "directory"
	default:
		return "no-root"
	}
}

// User-visible picker failures.
const (
	MsgPickerUnavailable = "Directory access is disabled in this session. You can use the demo file system instead."
	MsgAccessDenied      = "Could not access the file system. You can use the demo file system instead."
	MsgPickerFailed      = "An error occurred while selecting the directory."
)

// Header text.
const (
	SubtitleNoRoot = "Select a local directory to analyze its file content with Gemini"
	DemoName       = "Demo Directory"
)

// Selection is the one selected file.
type Selection struct {
	Handle  source.Handle
	Content string
}

// Name returns the selected file's name.
func (s Selection) Name() string { return s.Handle.Name }

// Path returns the selected file's path, its identity.
func (s Selection) Path() string { return s.Handle.Path }

// ReadRequest asks for one file's content on behalf of a selection.
type ReadRequest struct {
	Source source.Source
	Handle source.Handle
	Seq    uint64
}

// ReadResult is a completed ReadRequest. Content is always displayable.
type ReadResult struct {
	Handle  source.Handle
	Seq     uint64
	Content string
	Err     error
}

// Controller is the root state machine. Like the navigator it is driven
// from the UI event loop only.
type Controller struct {
	mode   Mode
	src    source.Source
	demo   source.Source
	sel    *Selection
	errMsg string

	pending *ReadRequest
	seq     uint64
}

// New returns a controller in ModeNoRoot. demo is the source installed by
// UseDemo.
func New(demo source.Source) *Controller {
	return &Controller{demo: demo}
}

func (c *Controller) Mode() Mode { return c.mode }

// Source returns the active source, or nil in ModeNoRoot.
func (c *Controller) Source() source.Source { return c.src }

// Error returns the banner message, or "".
func (c *Controller) Error() string { return c.errMsg }

// Selected returns the selected file once its content has arrived.
func (c *Controller) Selected() (Selection, bool) {
	if c.sel == nil {
		return Selection{}, false
	}
	return *c.sel, true
}

// Pending returns the file whose content is still loading.
func (c *Controller) Pending() (source.Handle, bool) {
	if c.pending == nil {
		return source.Handle{}, false
	}
	return c.pending.Handle, true
}

// SelectedPath returns the path to highlight: the loaded or loading file.
func (c *Controller) SelectedPath() string {
	if c.pending != nil {
		return c.pending.Handle.Path
	}
	if c.sel != nil {
		return c.sel.Handle.Path
	}
	return ""
}

// Title returns the navigator heading for the current mode.
func (c *Controller) Title() string {
	if c.mode == ModeDemo {
		return "Demo File Explorer"
	}
	return "File Explorer"
}

// Subtitle returns the header subtitle for the current mode.
func (c *Controller) Subtitle() string {
	if c.src == nil {
		return SubtitleNoRoot
	}
	return "Analyzing files in: " + c.src.Name()
}

// UseDemo switches to the demo tree, dropping any directory source,
// selection, pending read and error.
func (c *Controller) UseDemo() {
	c.mode = ModeDemo
	c.src = c.demo
	c.reset()
	logging.UI("mode -> demo")
	logging.Audit(logging.CategoryUI).SourceMount(c.mode.String(), c.demo.Name())
}

// ChooseDirectory switches to a freshly opened directory.
func (c *Controller) ChooseDirectory(src source.Source) {
	c.mode = ModeDirectory
	c.src = src
	c.reset()
	logging.UI("mode -> directory %q", src.Name())
	logging.Audit(logging.CategoryUI).SourceMount(c.mode.String(), src.Name())
}

func (c *Controller) reset() {
	c.sel = nil
	c.pending = nil
	c.errMsg = ""
}

// PickerFailed records a failed or cancelled directory pick. The mode never
// changes here.
func (c *Controller) PickerFailed(err error) {
	switch {
	case err == nil, errors.Is(err, source.ErrCancelled):
		logging.UIDebug("directory pick cancelled")
		return
	case errors.Is(err, source.ErrCapabilityUnavailable):
		c.errMsg = MsgPickerUnavailable
	case errors.Is(err, source.ErrAccessDenied):
		c.errMsg = MsgAccessDenied
	default:
		c.errMsg = MsgPickerFailed
	}
	logging.Get(logging.CategoryUI).Warn("directory pick failed: %v", err)
	logging.Audit(logging.CategoryUI).PickerError(err)
}

// DismissError clears the banner.
func (c *Controller) DismissError() { c.errMsg = "" }

// Select makes file the selection target. Re-selecting the selected or
// loading path does nothing and returns false. Otherwise the old selection
// is cleared and a read request with a fresh sequence number is returned.
func (c *Controller) Select(file source.Handle) (ReadRequest, bool) {
	if c.src == nil || file.IsDir() {
		return ReadRequest{}, false
	}
	if file.Path == c.SelectedPath() {
		return ReadRequest{}, false
	}

	c.seq++
	c.sel = nil
	c.pending = &ReadRequest{Source: c.src, Handle: file, Seq: c.seq}
	logging.UIDebug("select %s (seq %d)", file.Path, c.seq)
	return *c.pending, true
}

// CompleteRead installs a read result if it belongs to the pending request.
func (c *Controller) CompleteRead(r ReadResult) bool {
	if c.pending == nil || c.pending.Seq != r.Seq {
		logging.UIDebug("dropped stale read for %s (seq %d)", r.Handle.Path, r.Seq)
		return false
	}
	if r.Err != nil {
		logging.Get(logging.CategorySource).Warn("read %s: %v", r.Handle.Path, r.Err)
	}
	logging.Audit(logging.CategorySource).FileRead(r.Handle.Path, len(r.Content), r.Err)
	c.sel = &Selection{Handle: r.Handle, Content: r.Content}
	c.pending = nil
	return true
}
