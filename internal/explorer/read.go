package explorer

import "context"

// Read runs req against its source. The content is always displayable, even
// on error.
func Read(ctx context.Context, req ReadRequest) ReadResult {
	content, err := req.Source.ReadFile(ctx, req.Handle)
	return ReadResult{Handle: req.Handle, Seq: req.Seq, Content: content, Err: err}
}
