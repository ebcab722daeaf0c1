package ledmatrix

import "context"

// commit is a draw plane snapshot waiting for the scan-out goroutine.
type commit struct {
	snapshot *plane
	done     chan struct{}
}

// CommitDrawing publishes the draw plane to the display. The scan-out
// goroutine picks it up on its next ServiceCommit call.
//
// Only one commit can be pending: a second call first waits for the previous
// one to be serviced. With wait set, CommitDrawing also waits for its own
// commit. ctx bounds both waits; a commit abandoned by a cancelled ctx stays
// pending and is still applied.
func (c *Compositor) CommitDrawing(ctx context.Context, wait bool) error {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if prev := c.pending.Load(); prev != nil {
		select {
		case <-prev.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.drawMu.Lock()
	snap := newPlane(c.draw.rows, c.draw.words*32)
	snap.copyFrom(c.draw)
	c.drawMu.Unlock()

	cm := &commit{snapshot: snap, done: make(chan struct{})}
	c.pending.Store(cm)
	if !wait {
		return nil
	}
	select {
	case <-cm.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CommitPending reports whether a commit is waiting for ServiceCommit.
func (c *Compositor) CommitPending() bool {
	return c.pending.Load() != nil
}

// ServiceCommit applies a pending commit: the snapshot becomes the committed
// drawing and the refresh plane is redrawn. It reports whether a commit was
// applied. It must be called from the scan-out goroutine.
func (c *Compositor) ServiceCommit() bool {
	cm := c.pending.Load()
	if cm == nil {
		return false
	}
	c.committed.copyFrom(cm.snapshot)
	c.RedrawAll()
	c.pending.Store(nil)
	close(cm.done)
	return true
}
