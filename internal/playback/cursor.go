package playback

import "github.com/banshee-data/scanview/internal/scan"

// Cursor is the wrapping playback index. It is owned by the engine loop and
// is never shared. The zero value sits just before the first sample, so the
// first Advance lands on index 0.
type Cursor struct {
	index   int
	started bool
}

// Index returns the current position, 0 before the first Advance.
func (c *Cursor) Index() int { return c.index }

// Started reports whether the cursor has advanced at least once.
func (c *Cursor) Started() bool { return c.started }

// Advance moves the cursor one step over a sequence of length n and returns
// the new index. With n == 0 nothing happens and ok is false. The stored
// index is first re-clamped against n because the sequence may have been
// replaced by a shorter one since the last tick.
func (c *Cursor) Advance(n int) (index int, ok bool) {
	if n <= 0 {
		return c.index, false
	}
	if !c.started {
		c.started = true
		c.index = 0
		return c.index, true
	}
	c.index = ((c.index%n+n)%n + 1) % n
	return c.index, true
}

// Step advances the cursor over seq and returns the visible window.
func (c *Cursor) Step(seq scan.Sequence, windowSize int) (scan.Sequence, bool) {
	idx, ok := c.Advance(len(seq))
	if !ok {
		return nil, false
	}
	return WindowAt(seq, idx, windowSize), true
}

// WindowAt returns seq[index:min(index+windowSize, len(seq))]. Near the end
// of the sequence the window is shorter than windowSize; its contents never
// wrap to the start. A non-positive windowSize or an index outside the
// sequence yields an empty window.
func WindowAt(seq scan.Sequence, index, windowSize int) scan.Sequence {
	n := len(seq)
	if index < 0 || index >= n || windowSize < 1 {
		return scan.Sequence{}
	}
	end := n
	if windowSize < n-index {
		end = index + windowSize
	}
	return seq[index:end]
}
