package playback

import (
	"fmt"
	"testing"

	"github.com/banshee-data/scanview/internal/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSeq(n int) scan.Sequence {
	seq := make(scan.Sequence, n)
	for i := range seq {
		seq[i] = scan.Sample{Angle: float64(i), Distance: float64(i + 1), Time: float64(i + 1)}
	}
	return seq
}

func TestCursor_FirstAdvanceLandsOnZero(t *testing.T) {
	var c Cursor
	assert.False(t, c.Started())

	idx, ok := c.Advance(5)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.True(t, c.Started())

	idx, _ = c.Advance(5)
	assert.Equal(t, 1, idx)
}

func TestCursor_WrapInvariant(t *testing.T) {
	for n := 1; n <= 17; n++ {
		for start := 0; start < n; start++ {
			t.Run(fmt.Sprintf("n=%d/start=%d", n, start), func(t *testing.T) {
				c := Cursor{index: start, started: true}
				for i := 0; i < n; i++ {
					c.Advance(n)
				}
				assert.Equal(t, start, c.Index())
			})
		}
	}
}

func TestCursor_BoundsSafety(t *testing.T) {
	priors := []int{0, 1, 3, 7, 99, 1000, -4}
	lengths := []int{1, 2, 3, 5, 8, 100}

	for _, prior := range priors {
		for _, n := range lengths {
			c := Cursor{index: prior, started: true}
			idx, ok := c.Advance(n)
			require.True(t, ok)
			assert.GreaterOrEqual(t, idx, 0, "prior=%d n=%d", prior, n)
			assert.Less(t, idx, n, "prior=%d n=%d", prior, n)
		}
	}
}

func TestCursor_EmptySequenceDoesNotAdvance(t *testing.T) {
	c := Cursor{index: 4, started: true}
	idx, ok := c.Advance(0)
	assert.False(t, ok)
	assert.Equal(t, 4, idx)
	assert.Equal(t, 4, c.Index())

	var fresh Cursor
	_, ok = fresh.Advance(0)
	assert.False(t, ok)
	assert.False(t, fresh.Started(), "an empty sequence must not start playback")

	window, ok := fresh.Step(nil, 10)
	assert.False(t, ok)
	assert.Empty(t, window)
}

func TestCursor_ShrinkBetweenTicks(t *testing.T) {
	c := Cursor{}
	long := makeSeq(10)
	for i := 0; i < 8; i++ {
		c.Step(long, 3)
	}
	require.Equal(t, 7, c.Index())

	short := makeSeq(4)
	window, ok := c.Step(short, 3)
	require.True(t, ok)
	// 7 mod 4 = 3, advanced by one wraps to 0
	assert.Equal(t, 0, c.Index())
	assert.Len(t, window, 3)
}

func TestWindowAt_TailTruncation(t *testing.T) {
	seq := makeSeq(10)
	for w := 1; w <= 12; w++ {
		for idx := 0; idx < len(seq); idx++ {
			window := WindowAt(seq, idx, w)
			want := w
			if rest := len(seq) - idx; rest < want {
				want = rest
			}
			require.Len(t, window, want, "w=%d idx=%d", w, idx)
			assert.Equal(t, seq[idx], window[0])
			if idx+w > len(seq) {
				assert.NotEqual(t, w, len(window), "tail window must be truncated, not wrapped")
				assert.Equal(t, seq[len(seq)-1], window[len(window)-1])
			}
		}
	}
}

func TestWindowAt_Degenerate(t *testing.T) {
	seq := makeSeq(3)
	assert.Empty(t, WindowAt(seq, 0, 0))
	assert.Empty(t, WindowAt(seq, 0, -5))
	assert.Empty(t, WindowAt(seq, 3, 2))
	assert.Empty(t, WindowAt(seq, -1, 2))
	assert.Empty(t, WindowAt(nil, 0, 2))
}

func TestWindowAt_WindowLargerThanSequence(t *testing.T) {
	seq := makeSeq(4)
	var c Cursor
	lengths := []int{}
	for i := 0; i < 8; i++ {
		w, _ := c.Step(seq, 100)
		lengths = append(lengths, len(w))
	}
	assert.Equal(t, []int{4, 3, 2, 1, 4, 3, 2, 1}, lengths)
}
