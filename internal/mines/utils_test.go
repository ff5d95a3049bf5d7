package mines

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeighbors(t *testing.T) {
	b := newEmptyBoard(Params{Rows: 3, Cols: 4})

	assert.Equal(t, []int{1, 4, 5}, slices.Sorted(b.neighbors(0)))
	assert.Equal(t, []int{0, 1, 2, 4, 6, 8, 9, 10}, slices.Sorted(b.neighbors(5)))
	assert.Equal(t, []int{6, 7, 10}, slices.Sorted(b.neighbors(11)))

	single := newEmptyBoard(Params{Rows: 1, Cols: 1})
	assert.Empty(t, slices.Collect(single.neighbors(0)))
}

func TestStatusText(t *testing.T) {
	for _, s := range []Status{Open, Cleared, Flagged} {
		text, err := s.MarshalText()
		assert.NoError(t, err)
		var back Status
		assert.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	var s Status
	assert.Error(t, s.UnmarshalText([]byte("boom")))
	assert.Equal(t, "won", Won.String())
	assert.True(t, Lost.Terminal())
	assert.False(t, Ongoing.Terminal())
}
