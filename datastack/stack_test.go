package datastack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopIsLIFO(t *testing.T) {
	s := New()
	s.Push(ConstCell{Index: 1})
	s.Push(NameCell{Index: 2})

	top, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, NameCell{Index: 2}, top)

	bottom, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, ConstCell{Index: 1}, bottom)

	_, ok = s.Pop()
	assert.False(t, ok, "popping an empty stack must report false, never panic or zero-value")
}

func TestSnapshotIsBottomFirstAndDoesNotAliasTheStack(t *testing.T) {
	s := New()
	s.Push(TempCell{ID: 1})
	s.Push(TempCell{ID: 2})

	snap := s.Snapshot()
	assert.Equal(t, []Cell{TempCell{ID: 1}, TempCell{ID: 2}}, snap)

	s.Push(TempCell{ID: 3})
	assert.Len(t, snap, 2, "snapshot must not observe later mutation")
}

func TestResetEmptiesTheStack(t *testing.T) {
	s := New()
	s.Push(TempCell{ID: 1})
	s.Reset()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Peek()
	assert.False(t, ok)
}

func TestReplaceAllDiscardsPriorContents(t *testing.T) {
	s := New()
	s.Push(TempCell{ID: 99})
	s.ReplaceAll([]Cell{TempCell{ID: 1}, TempCell{ID: 2}})

	assert.Equal(t, 2, s.Len())
	top, _ := s.Peek()
	assert.Equal(t, TempCell{ID: 2}, top)
}

func TestCellVariantsAreDistinctTypes(t *testing.T) {
	var cells = []Cell{
		ConstCell{Index: 0},
		NameCell{Index: 0},
		VarNameCell{Index: 0},
		TempCell{ID: 0},
		CodeRef{IsFunOrClass: true},
		MapCell{Entries: []MapEntry{{Key: ConstCell{Index: 0}, Value: ConstCell{Index: 1}}}},
		BuildClassMarkerCell{},
	}
	seen := make(map[Cell]bool, len(cells))
	for _, c := range cells {
		if mc, ok := c.(MapCell); ok {
			// MapCell embeds a slice, which is not comparable; just assert
			// it implements Cell.
			var _ Cell = mc
			continue
		}
		seen[c] = true
	}
	assert.Len(t, seen, len(cells)-1)
}
