package setutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet[uint]()

	assert.True(t, s.Add(3))
	assert.True(t, s.Add(1))
	assert.False(t, s.Add(3))
	assert.True(t, s.Add(2))

	assert.Equal(t, []uint{3, 1, 2}, s.Items())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(9))
	assert.Equal(t, 1, s.Position(1))
	assert.Equal(t, -1, s.Position(9))
}
