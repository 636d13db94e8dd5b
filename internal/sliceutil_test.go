package internal

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	xs := []int{1, 2, 3, 4, 5}
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk(xs, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Chunk(xs, 10))
	assert.Nil(t, Chunk(xs, 0))
	assert.Nil(t, Chunk([]int{}, 3))

	// appending to a chunk must not clobber its neighbour
	c := Chunk(xs, 2)
	_ = append(c[0], 99)
	assert.Equal(t, 3, xs[2])
}

func TestMapContains(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, strconv.Itoa))
	assert.True(t, Contains([]string{"text", "json"}, "json"))
	assert.False(t, Contains([]string{"text", "json"}, "yaml"))
}

func TestBuilderPool(t *testing.T) {
	sb := GetBuilder()
	sb.WriteString("dirty")
	PutBuilder(sb)
	assert.Zero(t, GetBuilder().Len())
}
