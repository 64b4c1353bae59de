package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedKeyCompare(t *testing.T) {
	assert.Equal(t, int64(0), OrderedKeyCompare(7, 7))
	assert.Equal(t, int64(-1), OrderedKeyCompare(3, 7))
	assert.Equal(t, int64(1), OrderedKeyCompare(7, 3))

	assert.Equal(t, int64(-1), OrderedKeyCompare("abc", "abd"))
	assert.Equal(t, int64(1), OrderedKeyCompare(2.5, 2.25))

	assert.Equal(t, int64(0), ReverseOrderedKeyCompare(uint8(9), uint8(9)))
	assert.Equal(t, int64(1), ReverseOrderedKeyCompare(3, 7))
	assert.Equal(t, int64(-1), ReverseOrderedKeyCompare("b", "a"))
}
