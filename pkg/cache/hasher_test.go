package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasher_Deterministic(t *testing.T) {
	a := NewHasher().Int(3).Float(0.05).Ints([]int{1, 2}).String("x").Sum()
	b := NewHasher().Int(3).Float(0.05).Ints([]int{1, 2}).String("x").Sum()

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHasher_LengthPrefixes(t *testing.T) {
	// [1,2],[3] и [1],[2,3] дают разные ключи
	a := NewHasher().Ints([]int{1, 2}).Ints([]int{3}).Sum()
	b := NewHasher().Ints([]int{1}).Ints([]int{2, 3}).Sum()
	assert.NotEqual(t, a, b)

	assert.NotEqual(t,
		NewHasher().String("ab").String("c").Sum(),
		NewHasher().String("a").String("bc").Sum())
}

func TestHasher_FloatBits(t *testing.T) {
	assert.NotEqual(t, NewHasher().Float(0.1).Sum(), NewHasher().Float(0.1000000001).Sum())
	assert.NotEqual(t, NewHasher().Float(1).Sum(), NewHasher().Int(1).Sum())
}

func TestShortHash(t *testing.T) {
	assert.Len(t, ShortHash([]byte("data")), 16)
	assert.Equal(t, ShortHash([]byte("data")), ShortHash([]byte("data")))
}
