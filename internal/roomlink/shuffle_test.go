package roomlink

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopRandomIsDeterministicForAGivenSeed(t *testing.T) {
	build := func() map[[2]int]bool {
		return map[[2]int]bool{{1, 2}: true, {3, 4}: true, {5, 6}: true}
	}

	rng1 := rand.New(rand.NewSource(42))
	m1 := build()
	var got1 [][2]int
	for len(m1) > 0 {
		got1 = append(got1, popRandom(m1, rng1))
	}

	rng2 := rand.New(rand.NewSource(42))
	m2 := build()
	var got2 [][2]int
	for len(m2) > 0 {
		got2 = append(got2, popRandom(m2, rng2))
	}

	assert.Equal(t, got1, got2)
}

func TestPopSetMemberRemovesTheChosenKey(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := map[int]bool{10: true, 20: true, 30: true}
	picked := popSetMember(m, rng)
	assert.Len(t, m, 2)
	assert.False(t, m[picked])
}

func TestCloneSetIsIndependentOfItsSource(t *testing.T) {
	orig := map[int]bool{1: true, 2: true}
	clone := cloneSet(orig)
	clone[3] = true
	assert.Len(t, orig, 2)
	assert.Len(t, clone, 3)
}
