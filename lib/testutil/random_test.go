package testutil

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomSwitch(t *testing.T) {
	rndm := rand.New(rand.NewSource(1))
	choose := RandomSwitch(1, 3)

	counts := [2]int{}
	for range 4000 {
		counts[choose(rndm)]++
	}
	require.InDelta(t, 1000, counts[0], 200)
	require.InDelta(t, 3000, counts[1], 200)

	require.Panics(t, func() { RandomSwitch() })
	require.Panics(t, func() { RandomSwitch(1, 0) })
}

func TestRandomStrings(t *testing.T) {
	rndm := rand.New(rand.NewSource(2))
	require.Regexp(t, `^[a-z]{8}$`, RandomString(rndm, 8))
	require.Regexp(t, `^[A-Z]{5}$`, RandomUpper(rndm, 5))
}
