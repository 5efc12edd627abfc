package ids

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUUIDv7_SortsInCreationOrder(t *testing.T) {
	gen := UUIDv7()
	got := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		got = append(got, gen.New())
	}

	require.True(t, sort.StringsAreSorted(got), "ids must sort lexically in creation order")

	seen := make(map[string]struct{}, len(got))
	for _, id := range got {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	seq := NewSequence("trk")
	require.Equal(t, "trk000001", seq.New())
	require.Equal(t, "trk000002", seq.New())
	require.Equal(t, "trk000003", seq.New())
}
