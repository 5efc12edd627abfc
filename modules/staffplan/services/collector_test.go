package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector_FirstSeenOrder(t *testing.T) {
	c := NewCollector()
	for _, v := range []string{"ب", "أ", "ب", "ج", "أ"} {
		c.Add(Clean(v))
	}
	c.Add(nil)

	require.Equal(t, []CollectedItem{
		{Text: "ب", SortOrder: 0},
		{Text: "أ", SortOrder: 1},
		{Text: "ج", SortOrder: 2},
	}, c.Items())
	require.Equal(t, 3, c.Len())
}

func TestCollector_ExactMatchOnly(t *testing.T) {
	c := NewCollector()
	require.True(t, c.Add(Clean("KPI")))
	require.True(t, c.Add(Clean("kpi")))
	require.False(t, c.Add(Clean(" KPI ")))
}
