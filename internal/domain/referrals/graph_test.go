package referrals

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	id       string
	referrer string
}

func (n node) NodeKey() string     { return n.id }
func (n node) ReferrerKey() string { return n.referrer }

func keys(ns []node) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.id)
	}
	return out
}

// a -> b, c ; b -> d, e ; c -> f ; g sin referidor
func sampleGraph() []node {
	return []node{
		{id: "a"},
		{id: "b", referrer: "a"},
		{id: "c", referrer: "a"},
		{id: "d", referrer: "b"},
		{id: "e", referrer: "b"},
		{id: "f", referrer: "c"},
		{id: "g"},
	}
}

func TestDirectOf(t *testing.T) {
	all := sampleGraph()

	assert.Equal(t, []string{"b", "c"}, keys(DirectOf("a", all)))
	assert.Equal(t, []string{"d", "e"}, keys(DirectOf("b", all)))
	assert.Empty(t, DirectOf("g", all))
	assert.Empty(t, DirectOf("", all))
	assert.Empty(t, DirectOf("missing", all))
}

func TestSecondLevelOf(t *testing.T) {
	all := sampleGraph()

	assert.Equal(t, []string{"d", "e", "f"}, keys(SecondLevelOf("a", all)))
	assert.Empty(t, SecondLevelOf("b", all))
	assert.Equal(t, 3, SecondLevelCount("a", all))
}

func TestSecondLevelCount_IsPathAdditive(t *testing.T) {
	// Un mismo id aparece dos veces (datos sucios): el listado lo muestra una
	// vez, el conteo lo suma por cada camino.
	all := []node{
		{id: "a"},
		{id: "b", referrer: "a"},
		{id: "b", referrer: "a"},
		{id: "x", referrer: "b"},
	}

	assert.Equal(t, []string{"x"}, keys(SecondLevelOf("a", all)))
	assert.Equal(t, 2, SecondLevelCount("a", all))
}

func TestCycleDoesNotLoop(t *testing.T) {
	all := []node{
		{id: "a", referrer: "b"},
		{id: "b", referrer: "a"},
	}

	assert.Equal(t, []string{"b"}, keys(DirectOf("a", all)))
	assert.Equal(t, []string{"a"}, keys(SecondLevelOf("a", all)))
	assert.Equal(t, 1, SecondLevelCount("a", all))
}

func TestSummarize(t *testing.T) {
	all := sampleGraph()

	s, err := Summarize("a", all)
	require.NoError(t, err)
	assert.Equal(t, 2, s.DirectCount)
	assert.Equal(t, 3, s.SecondLevelCount)
	assert.Equal(t, []string{"b", "c"}, keys(s.Direct))
	assert.Equal(t, []string{"d", "e", "f"}, keys(s.SecondLevel))

	_, err = Summarize("nope", all)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCounts_MatchDefinitions_RandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(40)
		all := make([]node, 0, n)
		for i := 0; i < n; i++ {
			ref := ""
			if i > 0 && rng.Intn(4) != 0 {
				ref = fmt.Sprintf("c%d", rng.Intn(i))
			}
			all = append(all, node{id: fmt.Sprintf("c%d", i), referrer: ref})
		}

		for _, c := range all {
			want := 0
			for _, o := range all {
				if o.referrer == c.id {
					want++
				}
			}
			require.Equal(t, want, DirectCount(c.id, all), "direct count for %s", c.id)

			wantSecond := 0
			for _, d := range DirectOf(c.id, all) {
				wantSecond += DirectCount(d.id, all)
			}
			require.Equal(t, wantSecond, SecondLevelCount(c.id, all), "second level count for %s", c.id)
		}
	}
}
