package godobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/debtmap/debtmap/pkg/godobject"
)

func TestAnalyze_SmallCohesiveContainerIsNotGodObject(t *testing.T) {
	t.Parallel()

	c := godobject.Container{
		Name:   "Counter",
		File:   "counter.rs",
		Fields: []string{"value"},
		Methods: []godobject.Method{
			{Name: "Increment", LinesOfCode: 3, Complexity: 1, CallsMethods: []string{"clamp"}, AccessFields: []string{"value"}},
			{Name: "Decrement", LinesOfCode: 3, Complexity: 1, CallsMethods: []string{"clamp"}, AccessFields: []string{"value"}},
			{Name: "clamp", LinesOfCode: 2, Complexity: 1, AccessFields: []string{"value"}},
		},
	}

	result := godobject.Analyze(c)

	assert.False(t, result.IsGodObject)
	assert.Equal(t, 3, result.MethodCount)
	assert.Equal(t, 1, result.FieldCount)
}

func TestAnalyze_LargeContainerWithDistinctResponsibilitiesIsGodObject(t *testing.T) {
	t.Parallel()

	var methods []godobject.Method

	// A validation-shaped cluster of 12 methods, cohesive among themselves.
	for i := 0; i < 12; i++ {
		methods = append(methods, godobject.Method{
			Name:         nthName("Validate", i),
			LinesOfCode:  5,
			Complexity:   2,
			CallsMethods: siblingCluster("Validate", i, 12),
			AccessFields: []string{"rules"},
		})
	}

	// A persistence-shaped cluster of 12 methods, cohesive among themselves,
	// with no edges to the validation cluster.
	for i := 0; i < 12; i++ {
		methods = append(methods, godobject.Method{
			Name:         nthName("Save", i),
			LinesOfCode:  8,
			Complexity:   3,
			CallsMethods: siblingCluster("Save", i, 12),
			AccessFields: []string{"store"},
		})
	}

	c := godobject.Container{
		Name:    "RecordManager",
		File:    "record_manager.rs",
		Fields:  []string{"rules", "store"},
		Methods: methods,
	}

	result := godobject.Analyze(c)

	assert.True(t, result.IsGodObject)
	assert.GreaterOrEqual(t, result.ResponsibilityCount, 2)
	assert.NotContains(t, result.Recommendation, "misc")
}

func nthName(prefix string, i int) string {
	return prefix + string(rune('A'+i))
}

// siblingCluster returns the names of every other method in a same-prefix
// cluster of size n, so that cluster forms a fully connected internal
// call graph with zero external edges.
func siblingCluster(prefix string, i, n int) []string {
	var names []string

	for j := 0; j < n; j++ {
		if j == i {
			continue
		}

		names = append(names, nthName(prefix, j))
	}

	return names
}
