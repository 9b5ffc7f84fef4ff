package funcid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/debtmap/debtmap/pkg/funcid"
)

func TestStripGenerics_StripAll(t *testing.T) {
	assert.Equal(t, "foo", funcid.StripGenerics("foo<T,U>", funcid.StripAll))
	assert.Equal(t, "Module::Type::method", funcid.StripGenerics("Module::Type::method<T>", funcid.StripAll))
	assert.Equal(t, "foo", funcid.StripGenerics("foo", funcid.StripAll))
}

func TestStripGenerics_PreserveOneLevel(t *testing.T) {
	assert.Equal(t, "foo<T>", funcid.StripGenerics("foo<T>", funcid.PreserveOneLevel))
	assert.Equal(t, "foo<T>", funcid.StripGenerics("foo<T<U>>", funcid.PreserveOneLevel))
}

func TestNormalize_CollapsesWhitespaceAndPath(t *testing.T) {
	id := funcid.FunctionId{File: `a\b\c.rs`, Name: "foo <T,  U>   bar", Line: 3}
	got := funcid.Normalize(id, funcid.StripAll)
	assert.Equal(t, "foo bar", got.Name)
	assert.Equal(t, "a/b/c.rs", got.File)
}

func TestKeys(t *testing.T) {
	id := funcid.FunctionId{File: "a.rs", Name: "foo<T>", ModulePath: "m", Line: 10}
	assert.Equal(t, funcid.FuzzyKey{File: "a.rs", Name: "foo"}, id.Fuzzy())
	assert.Equal(t, funcid.SimpleKey{Name: "foo"}, id.Simple())
}

type stubIndex struct {
	exact  map[funcid.ExactKey]funcid.FunctionId
	fuzzy  map[funcid.FuzzyKey][]funcid.FunctionId
	simple map[funcid.SimpleKey][]funcid.FunctionId
}

func (s stubIndex) ByExact(k funcid.ExactKey) (funcid.FunctionId, bool) {
	v, ok := s.exact[k]
	return v, ok
}

func (s stubIndex) ByFuzzy(k funcid.FuzzyKey) []funcid.FunctionId { return s.fuzzy[k] }

func (s stubIndex) BySimple(k funcid.SimpleKey) []funcid.FunctionId { return s.simple[k] }

func TestLookup_ExactWins(t *testing.T) {
	id := funcid.FunctionId{File: "a.rs", Name: "foo", ModulePath: "m", Line: 1}
	idx := stubIndex{exact: map[funcid.ExactKey]funcid.FunctionId{id.Exact(): id}}

	match, ok := funcid.Lookup(idx, id, funcid.Query{})
	assert.True(t, ok)
	assert.Equal(t, funcid.ConfidenceExact, match.Confidence)
}

func TestLookup_FuzzyPrefersSameModule(t *testing.T) {
	query := funcid.FunctionId{File: "a.rs", Name: "foo", ModulePath: "mod_a", Line: 5}
	candA := funcid.FunctionId{File: "a.rs", Name: "foo", ModulePath: "mod_a", Line: 50}
	candB := funcid.FunctionId{File: "a.rs", Name: "foo", ModulePath: "mod_b", Line: 6}

	idx := stubIndex{fuzzy: map[funcid.FuzzyKey][]funcid.FunctionId{
		query.Fuzzy(): {candB, candA},
	}}

	match, ok := funcid.Lookup(idx, query, funcid.Query{CallerModule: "mod_a", Line: 5})
	assert.True(t, ok)
	assert.Equal(t, funcid.ConfidenceFuzzy, match.Confidence)
	assert.Equal(t, "mod_a", match.ID.ModulePath)
}

func TestLookup_NameOnlyReturnsNoneOnAmbiguity(t *testing.T) {
	query := funcid.FunctionId{Name: "any"}
	candA := funcid.FunctionId{File: "x.rs", Name: "any"}
	candB := funcid.FunctionId{File: "y.rs", Name: "any"}

	idx := stubIndex{simple: map[funcid.SimpleKey][]funcid.FunctionId{
		query.Simple(): {candA, candB},
	}}

	_, ok := funcid.Lookup(idx, query, funcid.Query{CallerFile: "z.rs"})
	assert.False(t, ok)
}

func TestLookup_NameOnlySameFileWins(t *testing.T) {
	query := funcid.FunctionId{Name: "any"}
	candA := funcid.FunctionId{File: "x.rs", Name: "any"}
	candB := funcid.FunctionId{File: "y.rs", Name: "any"}

	idx := stubIndex{simple: map[funcid.SimpleKey][]funcid.FunctionId{
		query.Simple(): {candA, candB},
	}}

	match, ok := funcid.Lookup(idx, query, funcid.Query{CallerFile: "x.rs"})
	assert.True(t, ok)
	assert.Equal(t, "x.rs", match.ID.File)
}
