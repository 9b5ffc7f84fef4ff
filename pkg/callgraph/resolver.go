package callgraph

import (
	"strings"

	"github.com/debtmap/debtmap/pkg/funcid"
)

// stdMethodExclusions is the default set of well-known iterator/std-trait
// method names excluded from project-local resolution, per spec §4.4.1.
var stdMethodExclusions = map[string]struct{}{
	"any": {}, "all": {}, "map": {}, "filter": {}, "fold": {}, "collect": {},
	"find": {}, "position": {}, "enumerate": {}, "zip": {}, "chain": {},
	"clone": {}, "to_string": {}, "into": {}, "from": {}, "unwrap": {},
	"expect": {}, "unwrap_or": {}, "and_then": {}, "or_else": {},
}

// TraitRegistry collects, per trait name, the impl-method names gathered
// during extraction, consulted by the resolver for TraitMethod dispatch.
// Trait definitions themselves are not stored.
type TraitRegistry struct {
	// implementations maps "trait_name" -> set of "receiver_type::method"
	// qualified names known to implement that trait's methods.
	implementations map[string]map[string]struct{}
}

// NewTraitRegistry creates an empty trait registry.
func NewTraitRegistry() *TraitRegistry {
	return &TraitRegistry{implementations: make(map[string]map[string]struct{})}
}

// RegisterImpl records that qualifiedMethod (e.g. "Foo::bar") implements a
// method of traitName.
func (r *TraitRegistry) RegisterImpl(traitName, qualifiedMethod string) {
	if r.implementations[traitName] == nil {
		r.implementations[traitName] = make(map[string]struct{})
	}

	r.implementations[traitName][qualifiedMethod] = struct{}{}
}

// Implementations returns the qualified method names registered against traitName.
func (r *TraitRegistry) Implementations(traitName string) []string {
	impls := r.implementations[traitName]

	out := make([]string, 0, len(impls))
	for name := range impls {
		out = append(out, name)
	}

	return out
}

// ResolverConfig parameterizes standard-library exclusion.
type ResolverConfig struct {
	ExcludeStdMethods    bool
	AdditionalExclusions []string
}

// DefaultResolverConfig returns the spec's default resolver configuration.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{ExcludeStdMethods: true}
}

// Resolver converts UnresolvedCall values into FunctionCall edges against a
// merged Graph, applying standard-library exclusion and the call-site-type
// dispatch rules of spec §4.4. It never matches a base method name across
// different receiver types (the load-bearing invariant eliminating
// cross-type false positives).
type Resolver struct {
	graph    *Graph
	traits   *TraitRegistry
	config   ResolverConfig
	excluded map[string]struct{}

	// ResolvedTraitMethodCount is the count of TraitMethod calls
	// successfully resolved via the trait registry, reported per run.
	ResolvedTraitMethodCount int
}

// NewResolver creates a Resolver bound to graph and traits.
func NewResolver(graph *Graph, traits *TraitRegistry, config ResolverConfig) *Resolver {
	excluded := make(map[string]struct{}, len(stdMethodExclusions)+len(config.AdditionalExclusions))
	for k := range stdMethodExclusions {
		excluded[k] = struct{}{}
	}

	for _, extra := range config.AdditionalExclusions {
		excluded[extra] = struct{}{}
	}

	return &Resolver{graph: graph, traits: traits, config: config, excluded: excluded}
}

// Resolve processes the queue of unresolved calls, adding resolved edges
// to the bound graph. It returns the unresolved calls that were dropped
// (never guessed), in order.
func (r *Resolver) Resolve(queue []UnresolvedCall) []UnresolvedCall {
	var dropped []UnresolvedCall

	for _, call := range queue {
		edge, ok := r.ResolveMatch(call)
		if !ok {
			dropped = append(dropped, call)

			continue
		}

		if err := r.graph.AddEdge(edge); err != nil {
			dropped = append(dropped, call)

			continue
		}

		if edge.CallKind == ViaTrait {
			r.ResolvedTraitMethodCount++
		}
	}

	return dropped
}

// ResolveMatch runs the candidate search for call against the bound graph
// and trait registry without mutating the graph. It is safe to call
// concurrently from multiple goroutines over disjoint calls, since the
// graph is only read (never written) here; callers that want to
// parallelize resolution (spec §5: "internally parallelizable over
// independent unresolved calls") fan this out and then serialize the
// resulting AddEdge calls themselves.
func (r *Resolver) ResolveMatch(call UnresolvedCall) (FunctionCall, bool) {
	if r.isExcluded(call) {
		return FunctionCall{}, false
	}

	return r.resolveOne(call)
}

// isExcluded reports whether call should be dropped up front per the
// standard-library exclusion rule: a well-known method name combined with
// a TraitMethod site or an unknown receiver type.
func (r *Resolver) isExcluded(call UnresolvedCall) bool {
	if !r.config.ExcludeStdMethods {
		return false
	}

	methodName := baseMethodName(call.CalleeName)
	if _, known := r.excluded[methodName]; !known {
		return false
	}

	switch call.CallSiteType.Kind {
	case SiteTraitMethod:
		return true
	case SiteInstance:
		return call.CallSiteType.ReceiverType == ""
	default:
		return false
	}
}

func (r *Resolver) resolveOne(call UnresolvedCall) (FunctionCall, bool) {
	switch call.CallSiteType.Kind {
	case SiteStatic:
		return r.resolveStatic(call)
	case SiteInstance:
		return r.resolveInstance(call)
	case SiteTraitMethod:
		return r.resolveTraitMethod(call)
	case SiteIndirect:
		return r.resolveIndirect(call)
	default:
		return FunctionCall{}, false
	}
}

// resolveStatic matches an exact qualified name, then a qualified-suffix
// match ("...::name"). No fallback to simple name.
func (r *Resolver) resolveStatic(call UnresolvedCall) (FunctionCall, bool) {
	if callee, ok := r.exactByName(call.CalleeName); ok {
		return r.newCall(call, callee, Direct), true
	}

	// Qualified-suffix matching only applies to already-qualified paths
	// ("mod::func"); a bare single-segment name never falls back to a
	// suffix scan, which would otherwise degrade to a simple-name match.
	if strings.Contains(call.CalleeName, "::") {
		if callee, ok := r.uniqueSuffixMatch(call.CalleeName); ok {
			return r.newCall(call, callee, Direct), true
		}
	}

	return FunctionCall{}, false
}

// resolveInstance handles Instance{receiver_type} and
// Instance{receiver_type: None} per spec §4.4.2.
func (r *Resolver) resolveInstance(call UnresolvedCall) (FunctionCall, bool) {
	receiver := call.CallSiteType.ReceiverType
	if receiver == "" {
		if !call.SameFileHint {
			return FunctionCall{}, false
		}

		if callee, ok := r.uniqueSameFileMatch(call); ok {
			return r.newCall(call, callee, Direct), true
		}

		return FunctionCall{}, false
	}

	qualified := receiver + "::" + baseMethodName(call.CalleeName)
	if callee, ok := r.exactByName(qualified); ok {
		return r.newCall(call, callee, Direct), true
	}

	// Never match by base name across different receiver types: narrow
	// candidates strictly to those qualified with this receiver type.
	if callee, ok := r.uniquePrefixMatch(receiver + "::"); ok {
		return r.newCall(call, callee, Direct), true
	}

	return FunctionCall{}, false
}

// resolveTraitMethod resolves via the project-local trait registry, unless
// the trait itself is in the std-exclusion list.
func (r *Resolver) resolveTraitMethod(call UnresolvedCall) (FunctionCall, bool) {
	traitName := call.CallSiteType.TraitName
	if _, excludedTrait := r.excluded[strings.ToLower(traitName)]; excludedTrait {
		return FunctionCall{}, false
	}

	for _, qualified := range r.traits.Implementations(traitName) {
		if strings.HasSuffix(qualified, "::"+baseMethodName(call.CalleeName)) {
			if callee, ok := r.exactByName(qualified); ok {
				return r.newCall(call, callee, ViaTrait), true
			}
		}
	}

	return FunctionCall{}, false
}

// resolveIndirect is best-effort: prefer same-file, else a unique
// candidate by simple name, else drop.
func (r *Resolver) resolveIndirect(call UnresolvedCall) (FunctionCall, bool) {
	if call.SameFileHint {
		if callee, ok := r.uniqueSameFileMatch(call); ok {
			return r.newCall(call, callee, ViaCallback), true
		}
	}

	if callee, ok := r.uniqueSimpleMatch(call.CalleeName); ok {
		return r.newCall(call, callee, ViaCallback), true
	}

	return FunctionCall{}, false
}

func (r *Resolver) newCall(call UnresolvedCall, callee funcid.FunctionId, kind CallKind) FunctionCall {
	return FunctionCall{
		Caller:       call.Caller,
		Callee:       callee,
		CallSiteType: call.CallSiteType,
		CallKind:     kind,
	}
}

func (r *Resolver) exactByName(qualifiedName string) (funcid.FunctionId, bool) {
	for _, node := range r.graph.nodes {
		if node.ID.Name == qualifiedName {
			return node.ID, true
		}
	}

	return funcid.FunctionId{}, false
}

func (r *Resolver) uniqueSuffixMatch(name string) (funcid.FunctionId, bool) {
	suffix := "::" + baseMethodName(name)

	var match funcid.FunctionId

	count := 0

	for _, node := range r.graph.nodes {
		if strings.HasSuffix(node.ID.Name, suffix) {
			match = node.ID
			count++
		}
	}

	if count == 1 {
		return match, true
	}

	return funcid.FunctionId{}, false
}

func (r *Resolver) uniquePrefixMatch(prefix string) (funcid.FunctionId, bool) {
	var match funcid.FunctionId

	count := 0

	for _, node := range r.graph.nodes {
		if strings.HasPrefix(node.ID.Name, prefix) {
			match = node.ID
			count++
		}
	}

	if count == 1 {
		return match, true
	}

	return funcid.FunctionId{}, false
}

func (r *Resolver) uniqueSameFileMatch(call UnresolvedCall) (funcid.FunctionId, bool) {
	var match funcid.FunctionId

	count := 0
	simple := baseMethodName(call.CalleeName)

	for _, node := range r.graph.nodes {
		if node.ID.File == call.Caller.File && baseMethodName(node.ID.Name) == simple {
			match = node.ID
			count++
		}
	}

	if count == 1 {
		return match, true
	}

	return funcid.FunctionId{}, false
}

func (r *Resolver) uniqueSimpleMatch(name string) (funcid.FunctionId, bool) {
	simple := baseMethodName(name)

	var match funcid.FunctionId

	count := 0

	for _, node := range r.graph.nodes {
		if baseMethodName(node.ID.Name) == simple {
			match = node.ID
			count++
		}
	}

	if count == 1 {
		return match, true
	}

	return funcid.FunctionId{}, false
}

// baseMethodName returns the last "::"-separated segment of name.
func baseMethodName(name string) string {
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		return name[idx+2:]
	}

	return name
}
