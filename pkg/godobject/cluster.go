package godobject

import (
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
)

// cluster partitions c's methods into communities using gonum's Louvain
// modularity maximization over a weighted undirected graph: an edge
// between two methods is weighted by how many sibling calls and shared
// field accesses connect them, grounded on the teacher's
// gonumCommunityDetection helper.
func cluster(c Container) []Cluster {
	if len(c.Methods) == 0 {
		return nil
	}

	if len(c.Methods) == 1 {
		return []Cluster{{Methods: []string{c.Methods[0].Name}}}
	}

	index := make(map[string]int64, len(c.Methods))
	for i, m := range c.Methods {
		index[m.Name] = int64(i)
	}

	g := simple.NewWeightedUndirectedGraph(0, 0)

	for i := range c.Methods {
		g.AddNode(simple.Node(int64(i)))
	}

	weights := make(map[[2]int64]float64)

	for i, m := range c.Methods {
		for _, callee := range m.CallsMethods {
			j, ok := index[callee]
			if !ok || int64(j) == int64(i) {
				continue
			}

			addWeight(weights, int64(i), int64(j), 1.0)
		}
	}

	for i, m := range c.Methods {
		for j := i + 1; j < len(c.Methods); j++ {
			overlap := sharedFieldCount(m.AccessFields, c.Methods[j].AccessFields)
			if overlap > 0 {
				addWeight(weights, int64(i), int64(j), float64(overlap)*0.5)
			}
		}
	}

	for pair, w := range weights {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(pair[0]), T: simple.Node(pair[1]), W: w})
	}

	reduced := community.Modularize(g, 1.0, nil)

	clusters := make([]Cluster, 0, len(reduced.Communities()))

	for _, comm := range reduced.Communities() {
		var names []string

		for _, n := range comm {
			names = append(names, c.Methods[n.ID()].Name)
		}

		clusters = append(clusters, Cluster{Methods: names})
	}

	return clusters
}

func addWeight(weights map[[2]int64]float64, a, b int64, delta float64) {
	key := [2]int64{a, b}
	if a > b {
		key = [2]int64{b, a}
	}

	weights[key] += delta
}

func sharedFieldCount(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, f := range a {
		set[f] = struct{}{}
	}

	count := 0

	for _, f := range b {
		if _, ok := set[f]; ok {
			count++
		}
	}

	return count
}

// cohesion computes internal_calls/(internal_calls+external_calls) for
// cl's methods within c: calls between two methods both in cl are
// internal, calls to methods outside cl (or to anything unresolved) are
// external. A cluster with no outgoing calls at all is fully cohesive.
func cohesion(cl Cluster, c Container) float64 {
	members := make(map[string]struct{}, len(cl.Methods))
	for _, name := range cl.Methods {
		members[name] = struct{}{}
	}

	byName := make(map[string]Method, len(c.Methods))
	for _, m := range c.Methods {
		byName[m.Name] = m
	}

	internal, external := 0, 0

	for _, name := range cl.Methods {
		m, ok := byName[name]
		if !ok {
			continue
		}

		for _, callee := range m.CallsMethods {
			if _, inCluster := members[callee]; inCluster {
				internal++
			} else {
				external++
			}
		}
	}

	if internal+external == 0 {
		return 1.0
	}

	return float64(internal) / float64(internal+external)
}
