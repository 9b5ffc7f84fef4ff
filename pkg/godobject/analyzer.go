// Package godobject detects god-object files: containers (impl/class/
// module blocks) whose methods form low-cohesion clusters, producing a
// file-level score and a named decomposition recommendation.
package godobject

import (
	"fmt"
	"sort"
)

// Cohesion thresholds a cluster must clear to be classified into a named
// behavioral category, per spec §4.11.
const (
	cohesionThreshold = 0.6
	minClusterSize    = 10
	maxClusterSize    = 50
)

// Method is one method of a container, with its call and field-access
// footprint used to build the adjacency matrices.
type Method struct {
	Name         string
	LinesOfCode  int
	Complexity   int
	CallsMethods []string // names of sibling methods this method calls
	AccessFields []string // names of container fields this method touches
}

// Container is one impl/class/module block to analyze for god-object status.
type Container struct {
	Name    string
	File    string
	Methods []Method
	Fields  []string
}

// Category names the behavioral role a cluster of methods plays. Never
// "misc" — clusters that don't fit a known category are named Domain with
// a label derived from their most common method-name stem.
type Category string

const (
	CategoryLifecycle      Category = "Lifecycle"
	CategoryStateManagement Category = "StateManagement"
	CategoryRendering      Category = "Rendering"
	CategoryEventHandling  Category = "EventHandling"
	CategoryPersistence    Category = "Persistence"
	CategoryValidation     Category = "Validation"
	CategoryComputation    Category = "Computation"
	CategoryDomain         Category = "Domain"
)

// Cluster is one community of cohesive methods within a container.
type Cluster struct {
	Category Category
	Label    string // set when Category == CategoryDomain
	Methods  []string
	Cohesion float64
}

// Analysis is the full god-object analysis of one container.
type Analysis struct {
	Container           string
	IsGodObject         bool
	MethodCount         int
	FieldCount          int
	ResponsibilityCount int
	LinesOfCode         int
	ComplexitySum       int
	GodObjectScore      float64 // already on the 0-100 scale (spec §4.11)
	Clusters            []Cluster
	Recommendation      string
}

// godObjectScoreThreshold is the score at/above which a container is
// flagged as a god object.
const godObjectScoreThreshold = 60.0

// Analyze runs the full pipeline of spec §4.11 over c: build adjacency
// matrices, cluster by greedy modularity plus shared-field overlap,
// score clusters by cohesion, classify qualifying clusters into named
// categories, and produce a method-first decomposition recommendation.
func Analyze(c Container) Analysis {
	clusters := cluster(c)

	scored := make([]Cluster, 0, len(clusters))
	for _, cl := range clusters {
		cl.Cohesion = cohesion(cl, c)
		scored = append(scored, cl)
	}

	classified := classifyClusters(scored)

	locSum, complexitySum := 0, 0
	for _, m := range c.Methods {
		locSum += m.LinesOfCode
		complexitySum += m.Complexity
	}

	responsibilityCount := countQualifyingClusters(classified)
	godScore := scoreGodObject(len(c.Methods), len(c.Fields), responsibilityCount, classified)

	return Analysis{
		Container:           c.Name,
		IsGodObject:         godScore >= godObjectScoreThreshold,
		MethodCount:         len(c.Methods),
		FieldCount:          len(c.Fields),
		ResponsibilityCount: responsibilityCount,
		LinesOfCode:         locSum,
		ComplexitySum:       complexitySum,
		GodObjectScore:      godScore,
		Clusters:            classified,
		Recommendation:      recommend(c.Name, classified),
	}
}

// countQualifyingClusters counts clusters that clear the cohesion and
// size thresholds of spec §4.11 step 4.
func countQualifyingClusters(clusters []Cluster) int {
	count := 0

	for _, cl := range clusters {
		if cl.Cohesion >= cohesionThreshold && len(cl.Methods) >= minClusterSize && len(cl.Methods) <= maxClusterSize {
			count++
		}
	}

	return count
}

// scoreGodObject derives a 0-100 score from raw size and responsibility
// signals: more methods/fields and more distinct qualifying
// responsibilities drive the score up; a single cohesive cluster pulls it
// down.
func scoreGodObject(methodCount, fieldCount, responsibilityCount int, clusters []Cluster) float64 {
	if methodCount == 0 {
		return 0
	}

	sizeSignal := float64(methodCount+fieldCount) / 2.0
	responsibilitySignal := float64(responsibilityCount) * 15.0

	avgCohesion := averageCohesion(clusters)
	cohesionPenaltyRelief := avgCohesion * 20.0

	score := sizeSignal + responsibilitySignal - cohesionPenaltyRelief
	if score < 0 {
		score = 0
	}

	if score > 100 {
		score = 100
	}

	return score
}

func averageCohesion(clusters []Cluster) float64 {
	if len(clusters) == 0 {
		return 0
	}

	total := 0.0
	for _, cl := range clusters {
		total += cl.Cohesion
	}

	return total / float64(len(clusters))
}

// recommend produces a method-first decomposition recommendation naming
// the qualifying clusters by category, never the literal string "misc".
func recommend(containerName string, clusters []Cluster) string {
	var qualifying []Cluster

	for _, cl := range clusters {
		if cl.Cohesion >= cohesionThreshold && len(cl.Methods) >= minClusterSize && len(cl.Methods) <= maxClusterSize {
			qualifying = append(qualifying, cl)
		}
	}

	if len(qualifying) == 0 {
		return fmt.Sprintf("%s shows no sufficiently cohesive sub-clusters (size %d-%d, cohesion >= %.2f) to recommend extraction yet", containerName, minClusterSize, maxClusterSize, cohesionThreshold)
	}

	sort.Slice(qualifying, func(i, j int) bool { return len(qualifying[i].Methods) > len(qualifying[j].Methods) })

	rec := fmt.Sprintf("Split %s into:", containerName)

	for _, cl := range qualifying {
		name := string(cl.Category)
		if cl.Category == CategoryDomain && cl.Label != "" {
			name = cl.Label
		}

		rec += fmt.Sprintf(" %s(%d methods);", name, len(cl.Methods))
	}

	return rec
}
