package complexity

import "math"

// minDampeningFactor is the floor of the entropy dampening factor: raw
// cyclomatic complexity is never discounted by more than 50% (spec §4.10).
const minDampeningFactor = 0.5

// DampeningFactor computes max(0.5, H) where H is the normalized Shannon
// entropy of tokenCounts (a histogram over token/branch categories). An
// empty or single-category histogram has zero entropy and so returns the
// floor, 0.5; a uniform distribution over many categories approaches 1.0
// (no dampening).
func DampeningFactor(tokenCounts []int) float64 {
	h := normalizedShannonEntropy(tokenCounts)

	return math.Max(minDampeningFactor, h)
}

// normalizedShannonEntropy returns H in [0, 1]: the Shannon entropy of the
// distribution divided by its maximum possible value (log2 of the number
// of non-empty categories). Returns 0 when there are fewer than two
// non-zero categories, since entropy is undefined/zero for a degenerate
// distribution.
func normalizedShannonEntropy(counts []int) float64 {
	total := 0
	nonZero := 0

	for _, c := range counts {
		if c > 0 {
			total += c
			nonZero++
		}
	}

	if total == 0 || nonZero < 2 {
		return 0
	}

	entropy := 0.0

	for _, c := range counts {
		if c == 0 {
			continue
		}

		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}

	maxEntropy := math.Log2(float64(nonZero))
	if maxEntropy == 0 {
		return 0
	}

	return entropy / maxEntropy
}
