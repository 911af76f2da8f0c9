package factories

import "math/rand"

// WeightedChoice draws one value from values with the given integer weights.
// Weights need not sum to anything in particular; zero-weight entries are
// never drawn. Falls back to the last value if weights are all zero.
func WeightedChoice(rng *rand.Rand, values []int, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return values[len(values)-1]
	}
	r := rng.Intn(total)
	for i, w := range weights {
		if r < w {
			return values[i]
		}
		r -= w
	}
	return values[len(values)-1]
}

// intBetween mirrors a uniform inclusive integer draw.
func intBetween(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}
