package pipeline

import "math/rand"

// Shuffle returns a uniform-random permutation of words without
// mutating the input. The caller owns the random source so tests and
// the voice tie-break can share one seedable generator.
func Shuffle(rng *rand.Rand, words []string) []string {
	remaining := make([]string, len(words))
	copy(remaining, words)

	out := make([]string, 0, len(words))
	for len(remaining) > 0 {
		i := rng.Intn(len(remaining))
		out = append(out, remaining[i])
		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return out
}

// Double returns the input followed by itself: the doubled list the
// caller hands to Shuffle so playback runs long enough at the fixed
// pause pacing.
func Double(words []string) []string {
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	out = append(out, words...)
	return out
}
