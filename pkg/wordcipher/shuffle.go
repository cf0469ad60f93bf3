package wordcipher

// LCG constants. The generator is weak and predictable; it is kept so that
// output stays bit-compatible with files written by earlier versions.
const (
	lcgA = 1103515245
	lcgC = 12345
	lcgM = 1 << 31
)

// Permutation returns the index permutation of 0..n-1 produced by a
// Fisher-Yates shuffle driven by an LCG seeded with seed.
//
// Arithmetic wraps at 2^64 before the reduction mod 2^31, which gives the
// same result as exact arithmetic because 2^31 divides 2^64.
func Permutation(n int, seed uint64) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	state := seed
	for i := n - 1; i > 0; i-- {
		state = (lcgA*state + lcgC) % lcgM
		j := int(state % uint64(i+1))
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}

// Shuffle reorders the runes of word so that position i holds the rune
// found at Permutation(n, seed)[i].
func Shuffle(word string, seed uint64) string {
	if word == "" {
		return word
	}
	in := []rune(word)
	idx := Permutation(len(in), seed)
	out := make([]rune, len(in))
	for i, src := range idx {
		out[i] = in[src]
	}
	return string(out)
}

// Deshuffle undoes Shuffle for the same seed. The generator is run forward
// exactly as in Shuffle and the resulting permutation is inverted.
func Deshuffle(word string, seed uint64) string {
	if word == "" {
		return word
	}
	in := []rune(word)
	idx := Permutation(len(in), seed)
	inv := make([]int, len(idx))
	for i, p := range idx {
		inv[p] = i
	}
	out := make([]rune, len(in))
	for i, src := range inv {
		out[i] = in[src]
	}
	return string(out)
}
