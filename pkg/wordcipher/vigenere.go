package wordcipher

// ExtendKey repeats or truncates key to the rune length of word.
func ExtendKey(word, key string) (string, error) {
	k := []rune(key)
	if len(k) == 0 {
		return "", invalid("extend key", "key cannot be empty")
	}
	n := len([]rune(word))
	if n <= len(k) {
		return string(k[:n]), nil
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = k[i%len(k)]
	}
	return string(out), nil
}

// Encode shifts every ASCII letter of word forward by the matching key rune.
// Other runes pass through unchanged but still consume a key position.
func Encode(word, key string) (string, error) {
	return vigenere(word, key, 1)
}

// Decode reverses Encode.
func Decode(word, key string) (string, error) {
	return vigenere(word, key, -1)
}

func vigenere(word, key string, dir int) (string, error) {
	if word == "" || key == "" {
		return word, nil
	}
	ext, err := ExtendKey(word, key)
	if err != nil {
		return "", err
	}
	k := []rune(ext)
	out := []rune(word)
	for i, r := range out {
		base, ok := letterBase(r)
		if !ok {
			continue
		}
		v := (int(r-base) + dir*shiftOf(k[i])) % 26
		if v < 0 {
			v += 26
		}
		out[i] = base + rune(v)
	}
	return string(out), nil
}

func letterBase(r rune) (rune, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return 'A', true
	case r >= 'a' && r <= 'z':
		return 'a', true
	}
	return 0, false
}

// shiftOf maps a key rune to its shift: a letter's index within its case,
// a digit's value mod 26, zero for anything else.
func shiftOf(r rune) int {
	if base, ok := letterBase(r); ok {
		return int(r - base)
	}
	if r >= '0' && r <= '9' {
		return int(r-'0') % 26
	}
	return 0
}
