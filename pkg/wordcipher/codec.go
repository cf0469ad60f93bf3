package wordcipher

// Record is one encrypted word together with its verification tag.
type Record struct {
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

// EncryptWord shuffles word with the passphrase seed and then applies the
// substitution key. The tag is computed over the original word. An empty
// word yields an empty Record.
func EncryptWord(word, passphrase string) (Record, error) {
	if word == "" {
		return Record{}, nil
	}
	tag := CreateTag(word, passphrase)

	m, err := Derive(passphrase)
	if err != nil {
		return Record{}, err
	}
	ct, err := Encode(Shuffle(word, m.Seed), m.Key)
	if err != nil {
		return Record{}, err
	}
	return Record{Ciphertext: ct, Tag: tag}, nil
}

// DecryptWord reverses EncryptWord and checks the result against tag.
// The recovered text is returned even when verification fails.
func DecryptWord(ciphertext, passphrase, tag string) (string, bool, error) {
	if ciphertext == "" {
		return ciphertext, false, nil
	}
	m, err := Derive(passphrase)
	if err != nil {
		return "", false, err
	}
	unshifted, err := Decode(ciphertext, m.Key)
	if err != nil {
		return "", false, err
	}
	plain := Deshuffle(unshifted, m.Seed)
	return plain, VerifyTag(plain, passphrase, tag), nil
}

// Decrypt is DecryptWord for a stored Record.
func (r Record) Decrypt(passphrase string) (string, bool, error) {
	return DecryptWord(r.Ciphertext, passphrase, r.Tag)
}
