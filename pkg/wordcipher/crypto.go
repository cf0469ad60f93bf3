package wordcipher

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
)

// Material is everything the word transform needs, derived from a passphrase.
type Material struct {
	Seed uint64
	Key  string // 16 lowercase hex digits, used literally as the shift key
}

// Derive hashes the passphrase with SHA-256. The first 64 bits of the digest
// become the permutation seed and the next 64 bits, still in hex, the
// substitution key. There is no salt: the same passphrase always yields the
// same material.
func Derive(passphrase string) (Material, error) {
	if passphrase == "" {
		return Material{}, invalid("derive", "passphrase cannot be empty")
	}
	sum := sha256.Sum256([]byte(passphrase))
	h := hex.EncodeToString(sum[:])

	seed, err := strconv.ParseUint(h[:16], 16, 64)
	if err != nil {
		return Material{}, err
	}
	return Material{Seed: seed, Key: h[16:32]}, nil
}

// CreateTag returns base64(HMAC-SHA256(passphrase, word)).
func CreateTag(word, passphrase string) string {
	return base64.StdEncoding.EncodeToString(hmacSHA256([]byte(passphrase), []byte(word)))
}

// VerifyTag reports whether tag was produced by CreateTag for exactly this
// word and passphrase. Digests are compared in constant time.
func VerifyTag(word, passphrase, tag string) bool {
	got, err := base64.StdEncoding.DecodeString(tag)
	if err != nil {
		return false
	}
	return hmac.Equal(hmacSHA256([]byte(passphrase), []byte(word)), got)
}

func hmacSHA256(key, msg []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(msg)
	return m.Sum(nil)
}
