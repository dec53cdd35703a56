package wire

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/matzehuels/plotmsg/pkg/dict"
)

// Digest returns the hex BLAKE3-256 digest of an encoded message.
// It is the key under which archives store received payloads.
func Digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DictionaryDigest returns the digest of d's canonical encoding. Two
// Dictionaries with equal contents have equal digests.
func DictionaryDigest(d *dict.Dictionary) string {
	return Digest(MarshalDictionary(d))
}
