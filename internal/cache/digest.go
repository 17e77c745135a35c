package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// HashBytes hashes raw content into a Digest.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// Combine строит составной отпечаток: H( content || dep1 || dep2 ... ).
// Порядок deps должен быть детерминированным (рёбра графа уже отсортированы).
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
