package forgery

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"maps"
	"slices"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// DefaultDigest is used when no digest is configured.
const DefaultDigest = "SHA1"

var digests = map[string]func() hash.Hash{
	"MD5":         md5.New,
	"SHA1":        sha1.New,
	"SHA224":      sha256.New224,
	"SHA256":      sha256.New,
	"SHA384":      sha512.New384,
	"SHA512":      sha512.New,
	"SHA512/256":  sha512.New512_256,
	"SHA3-256":    sha3.New256,
	"SHA3-512":    sha3.New512,
	"BLAKE2B-256": mustBlake2b(blake2b.New256),
	"BLAKE2B-512": mustBlake2b(blake2b.New512),
	"BLAKE3":      func() hash.Hash { return blake3.New() },
}

// unkeyed blake2b constructors only fail for oversized keys.
func mustBlake2b(fn func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := fn(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

// Digests lists the supported digest names.
func Digests() []string {
	return slices.Sorted(maps.Keys(digests))
}

// LookupDigest resolves a digest name, case-insensitively. An empty name means DefaultDigest.
func LookupDigest(name string) (func() hash.Hash, error) {
	if name == "" {
		name = DefaultDigest
	}
	fn, ok := digests[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
	}
	return fn, nil
}

// HMAC returns the lowercase hex HMAC of message under key using the named digest.
func HMAC(digest, key, message string) (string, error) {
	fn, err := LookupDigest(digest)
	if err != nil {
		return "", err
	}
	mac := hmac.New(fn, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
