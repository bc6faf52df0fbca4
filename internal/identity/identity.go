// Package identity derives environment identities from directory paths.
//
// An identity is the first 16 lowercase hex characters of the SHA-1 digest
// of a canonical absolute directory path. The same function keys the
// directory index, so a directory's index entry and the identity of its
// first environment share a name.
package identity

import (
	"crypto/sha1" //nolint:gosec // SHA1 is used for short stable naming, not for security
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
)

// Length is the number of hex characters in an identity.
const Length = 16

// maxMintAttempts bounds the candidate search in Mint.
const maxMintAttempts = 1 << 16

// Of returns the identity of an absolute directory path. The path is hashed
// exactly as given; callers pass the canonical form (see Canonical).
func Of(dir string) string {
	h := sha1.New() //nolint:gosec // not used for security
	h.Write([]byte(dir))
	return hex.EncodeToString(h.Sum(nil))[:Length]
}

// Canonical returns the cleaned absolute form of dir, resolved against the
// process working directory when relative.
func Canonical(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory %q: %w", dir, err)
	}
	return abs, nil
}

// Valid reports whether s is a well-formed identity.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Mint returns a fresh identity for a new environment built from dir.
//
// The first candidate is Of(dir). If taken reports it is in use, the
// candidates Of(dir+"#1"), Of(dir+"#2"), ... are tried in order. The first
// build from a directory therefore always gets Of(dir), and later builds get
// distinct identities until an earlier entry is removed.
func Mint(dir string, taken func(id string) bool) (string, error) {
	for n := 0; n < maxMintAttempts; n++ {
		candidate := dir
		if n > 0 {
			candidate = dir + "#" + strconv.Itoa(n)
		}
		id := Of(candidate)
		if !taken(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free identity for %q after %d attempts", dir, maxMintAttempts)
}
