package store

import (
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// ProfileDigest returns the hex BLAKE2b-256 digest of the file at path,
// prefixed with the algorithm name.
func ProfileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return "blake2b-256:" + hex.EncodeToString(h.Sum(nil)), nil
}
