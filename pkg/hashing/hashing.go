// Package hashing computes content fingerprints for tracked files.
// The digest is used purely as an equality oracle for modification
// detection, never for security.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/types"
)

// Hash returns the hex-encoded sha256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile reads path through fs and returns its content digest.
// Read errors propagate to the caller.
func HashFile(fs types.FS, path string) (string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrHash, "failed to read %s for hashing", path)
	}
	return Hash(data), nil
}
