package archive

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrChecksumMismatch is wrapped by ChecksumError.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError reports a digest that did not match the published checksum.
type ChecksumError struct {
	Archive  string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s for %s: expected %s, got %s", ErrChecksumMismatch, e.Archive, e.Expected, e.Actual)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// Digest returns the lower-case hex SHA-512 of data.
func Digest(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}

// ExpectedDigest extracts the hash from checksum file contents, which carry
// the file name after the digest.
func ExpectedDigest(checksum string) string {
	fields := strings.Fields(checksum)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ChecksumsMatch reports whether data hashes to the digest in checksum.
func ChecksumsMatch(data []byte, checksum string) bool {
	expected := ExpectedDigest(checksum)
	return expected != "" && Digest(data) == expected
}

// VerifyChecksum returns a *ChecksumError when data does not match checksum.
func VerifyChecksum(name string, data []byte, checksum string) error {
	if ChecksumsMatch(data, checksum) {
		return nil
	}
	return &ChecksumError{
		Archive:  name,
		Expected: ExpectedDigest(checksum),
		Actual:   Digest(data),
	}
}
