package services

import (
	"fmt"
	"path/filepath"
	"strings"
)

const sha256HexLength = 64

// ChecksumFromSums finds assetName in a SHA256SUMS document
// ("<hex digest>  <file name>" per line) and returns its lower-case digest.
func ChecksumFromSums(data []byte, assetName string) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("checksums file is empty")
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || !IsSHA256Hex(fields[0]) {
			continue
		}

		// "*name" marks binary mode in sha256sum output
		name := strings.TrimPrefix(fields[len(fields)-1], "*")
		if filepath.Base(name) == assetName {
			return strings.ToLower(fields[0]), nil
		}
	}

	return "", fmt.Errorf("checksum for %s not found", assetName)
}

// IsSHA256Hex reports whether value is a 64 character hex string
func IsSHA256Hex(value string) bool {
	if len(value) != sha256HexLength {
		return false
	}
	for _, ch := range value {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}
