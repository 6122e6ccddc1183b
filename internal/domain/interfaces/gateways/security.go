package gateways

import (
	"context"
	"io"
)

// ChecksumVerifier computes and checks file digests
type ChecksumVerifier interface {
	// CalculateChecksum returns the hex SHA-256 of the file
	CalculateChecksum(filePath string) (string, error)

	// VerifyChecksum fails with entities.ErrChecksumMismatch when the file digest differs
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
}

// SignatureVerifier checks a detached signature over some content
type SignatureVerifier interface {
	// Name identifies the signature scheme ("openpgp", "minisign")
	Name() string

	// SignatureSuffix is appended to a signed file's name to find its signature asset
	SignatureSuffix() string

	// VerifyDetached fails with entities.ErrSignatureInvalid when sig does not cover content
	VerifyDetached(content, sig io.Reader) error
}
