package entities

import (
	"errors"
	"fmt"
)

// Pipeline failures. Every stage wraps one of these with %w so callers can
// branch with errors.Is.
var (
	ErrUnsupportedArchitecture    = errors.New("unsupported architecture")
	ErrUnsupportedOperatingSystem = errors.New("unsupported operating system")
	ErrUnsupportedOS              = errors.New("unsupported OS")
	ErrUnsupportedOSArchitecture  = errors.New("unsupported OS architecture")
	ErrReleaseNotFound            = errors.New("release not found")
	ErrAssetNotFound              = errors.New("release asset not found in release")
	ErrTransientFetchFailure      = errors.New("transient fetch failure")
	ErrChecksumMismatch           = errors.New("checksum mismatch")
	ErrSignatureInvalid           = errors.New("signature verification failed")
	ErrUnexpectedVersionOutput    = errors.New("unexpected version output")
	ErrVersionCheckFailed         = errors.New("version check failed")
	ErrInvalidCatalog             = errors.New("invalid catalog")
)

// ChecksumMismatchError is returned when a file's digest differs from the expected value
type ChecksumMismatchError struct {
	File     string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s (got: %s, expected: %s)", e.File, e.Actual, e.Expected)
}

// Unwrap lets errors.Is match ErrChecksumMismatch
func (e *ChecksumMismatchError) Unwrap() error {
	return ErrChecksumMismatch
}
