// Package minisign verifies minisign signatures using jedisct1/go-minisign.
package minisign

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedisct1/go-minisign"
)

// Signatures are a few hundred bytes; anything larger is not a minisig file
const maxSignatureSize = 4 * 1024

// Verifier holds a single trusted minisign public key
type Verifier struct {
	publicKey minisign.PublicKey
}

// NewVerifier parses a public key given either as the bare base64 key, the
// full two-line .pub content, or a path to a .pub file.
func NewVerifier(key string) (*Verifier, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("no minisign public key provided")
	}

	if !strings.Contains(key, "\n") {
		if pk, err := minisign.NewPublicKey(key); err == nil {
			return &Verifier{publicKey: pk}, nil
		}

		//nolint:gosec // G304: key path is user-provided
		data, err := os.ReadFile(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read minisign public key: %w", err)
		}
		key = strings.TrimSpace(string(data))
	}

	pk, err := minisign.DecodePublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode minisign public key: %w", err)
	}
	return &Verifier{publicKey: pk}, nil
}

// Verify checks a minisig signature over content
func (v *Verifier) Verify(content, signature io.Reader) error {
	sigData, err := io.ReadAll(io.LimitReader(signature, maxSignatureSize))
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	sig, err := minisign.DecodeSignature(string(sigData))
	if err != nil {
		return fmt.Errorf("failed to decode minisign signature: %w", err)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("failed to read signed content: %w", err)
	}

	valid, err := v.publicKey.Verify(data, sig)
	if err != nil {
		return fmt.Errorf("minisign: %w", err)
	}
	if !valid {
		return fmt.Errorf("minisign: signature verification failed")
	}
	return nil
}
