// Package gpg provides GPG signature verification capabilities.
package gpg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const (
	armoredSignaturePrefix = "-----BEGIN PGP SIGNATURE-----"
	armoredKeyPrefix       = "-----BEGIN PGP PUBLIC KEY BLOCK-----"

	// Limit signature size to 10KB (GPG signatures are typically < 1KB)
	maxSignatureSize = 10 * 1024
	// Limit KEYS file size to 10MB
	maxKeyringSize = 10 * 1024 * 1024
)

// Verifier implements GPG signature verification using ProtonMail's go-crypto
// A maintained, modern fork of golang.org/x/crypto/openpgp
type Verifier struct {
	keyring    openpgp.EntityList
	httpClient *http.Client
}

// NewVerifier creates a new GPG verifier
func NewVerifier() *Verifier {
	return &Verifier{
		keyring: make(openpgp.EntityList, 0),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Import loads keys from source, which is an inline armored key block,
// an http(s) URL of a KEYS file, or a local key file path.
func (v *Verifier) Import(ctx context.Context, source string) error {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return fmt.Errorf("no GPG key provided")
	case strings.HasPrefix(source, armoredKeyPrefix):
		return v.ImportArmoredKey(strings.NewReader(source))
	case strings.HasPrefix(source, "https://"), strings.HasPrefix(source, "http://"):
		return v.ImportKeysFromURL(ctx, source)
	default:
		return v.ImportKeyFromFile(source)
	}
}

// ImportKeysFromURL imports all GPG keys from a KEYS file URL
func (v *Verifier) ImportKeysFromURL(ctx context.Context, keysURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, keysURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download KEYS file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("KEYS file download failed with status %d", resp.StatusCode)
	}

	if err := v.ImportArmoredKey(io.LimitReader(resp.Body, maxKeyringSize)); err != nil {
		return fmt.Errorf("failed to parse KEYS file: %w", err)
	}
	return nil
}

// ImportArmoredKey imports every key of an armored keyring
func (v *Verifier) ImportArmoredKey(r io.Reader) error {
	entities, err := openpgp.ReadArmoredKeyRing(r)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	if len(entities) == 0 {
		return fmt.Errorf("no keys found")
	}

	// Signature verification will fail if key is expired
	v.keyring = append(v.keyring, entities...)
	return nil
}

// ImportKeyFromFile imports a GPG key from a file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath is user-provided for GPG key import
	f, err := os.Open(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	entities, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		// Try reading as binary
		if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("failed to reset file: %w", seekErr)
		}
		entities, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entities) == 0 {
		return fmt.Errorf("no keys found in file")
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// Verify checks a detached signature, armored or binary, over content
func (v *Verifier) Verify(content, signature io.Reader) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no GPG keys imported, call Import first")
	}

	sigData, err := io.ReadAll(io.LimitReader(signature, maxSignatureSize))
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	// Basic format validation
	if len(sigData) < 10 {
		return fmt.Errorf("signature too small to be valid GPG signature")
	}

	sig := bufio.NewReader(bytes.NewReader(sigData))
	peek, _ := sig.Peek(len(armoredSignaturePrefix))

	var verifyErr error
	if string(peek) == armoredSignaturePrefix {
		_, verifyErr = openpgp.CheckArmoredDetachedSignature(v.keyring, content, sig, nil)
	} else {
		_, verifyErr = openpgp.CheckDetachedSignature(v.keyring, content, sig, nil)
	}

	if verifyErr != nil {
		return fmt.Errorf("signature verification failed: %w", verifyErr)
	}

	return nil
}

// GetKeyringSize returns the number of keys in the keyring
func (v *Verifier) GetKeyringSize() int {
	return len(v.keyring)
}
