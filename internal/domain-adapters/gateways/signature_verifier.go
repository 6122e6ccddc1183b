package gateways

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/gateways"
	"github.com/hashicorp/setup-hc-releases/internal/external-adapters/gpg"
	"github.com/hashicorp/setup-hc-releases/internal/external-adapters/minisign"
)

// openPGPVerifier wraps the external GPG adapter to implement the domain gateway interface
type openPGPVerifier struct {
	verifier *gpg.Verifier
}

// NewOpenPGPVerifier loads the trusted key from keySource (inline armor, URL or file)
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewOpenPGPVerifier(ctx context.Context, keySource string) (*openPGPVerifier, error) {
	v := gpg.NewVerifier()
	if err := v.Import(ctx, keySource); err != nil {
		return nil, fmt.Errorf("failed to import GPG signing key: %w", err)
	}
	return &openPGPVerifier{verifier: v}, nil
}

func (o *openPGPVerifier) Name() string { return "openpgp" }

func (o *openPGPVerifier) SignatureSuffix() string { return ".sig" }

// VerifyDetached verifies an armored or binary detached OpenPGP signature
func (o *openPGPVerifier) VerifyDetached(content, sig io.Reader) error {
	if err := o.verifier.Verify(content, sig); err != nil {
		return fmt.Errorf("%w: openpgp: %w", entities.ErrSignatureInvalid, err)
	}
	return nil
}

// minisignVerifier wraps the external minisign adapter
type minisignVerifier struct {
	verifier *minisign.Verifier
}

// NewMinisignVerifier parses the trusted minisign public key (base64, .pub content or path)
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewMinisignVerifier(publicKey string) (*minisignVerifier, error) {
	v, err := minisign.NewVerifier(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load minisign public key: %w", err)
	}
	return &minisignVerifier{verifier: v}, nil
}

func (m *minisignVerifier) Name() string { return "minisign" }

func (m *minisignVerifier) SignatureSuffix() string { return ".minisig" }

// VerifyDetached verifies a .minisig signature
func (m *minisignVerifier) VerifyDetached(content, sig io.Reader) error {
	if err := m.verifier.Verify(content, sig); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrSignatureInvalid, err)
	}
	return nil
}

// NewSignatureVerifiers builds a verifier for every configured key.
// Empty keys are skipped; no keys yields an empty slice.
func NewSignatureVerifiers(ctx context.Context, signingKey, minisignKey string) ([]gateways.SignatureVerifier, error) {
	var verifiers []gateways.SignatureVerifier

	if signingKey != "" {
		v, err := NewOpenPGPVerifier(ctx, signingKey)
		if err != nil {
			return nil, err
		}
		verifiers = append(verifiers, v)
	}

	if minisignKey != "" {
		v, err := NewMinisignVerifier(minisignKey)
		if err != nil {
			return nil, err
		}
		verifiers = append(verifiers, v)
	}

	return verifiers, nil
}
