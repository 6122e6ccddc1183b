package minisign

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	testPublicKey = "RWQf6LRCGA9i53mlYecO4IzT51TGPpvWucNSCh1CBM0QTaLn73Y7GFO3"

	testSignature = "untrusted comment: signature from minisign secret key\n" +
		"RWQf6LRCGA9i59SLOFxz6NxvASXDJeRtuZykwQepbDEGt87ig1BNpWaVWuNrm73YiIiJbq71Wi+dP9eKL8OC351vwIasSSbXxwA=\n" +
		"trusted comment: timestamp:1635442742\tfile:test\n" +
		"0YteLgV960ia80vnA/fHbvkyjl/IoP/HNOCaZfrF0CdhAlp7ok+Tpkya+VpWPX5C/Is3q8a/kEDSY7fBmmgJCg==\n"

	testPrehashedSignature = "untrusted comment: signature from minisign secret key\n" +
		"RUQf6LRCGA9i559r3g7V1qNyJDApGip8MfqcadIgT9CuhV3EMhHoN1mGTkUidF/z7SrlQgXdy8ofjb7bNJJylDOocrCo8KLzZwo=\n" +
		"trusted comment: timestamp:1635443258\tfile:test\thashed\n" +
		"/cj37GK60vryibFn+ftOgbCvW9NKhKYgjVpFFQUcWPAnjO23wrvVDTt7cloNC06maoBli9q6qwZDXXoaxweICQ==\n"
)

func TestNewVerifier_KeyForms(t *testing.T) {
	tmpDir := t.TempDir()
	pubFile := filepath.Join(tmpDir, "minisign.pub")
	pubContent := "untrusted comment: minisign public key 1F62E9D2B31F86AE\n" + testPublicKey + "\n"
	if err := os.WriteFile(pubFile, []byte(pubContent), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		key  string
	}{
		{name: "bare base64", key: testPublicKey},
		{name: "pub file content", key: pubContent},
		{name: "pub file path", key: pubFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVerifier(tt.key)
			if err != nil {
				t.Fatalf("NewVerifier() error = %v", err)
			}
			if err := v.Verify(strings.NewReader("test"), strings.NewReader(testSignature)); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
		})
	}
}

func TestNewVerifier_Invalid(t *testing.T) {
	for _, key := range []string{"", "   ", "/nonexistent/minisign.pub", "untrusted comment: x\nnot-base64"} {
		if _, err := NewVerifier(key); err == nil {
			t.Errorf("NewVerifier(%q) should fail", key)
		}
	}
}

func TestVerifier_Verify(t *testing.T) {
	v, err := NewVerifier(testPublicKey)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		content   string
		signature string
		wantErr   bool
	}{
		{name: "legacy signature", content: "test", signature: testSignature},
		{name: "prehashed signature", content: "test", signature: testPrehashedSignature},
		{name: "tampered content", content: "tesT", signature: testSignature, wantErr: true},
		{name: "garbage signature", content: "test", signature: "not a signature", wantErr: true},
		{name: "empty signature", content: "test", signature: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(strings.NewReader(tt.content), strings.NewReader(tt.signature))
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
