package gateways

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatalf("Failed to write zip: %v", err)
	}
}

func tarBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0755, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("Failed to write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write tar entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar: %v", err)
	}
	return buf.Bytes()
}

func TestArchiveFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "hc-releases_0.1.15_linux_amd64.zip", want: FormatZip},
		{name: "tool.ZIP", want: FormatZip},
		{name: "tool.tar.gz", want: FormatTarGz},
		{name: "tool.tgz", want: FormatTarGz},
		{name: "tool.tar.xz", want: FormatTarXz},
		{name: "tool_0.1.0_linux_amd64", wantErr: true},
		{name: "tool.rar", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ArchiveFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ArchiveFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ArchiveFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArchiveExtractor_Zip(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "tool_0.1.0_linux_amd64.zip")
	writeZip(t, archive, map[string]string{
		"tool":          "#!/bin/sh\necho 0.1.0\n",
		"docs/LICENSE":  "MPL-2.0",
		"docs/":         "",
		"README.md":     "readme",
	})

	e := NewArchiveExtractor(&interfaces.NoOpLogger{})
	dir, err := e.Extract(context.Background(), archive, filepath.Join(tmpDir, "cache"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.HasPrefix(dir, filepath.Join(tmpDir, "cache")) {
		t.Errorf("Extract() dir = %s, want under cache root", dir)
	}

	for name, want := range map[string]string{"tool": "#!/bin/sh\necho 0.1.0\n", "docs/LICENSE": "MPL-2.0"} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Failed to read extracted %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestArchiveExtractor_RepeatedExtractionIsIsolated(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "tool.zip")
	writeZip(t, archive, map[string]string{"tool": "v1"})

	e := NewArchiveExtractor(&interfaces.NoOpLogger{})
	first, err := e.Extract(context.Background(), archive, tmpDir)
	if err != nil {
		t.Fatalf("first Extract() error = %v", err)
	}
	second, err := e.Extract(context.Background(), archive, tmpDir)
	if err != nil {
		t.Fatalf("second Extract() error = %v", err)
	}

	if first == second {
		t.Fatalf("Extract() reused directory %s", first)
	}
	for _, dir := range []string{first, second} {
		got, err := os.ReadFile(filepath.Join(dir, "tool"))
		if err != nil || string(got) != "v1" {
			t.Errorf("%s/tool = %q, %v", dir, got, err)
		}
	}
}

func TestArchiveExtractor_RejectsPathTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "evil.zip")
	writeZip(t, archive, map[string]string{"../../escaped": "pwned"})

	root := filepath.Join(tmpDir, "cache")
	_, err := NewArchiveExtractor(&interfaces.NoOpLogger{}).Extract(context.Background(), archive, root)
	if err == nil {
		t.Fatal("Extract() should reject entries escaping the destination")
	}
	if !strings.Contains(err.Error(), archive) {
		t.Errorf("error %q should name the archive", err)
	}

	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Errorf("failed extraction left %d entries behind", len(entries))
	}
}

func TestArchiveExtractor_CorruptZip(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "corrupt.zip")
	if err := os.WriteFile(archive, []byte("definitely not a zip"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := NewArchiveExtractor(&interfaces.NoOpLogger{}).Extract(context.Background(), archive, tmpDir)
	if err == nil {
		t.Fatal("Extract() of corrupt archive should fail")
	}
	if !strings.Contains(err.Error(), archive) {
		t.Errorf("error %q should name the archive", err)
	}
}

func TestArchiveExtractor_TarGz(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "tool.tar.gz")

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(tarBytes(t, map[string]string{"bin/tool": "gz"})); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}

	dir, err := NewArchiveExtractor(&interfaces.NoOpLogger{}).Extract(context.Background(), archive, tmpDir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "bin", "tool"))
	if err != nil || string(got) != "gz" {
		t.Errorf("bin/tool = %q, %v", got, err)
	}
}

func TestArchiveExtractor_TarXz(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "tool.tar.xz")

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := xw.Write(tarBytes(t, map[string]string{"tool": "xz"})); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}

	dir, err := NewArchiveExtractor(&interfaces.NoOpLogger{}).Extract(context.Background(), archive, tmpDir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "tool"))
	if err != nil || string(got) != "xz" {
		t.Errorf("tool = %q, %v", got, err)
	}
}
