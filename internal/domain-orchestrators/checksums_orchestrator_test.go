package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	adapters "github.com/hashicorp/setup-hc-releases/internal/domain-adapters/gateways"
	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

func TestChecksumsOrchestrator_GenerateChecksums(t *testing.T) {
	content := map[string][]byte{
		"hc-releases_0.1.0_darwin_amd64.zip": []byte("darwin amd64"),
		"hc-releases_0.1.0_darwin_arm64.zip": []byte("darwin arm64"),
		"hc-releases_0.1.0_linux_amd64.zip":  []byte("linux amd64"),
	}
	releases := &mockReleaseGateway{
		release: testRelease("0.1.0",
			"hc-releases_0.1.0_darwin_amd64.zip",
			"hc-releases_0.1.0_darwin_arm64.zip",
			"hc-releases_0.1.0_linux_amd64.zip",
			"hc-releases_0.1.0_SHA256SUMS"),
		content: content,
	}

	// Catalog already knows linux/amd64 but with a stale digest
	catalogs := &mockCatalogRepository{catalog: testCatalog(checksumTable("0.1.0", strings.Repeat("0", 64)))}

	orch := NewChecksumsOrchestrator(catalogs, releases, adapters.NewChecksumVerifier(), nil, t.TempDir())
	result, err := orch.GenerateChecksums(context.Background(), "hc-releases", "")
	if err != nil {
		t.Fatalf("GenerateChecksums() error = %v", err)
	}

	if result.Version != "0.1.0" {
		t.Errorf("Version = %s, want catalog latest 0.1.0", result.Version)
	}
	if len(releases.downloaded) != 3 {
		t.Errorf("downloaded %v, want the 3 platform archives", releases.downloaded)
	}

	want := map[entities.PlatformKey][]byte{
		{OS: entities.OSDarwin, Arch: entities.ArchAMD64}: content["hc-releases_0.1.0_darwin_amd64.zip"],
		{OS: entities.OSDarwin, Arch: entities.ArchARM64}: content["hc-releases_0.1.0_darwin_arm64.zip"],
		linuxAMD64: content["hc-releases_0.1.0_linux_amd64.zip"],
	}
	for platform, data := range want {
		if got := result.Checksums[platform.OS][platform.Arch]; got != sha256Hex(data) {
			t.Errorf("Checksums[%s] = %s, want %s", platform, got, sha256Hex(data))
		}
	}

	if len(result.Changed) != 1 || result.Changed[0] != linuxAMD64 {
		t.Errorf("Changed = %v, want [linux/amd64]", result.Changed)
	}
}

func TestChecksumsOrchestrator_GenerateChecksums_MissingAsset(t *testing.T) {
	releases := &mockReleaseGateway{
		release: testRelease("0.1.0", "hc-releases_0.1.0_linux_amd64.zip"),
		content: map[string][]byte{"hc-releases_0.1.0_linux_amd64.zip": []byte("x")},
	}

	orch := NewChecksumsOrchestrator(&mockCatalogRepository{catalog: testCatalog(nil)}, releases, adapters.NewChecksumVerifier(), nil, t.TempDir())
	_, err := orch.GenerateChecksums(context.Background(), "hc-releases", "0.1.0")
	if !errors.Is(err, entities.ErrAssetNotFound) {
		t.Fatalf("GenerateChecksums() error = %v, want ErrAssetNotFound", err)
	}
}

func TestChecksumsOrchestrator_GenerateChecksums_CatalogError(t *testing.T) {
	orch := NewChecksumsOrchestrator(&mockCatalogRepository{err: errors.New("boom")}, &mockReleaseGateway{}, adapters.NewChecksumVerifier(), nil, t.TempDir())
	if _, err := orch.GenerateChecksums(context.Background(), "hc-releases", "0.1.0"); err == nil {
		t.Fatal("GenerateChecksums() should fail when the catalog cannot be loaded")
	}
}
