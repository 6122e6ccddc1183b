package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

func testCatalog() *entities.Catalog {
	return &entities.Catalog{
		Product:       "hc-releases",
		Owner:         "hashicorp",
		Repo:          "releases-api",
		Executable:    "hc-releases",
		LatestVersion: "0.1.2",
		Platforms: map[entities.OperatingSystem][]entities.Architecture{
			entities.OSDarwin: {entities.ArchAMD64, entities.ArchARM64},
			entities.OSLinux:  {entities.ArchAMD64},
		},
		Checksums: map[string]map[entities.OperatingSystem]map[entities.Architecture]string{
			"0.1.2": {
				entities.OSLinux: {
					entities.ArchAMD64: "47a86cd0280a862c0025bad921a39e72c90e22923d1eae1f3bfca29ca989cc4e",
				},
			},
		},
	}
}

func TestEnsureSupportedPlatform_AllSupported(t *testing.T) {
	svc := NewCatalogService(testCatalog())

	for goos, archs := range svc.Catalog().Platforms {
		for _, arch := range archs {
			p := entities.PlatformKey{OS: goos, Arch: arch}
			if err := svc.EnsureSupportedPlatform(p); err != nil {
				t.Errorf("EnsureSupportedPlatform(%s) error = %v", p, err)
			}
		}
	}
}

func TestEnsureSupportedPlatform_UnsupportedOS(t *testing.T) {
	svc := NewCatalogService(testCatalog())

	for _, arch := range []entities.Architecture{entities.ArchAMD64, entities.ArchARM64, entities.Arch386} {
		err := svc.EnsureSupportedPlatform(entities.PlatformKey{OS: entities.OSWindows, Arch: arch})
		if !errors.Is(err, entities.ErrUnsupportedOS) {
			t.Fatalf("error = %v, want ErrUnsupportedOS", err)
		}
		if !strings.Contains(err.Error(), "windows") {
			t.Errorf("error %q does not name the OS", err)
		}
	}
}

func TestEnsureSupportedPlatform_UnsupportedArch(t *testing.T) {
	svc := NewCatalogService(testCatalog())

	err := svc.EnsureSupportedPlatform(entities.PlatformKey{OS: entities.OSLinux, Arch: entities.ArchARM64})
	if !errors.Is(err, entities.ErrUnsupportedOSArchitecture) {
		t.Fatalf("error = %v, want ErrUnsupportedOSArchitecture", err)
	}
	if !strings.Contains(err.Error(), "linux") || !strings.Contains(err.Error(), "arm64") {
		t.Errorf("error %q does not name both OS and architecture", err)
	}
}

func TestReleaseAssetChecksum(t *testing.T) {
	svc := NewCatalogService(testCatalog())

	tests := []struct {
		name    string
		version string
		os      entities.OperatingSystem
		arch    entities.Architecture
		want    string
		wantOK  bool
	}{
		{
			name:    "present",
			version: "0.1.2", os: entities.OSLinux, arch: entities.ArchAMD64,
			want:   "47a86cd0280a862c0025bad921a39e72c90e22923d1eae1f3bfca29ca989cc4e",
			wantOK: true,
		},
		{name: "unknown os", version: "0.1.2", os: entities.OSWindows, arch: entities.ArchAMD64},
		{name: "unknown arch", version: "0.1.2", os: entities.OSLinux, arch: entities.ArchARM64},
		{name: "unknown version", version: "9.9.9", os: entities.OSLinux, arch: entities.ArchAMD64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := svc.ReleaseAssetChecksum(tt.version, entities.PlatformKey{OS: tt.os, Arch: tt.arch})
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ReleaseAssetChecksum() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCatalogNaming(t *testing.T) {
	svc := NewCatalogService(testCatalog())
	p := entities.PlatformKey{OS: entities.OSDarwin, Arch: entities.ArchARM64}

	if got := svc.Tag("0.1.15"); got != "v0.1.15" {
		t.Errorf("Tag() = %s", got)
	}
	if got := svc.AssetName("0.1.15", p); got != "hc-releases_0.1.15_darwin_arm64.zip" {
		t.Errorf("AssetName() = %s", got)
	}
	if got := svc.ChecksumsAssetName("0.1.15"); got != "hc-releases_0.1.15_SHA256SUMS" {
		t.Errorf("ChecksumsAssetName() = %s", got)
	}
}

func TestSupportedPlatforms_Sorted(t *testing.T) {
	svc := NewCatalogService(testCatalog())

	got := svc.SupportedPlatforms()
	want := []string{"darwin/amd64", "darwin/arm64", "linux/amd64"}
	if len(got) != len(want) {
		t.Fatalf("SupportedPlatforms() = %v", got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("SupportedPlatforms()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
