package services

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

// Architecture maps a host CPU identifier to release artifact vocabulary.
// It accepts Go (GOARCH), Node.js (process.arch), uname and GitHub runner
// (RUNNER_ARCH) spellings.
func Architecture(raw string) (entities.Architecture, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "arm":
		return entities.ArchARM, nil
	case "arm64":
		return entities.ArchARM64, nil
	case "mips":
		return entities.ArchMIPS, nil
	case "ppc64":
		return entities.ArchPPC64, nil
	case "s390x":
		return entities.ArchS390X, nil
	case "386", "ia32", "x32", "x86", "i386", "i686":
		return entities.Arch386, nil
	case "amd64", "x64", "x86_64":
		return entities.ArchAMD64, nil
	default:
		return "", fmt.Errorf("%w: %s", entities.ErrUnsupportedArchitecture, raw)
	}
}

// OperatingSystem maps a host OS identifier to release artifact vocabulary
func OperatingSystem(raw string) (entities.OperatingSystem, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "aix":
		return entities.OSAIX, nil
	case "darwin", "macos":
		return entities.OSDarwin, nil
	case "freebsd":
		return entities.OSFreeBSD, nil
	case "linux":
		return entities.OSLinux, nil
	case "openbsd":
		return entities.OSOpenBSD, nil
	case "sunos", "solaris", "illumos":
		return entities.OSSolaris, nil
	case "windows", "win32":
		return entities.OSWindows, nil
	default:
		return "", fmt.Errorf("%w: %s", entities.ErrUnsupportedOperatingSystem, raw)
	}
}

// HostPlatform returns the platform of the running process
func HostPlatform() (entities.PlatformKey, error) {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}

// PlatformFor maps a raw (os, arch) pair to a PlatformKey
func PlatformFor(rawOS, rawArch string) (entities.PlatformKey, error) {
	goos, err := OperatingSystem(rawOS)
	if err != nil {
		return entities.PlatformKey{}, err
	}

	arch, err := Architecture(rawArch)
	if err != nil {
		return entities.PlatformKey{}, err
	}

	return entities.PlatformKey{OS: goos, Arch: arch}, nil
}
