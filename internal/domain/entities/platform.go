package entities

// OperatingSystem is an operating system name in release artifact vocabulary
type OperatingSystem string

// Operating systems that release artifacts can be published for
const (
	OSAIX     OperatingSystem = "aix"
	OSDarwin  OperatingSystem = "darwin"
	OSFreeBSD OperatingSystem = "freebsd"
	OSLinux   OperatingSystem = "linux"
	OSOpenBSD OperatingSystem = "openbsd"
	OSSolaris OperatingSystem = "solaris"
	OSWindows OperatingSystem = "windows"
)

// Architecture is a CPU architecture name in release artifact vocabulary
type Architecture string

// Architectures that release artifacts can be published for
const (
	Arch386   Architecture = "386"
	ArchAMD64 Architecture = "amd64"
	ArchARM   Architecture = "arm"
	ArchARM64 Architecture = "arm64"
	ArchMIPS  Architecture = "mips"
	ArchPPC64 Architecture = "ppc64"
	ArchS390X Architecture = "s390x"
)

// PlatformKey identifies one (OS, architecture) pair
type PlatformKey struct {
	OS   OperatingSystem
	Arch Architecture
}

// String returns the platform as "os/arch"
func (p PlatformKey) String() string {
	return string(p.OS) + "/" + string(p.Arch)
}
