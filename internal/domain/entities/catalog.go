package entities

// Catalog describes one released tool: where it is published, which
// platforms have artifacts and which digests are known good.
// A loaded Catalog is never mutated.
type Catalog struct {
	Product       string
	Owner         string
	Repo          string
	Executable    string
	LatestVersion string

	// Platforms maps an OS to the architectures published for it
	Platforms map[OperatingSystem][]Architecture

	// Checksums maps version -> OS -> architecture -> hex SHA-256
	Checksums map[string]map[OperatingSystem]map[Architecture]string
}
