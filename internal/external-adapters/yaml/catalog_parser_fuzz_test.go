package yaml

import (
	"testing"
)

// FuzzCatalogParser tests the YAML parser against random/malformed inputs
// to detect crashes, panics, or unexpected behavior.
//
// Run with: go test -fuzz=FuzzCatalogParser -fuzztime=30s
func FuzzCatalogParser(f *testing.F) {
	f.Add([]byte(minimalCatalog))
	f.Add([]byte(`product: x
platforms:
  linux: [amd64]
checksums: {}
`))
	f.Add([]byte(`{product: 1, owner: [a], repo: {b: c}}`))
	f.Add([]byte(`? [complex, key]
: value
`))
	f.Add([]byte(""))

	p, err := NewCatalogParser()
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(_ *testing.T, data []byte) {
		// Must never panic; errors are expected for most inputs
		_, _ = p.Parse(data)
	})
}
