// Package yaml provides YAML-based catalog parsing and repository implementations.
package yaml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

const schemaURL = "catalog.schema.json"

// yamlCatalog represents the raw YAML structure
type yamlCatalog struct {
	Product       string                                  `yaml:"product"`
	Owner         string                                  `yaml:"owner"`
	Repo          string                                  `yaml:"repo"`
	Executable    string                                  `yaml:"executable"`
	LatestVersion string                                  `yaml:"latest_version"`
	Platforms     map[string][]string                     `yaml:"platforms"`
	Checksums     map[string]map[string]map[string]string `yaml:"checksums"`
}

// CatalogParser parses and validates YAML catalog documents
type CatalogParser struct {
	schema *jsonschema.Schema
}

// NewCatalogParser creates a parser validating against the embedded catalog schema
func NewCatalogParser() (*CatalogParser, error) {
	raw, err := catalogFS.ReadFile("catalogs/" + schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to load catalog schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	return &CatalogParser{schema: schema}, nil
}

// ParseFile parses a YAML catalog file into a Catalog entity
func (p *CatalogParser) ParseFile(filePath string) (*entities.Catalog, error) {
	//nolint:gosec // G304: filePath is a catalog path chosen by the caller
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse merges the given YAML documents in order, later documents overriding
// earlier ones key by key, validates the result and converts it to a Catalog.
func (p *CatalogParser) Parse(docs ...[]byte) (*entities.Catalog, error) {
	merged := map[string]any{}
	for i, data := range docs {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML document %d: %w", entities.ErrInvalidCatalog, i, err)
		}
		if doc == nil {
			continue
		}
		m, ok := normalize(doc).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: document %d is not a mapping", entities.ErrInvalidCatalog, i)
		}
		mergeInto(merged, m)
	}

	if err := p.validate(merged); err != nil {
		return nil, err
	}

	// Re-decode the validated document into typed structs
	out, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	var yc yamlCatalog
	if err := yaml.Unmarshal(out, &yc); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrInvalidCatalog, err)
	}

	return convertCatalog(yc), nil
}

func (p *CatalogParser) validate(doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrInvalidCatalog, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrInvalidCatalog, err)
	}
	if err := p.schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrInvalidCatalog, err)
	}
	return nil
}

// normalize turns YAML mappings with non-string keys (e.g. 386) into string-keyed maps
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	case int:
		return fmt.Sprint(t)
	default:
		return v
	}
}

// mergeInto deep-merges src into dst; mappings merge, everything else replaces
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

func convertCatalog(yc yamlCatalog) *entities.Catalog {
	platforms := make(map[entities.OperatingSystem][]entities.Architecture, len(yc.Platforms))
	for osName, archs := range yc.Platforms {
		converted := make([]entities.Architecture, len(archs))
		for i, arch := range archs {
			converted[i] = entities.Architecture(arch)
		}
		platforms[entities.OperatingSystem(osName)] = converted
	}

	checksums := make(map[string]map[entities.OperatingSystem]map[entities.Architecture]string, len(yc.Checksums))
	for version, byOS := range yc.Checksums {
		checksums[version] = make(map[entities.OperatingSystem]map[entities.Architecture]string, len(byOS))
		for osName, byArch := range byOS {
			digests := make(map[entities.Architecture]string, len(byArch))
			for arch, sum := range byArch {
				digests[entities.Architecture(arch)] = sum
			}
			checksums[version][entities.OperatingSystem(osName)] = digests
		}
	}

	return &entities.Catalog{
		Product:       yc.Product,
		Owner:         yc.Owner,
		Repo:          yc.Repo,
		Executable:    yc.Executable,
		LatestVersion: yc.LatestVersion,
		Platforms:     platforms,
		Checksums:     checksums,
	}
}
