package llm

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Catalog struct {
	SystemPrompt string        `yaml:"system_prompt"`
	Functions    []FunctionDef `yaml:"functions"`
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
	catalogErr  error
)

// ParseCatalog decodes a catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse function catalog: %w", err)
	}
	for i, f := range c.Functions {
		if f.Name == "" {
			return nil, fmt.Errorf("function catalog entry %d has no name", i)
		}
		if f.Parameters == nil {
			c.Functions[i].Parameters = map[string]any{"type": "object", "properties": map[string]any{}}
		}
	}
	return &c, nil
}

// DefaultCatalog returns the embedded assistant catalog. It panics on a malformed
// embed since that is a build defect.
func DefaultCatalog() *Catalog {
	catalogOnce.Do(func() {
		catalog, catalogErr = ParseCatalog(catalogYAML)
	})
	if catalogErr != nil {
		panic(catalogErr)
	}
	return catalog
}
