package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedDocument struct {
	Entries []Entry `yaml:"entries"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	c, err := Load(bytes.NewReader(seedYAML))
	if err != nil {
		return nil, fmt.Errorf("load embedded seed: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML seed document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// Load decodes a YAML seed document and builds a Catalog from it.
// Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc seedDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return New(doc.Entries)
}
