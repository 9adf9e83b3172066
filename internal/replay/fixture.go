package replay

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed fixtures/agronomy.json
var defaultFixture []byte

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes fixture JSON. Unknown keys are rejected.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("fixture has no cases")
	}
	return &f, nil
}

// Default returns the built-in calculator baseline.
func Default() *Fixture {
	f, err := ParseFixture(defaultFixture)
	if err != nil {
		panic(fmt.Sprintf("embedded fixture: %v", err))
	}
	return f
}

// Save writes f as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader
