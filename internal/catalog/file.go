package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Load decodes a JSON array of menu items and validates it with New.
func Load(r io.Reader) (*Catalog, error) {
	var items []MenuItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	return New(items)
}

// LoadFile reads a menu written by WriteFile or by hand.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Write encodes items as an indented JSON array.
func Write(w io.Writer, items []MenuItem) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}
	return nil
}

// WriteFile writes items to path, replacing any existing file.
func WriteFile(path string, items []MenuItem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	if err := Write(f, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
