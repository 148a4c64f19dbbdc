package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Symbol is one entry of the static ticker catalog offered to clients.
type Symbol struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"` // e.g. "NASDAQ"
	MIC      string `json:"mic"`      // e.g. "XNAS"
}

// SymbolList represents a collection of symbols
type SymbolList struct {
	UpdatedAt string   `json:"updated_at"` // ISO 8601 timestamp
	Symbols   []Symbol `json:"symbols"`
}

// LoadSymbols loads the catalog from a JSON file
func LoadSymbols(filePath string) (*SymbolList, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols file: %w", err)
	}

	var list SymbolList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse symbols file: %w", err)
	}

	return &list, nil
}

// SaveSymbols saves the catalog to a JSON file, sorted by symbol.
func SaveSymbols(list *SymbolList, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	sort.Slice(list.Symbols, func(i, j int) bool {
		return list.Symbols[i].Symbol < list.Symbols[j].Symbol
	})

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal symbols: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write symbols file: %w", err)
	}

	return nil
}

// DefaultSymbolsPath returns the default path for the symbols file
func DefaultSymbolsPath() string {
	if path := os.Getenv("SYMBOLS_FILE"); path != "" {
		return path
	}
	return "./data/symbols.json"
}
