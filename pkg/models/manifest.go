package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatementParser is an interface that defines the contract for validating
// raw statement files into ledger records.
type StatementParser interface {
	ProcessBytes(data []byte, filename string) (Ledger, error)
}

// Manifest represents the structure of the YAML manifest file, listing
// statement files to import in a single run.
type Manifest struct {
	Imports []ImportFile `yaml:"imports"`
}

// ImportFile represents a single statement file to be imported.
type ImportFile struct {
	FilePath string `yaml:"file"`
}

// File returns the absolute path to the statement file, expanding ~.
func (f *ImportFile) File() (string, error) {
	if strings.HasPrefix(f.FilePath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, f.FilePath[2:]), nil
	}
	return f.FilePath, nil
}

// Transactions reads the statement file and uses the provided parser to return records.
func (f *ImportFile) Transactions(p StatementParser) (Ledger, error) {
	filePath, err := f.File()
	if err != nil {
		return nil, err
	}

	fileBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement file %s: %w", filePath, err)
	}

	records, err := p.ProcessBytes(fileBytes, filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to process statement file %s: %w", filePath, err)
	}

	return records, nil
}

// ManifestFromFile reads a manifest from a YAML file.
func ManifestFromFile(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	err = yaml.Unmarshal(data, &manifest)
	if err != nil {
		return nil, err
	}

	return &manifest, nil
}
