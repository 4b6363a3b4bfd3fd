package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// catalogFile is the shape of an on-disk neighborhood catalog override.
type catalogFile struct {
	Neighborhoods []Neighborhood `json:"neighborhoods"`
}

// LoadNeighborhoodCatalog replaces the built-in neighborhood catalog with the
// contents of a JSON file. Used by deployments that track a different set of
// neighborhoods than the default six.
func LoadNeighborhoodCatalog(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %v", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalog file: %v", err)
	}

	if len(file.Neighborhoods) == 0 {
		return fmt.Errorf("catalog file %s contains no neighborhoods", path)
	}
	for _, n := range file.Neighborhoods {
		if n.ID == "" || n.Name == "" {
			return fmt.Errorf("catalog entry missing id or name: %+v", n)
		}
		if n.MaxPrice < n.MinPrice {
			return fmt.Errorf("catalog entry %s has inverted price band", n.ID)
		}
	}

	SupportedNeighborhoods = file.Neighborhoods
	return nil
}

// SaveNeighborhoodCatalog writes the current catalog to a JSON file.
func SaveNeighborhoodCatalog(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := json.MarshalIndent(catalogFile{Neighborhoods: SupportedNeighborhoods}, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %v", err)
	}

	if err := os.WriteFile(absPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %v", err)
	}

	return nil
}
