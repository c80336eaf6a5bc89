// Package seed loads breed and category fixtures from JSON files and writes
// them to the store in one transaction.
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dogbreeds-graphql/internal/logging"
)

// CategoriesFile is the fixture file holding the category list. Every other
// .json file in the directory holds breeds.
const CategoriesFile = "categories.json"

// CategoryRecord is one entry of categories.json.
type CategoryRecord struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// BreedRecord is one breed fixture. CategoryName overrides the category
// derived from the file name.
type BreedRecord struct {
	Name                  string   `json:"name"`
	CommonNames           []string `json:"commonNames"`
	Description           string   `json:"description"`
	History               string   `json:"history"`
	FunFact               *string  `json:"funFact"`
	Health                string   `json:"health"`
	Origin                string   `json:"origin"`
	Colors                []string `json:"colors"`
	AverageHeight         float64  `json:"averageHeight"`
	AverageWeight         float64  `json:"averageWeight"`
	AverageLifeExpectancy float64  `json:"averageLifeExpectancy"`
	ExerciseRequired      int      `json:"exerciseRequired"`
	EaseOfTraining        int      `json:"easeOfTraining"`
	Affection             int      `json:"affection"`
	Playfulness           int      `json:"playfulness"`
	GoodWithChildren      int      `json:"goodWithChildren"`
	GoodWithDogs          int      `json:"goodWithDogs"`
	GroomingRequired      int      `json:"groomingRequired"`
	CategoryName          string   `json:"categoryName"`
}

// Data is a loaded fixture set.
type Data struct {
	Categories []CategoryRecord
	Breeds     []BreedRecord
}

// LoadDir reads categories.json and every breed file in dir. Breed files that
// are not a JSON array are skipped with a warning.
func LoadDir(dir string, logger *logging.Logger) (*Data, error) {
	data := &Data{}
	if err := readJSON(filepath.Join(dir, CategoriesFile), &data.Categories); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	for _, file := range files {
		if filepath.Base(file) == CategoriesFile {
			continue
		}
		var breeds []BreedRecord
		if err := readJSON(file, &breeds); err != nil {
			logger.Warn("skipping breed file", "file", file, "error", err.Error())
			continue
		}
		fallback := CategoryNameFromFile(file)
		for i := range breeds {
			if strings.TrimSpace(breeds[i].CategoryName) == "" {
				breeds[i].CategoryName = fallback
			}
		}
		data.Breeds = append(data.Breeds, breeds...)
	}
	return data, nil
}

// CategoryNameFromFile turns "toy-breeds.json" into "Toy Breeds".
func CategoryNameFromFile(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.Split(base, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func readJSON(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
