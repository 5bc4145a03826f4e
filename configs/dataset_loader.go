package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pcaf-advisory-api/pkg/models"
)

// Dataset file names expected under Config.DatasetDir.
const (
	EnhancedDatasetFile = "enhanced_motor_vehicle_qa.json"
	BaseDatasetFile     = "motor_vehicle_qa.json"
)

// LoadQADataset reads and validates a curated Q&A dataset file.
// A malformed dataset (unreadable file, invalid JSON, missing answer text,
// duplicate question IDs) is a load-time error; the caller is expected to
// treat it as fatal rather than serve partial Q&A data.
func LoadQADataset(path string) (*models.QADataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}

	var dataset models.QADataset
	if err := json.Unmarshal(raw, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file %s: %w", path, err)
	}

	if len(dataset.Categories) == 0 {
		return nil, fmt.Errorf("dataset %s contains no categories", path)
	}

	// Validate entries and stamp each with its category key.
	seen := make(map[string]string)
	for key, category := range dataset.Categories {
		for i := range category.Questions {
			q := &category.Questions[i]
			if q.ID == "" {
				return nil, fmt.Errorf("dataset %s: category %s has a question without an id", path, key)
			}
			if q.Question == "" {
				return nil, fmt.Errorf("dataset %s: question %s has no question text", path, q.ID)
			}
			if q.Answer == "" {
				return nil, fmt.Errorf("dataset %s: question %s has no answer text", path, q.ID)
			}
			if prev, dup := seen[q.ID]; dup {
				return nil, fmt.Errorf("dataset %s: duplicate question id %s (categories %s and %s)", path, q.ID, prev, key)
			}
			seen[q.ID] = key
			if q.Category == "" {
				q.Category = key
			}
		}
		dataset.Categories[key] = category
	}

	return &dataset, nil
}

// LoadDatasets loads the enhanced and base datasets from the configured
// dataset directory.
func LoadDatasets(datasetDir string) (enhanced, base *models.QADataset, err error) {
	enhanced, err = LoadQADataset(filepath.Join(datasetDir, EnhancedDatasetFile))
	if err != nil {
		return nil, nil, err
	}
	base, err = LoadQADataset(filepath.Join(datasetDir, BaseDatasetFile))
	if err != nil {
		return nil, nil, err
	}
	return enhanced, base, nil
}
