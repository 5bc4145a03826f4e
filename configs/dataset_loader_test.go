package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test dataset: %v", err)
	}
	return path
}

const validDataset = `{
  "metadata": {"version": "1.0.0", "lastUpdated": "2026-01-01", "assetClass": "motor_vehicle"},
  "categories": {
    "methodology": {
      "description": "Test category",
      "questions": [
        {"id": "q1", "question": "What is PCAF?", "answer": "A carbon accounting standard."},
        {"id": "q2", "question": "What is WDQS?", "answer": "The weighted data quality score."}
      ]
    }
  }
}`

func TestLoadQADataset(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "valid.json", validDataset)

	dataset, err := LoadQADataset(path)
	if err != nil {
		t.Fatalf("LoadQADataset() returned error: %v", err)
	}

	if dataset.Metadata.Version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got '%s'", dataset.Metadata.Version)
	}
	category, ok := dataset.Categories["methodology"]
	if !ok {
		t.Fatal("Expected 'methodology' category to be present")
	}
	if len(category.Questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(category.Questions))
	}
	// Category is stamped from the map key at load time.
	if category.Questions[0].Category != "methodology" {
		t.Errorf("Expected category to be stamped, got '%s'", category.Questions[0].Category)
	}
}

func TestLoadQADatasetMissingFile(t *testing.T) {
	_, err := LoadQADataset(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}

func TestLoadQADatasetInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "broken.json", "{not json")

	if _, err := LoadQADataset(path); err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
}

func TestLoadQADatasetEmptyCategories(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "empty.json", `{"metadata": {"version": "1.0.0"}, "categories": {}}`)

	if _, err := LoadQADataset(path); err == nil {
		t.Fatal("Expected error for empty categories, got nil")
	}
}

func TestLoadQADatasetMissingAnswer(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "noanswer.json", `{
	  "metadata": {"version": "1.0.0"},
	  "categories": {
	    "methodology": {
	      "description": "Test",
	      "questions": [{"id": "q1", "question": "What is PCAF?", "answer": ""}]
	    }
	  }
	}`)

	_, err := LoadQADataset(path)
	if err == nil {
		t.Fatal("Expected error for missing answer, got nil")
	}
	if !strings.Contains(err.Error(), "no answer text") {
		t.Errorf("Expected 'no answer text' in error, got: %v", err)
	}
}

func TestLoadQADatasetDuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "dup.json", `{
	  "metadata": {"version": "1.0.0"},
	  "categories": {
	    "methodology": {
	      "description": "Test",
	      "questions": [
	        {"id": "q1", "question": "A?", "answer": "A."},
	        {"id": "q1", "question": "B?", "answer": "B."}
	      ]
	    }
	  }
	}`)

	_, err := LoadQADataset(path)
	if err == nil {
		t.Fatal("Expected error for duplicate question id, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate question id") {
		t.Errorf("Expected 'duplicate question id' in error, got: %v", err)
	}
}

func TestLoadDatasets(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, EnhancedDatasetFile, validDataset)
	writeDataset(t, dir, BaseDatasetFile, validDataset)

	enhanced, base, err := LoadDatasets(dir)
	if err != nil {
		t.Fatalf("LoadDatasets() returned error: %v", err)
	}
	if enhanced == nil || base == nil {
		t.Fatal("Expected both datasets to be loaded")
	}
}

func TestLoadDatasetsShippedFiles(t *testing.T) {
	enhanced, base, err := LoadDatasets("../data")
	if err != nil {
		t.Fatalf("shipped datasets failed to load: %v", err)
	}
	if len(enhanced.Categories) == 0 || len(base.Categories) == 0 {
		t.Fatal("shipped datasets are empty")
	}
}
