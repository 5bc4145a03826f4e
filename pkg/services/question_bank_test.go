package services

import (
	"testing"

	"pcaf-advisory-api/pkg/models"
)

func testDatasets() (*models.QADataset, *models.QADataset) {
	enhanced := &models.QADataset{
		Metadata: models.DatasetMetadata{Version: "2.0.0", LastUpdated: "2026-01-01"},
		Categories: map[string]models.QACategory{
			"methodology": {
				Description: "Methodology",
				Questions: []models.QuestionEntry{
					{ID: "e1", Category: "methodology", Question: "What are the PCAF data quality options?", Answer: "Five options."},
				},
			},
			"compliance": {
				Description: "Compliance",
				Questions: []models.QuestionEntry{
					{ID: "e2", Category: "compliance", Question: "What is the compliance threshold?", Answer: "3.0 or better."},
				},
			},
		},
	}
	base := &models.QADataset{
		Metadata: models.DatasetMetadata{Version: "1.0.0"},
		Categories: map[string]models.QACategory{
			"methodology": {
				Description: "Methodology basics",
				Questions: []models.QuestionEntry{
					{ID: "b1", Category: "methodology", Question: "What is PCAF?", Answer: "A standard."},
				},
			},
		},
	}
	return enhanced, base
}

func TestNewQuestionBank(t *testing.T) {
	enhanced, base := testDatasets()
	bank := NewQuestionBank(enhanced, base)

	if len(bank.EnhancedEntries()) != 2 {
		t.Errorf("Expected 2 enhanced entries, got %d", len(bank.EnhancedEntries()))
	}
	if len(bank.BaseEntries()) != 1 {
		t.Errorf("Expected 1 base entry, got %d", len(bank.BaseEntries()))
	}

	stats := bank.Stats()
	if stats.TotalQuestions != 3 {
		t.Errorf("Expected 3 total questions, got %d", stats.TotalQuestions)
	}
	if stats.Version != "2.0.0" {
		t.Errorf("Expected stats version from enhanced dataset, got %s", stats.Version)
	}
	if stats.CategoryStats["methodology"] != 2 {
		t.Errorf("Expected 2 methodology questions across tiers, got %d", stats.CategoryStats["methodology"])
	}
}

func TestQuestionBankDeterministicOrder(t *testing.T) {
	enhanced, base := testDatasets()

	// Categories are flattened in sorted key order regardless of map
	// iteration, so repeated construction yields identical ordering.
	first := NewQuestionBank(enhanced, base)
	for i := 0; i < 10; i++ {
		enhanced2, base2 := testDatasets()
		again := NewQuestionBank(enhanced2, base2)
		for j := range first.EnhancedEntries() {
			if first.EnhancedEntries()[j].ID != again.EnhancedEntries()[j].ID {
				t.Fatalf("Entry order not deterministic at index %d: %s vs %s",
					j, first.EnhancedEntries()[j].ID, again.EnhancedEntries()[j].ID)
			}
		}
	}

	// Sorted keys: compliance before methodology.
	if first.EnhancedEntries()[0].ID != "e2" {
		t.Errorf("Expected compliance entry first, got %s", first.EnhancedEntries()[0].ID)
	}
}

func TestEntryByID(t *testing.T) {
	enhanced, base := testDatasets()
	bank := NewQuestionBank(enhanced, base)

	entry, ok := bank.EntryByID("b1")
	if !ok {
		t.Fatal("Expected to find base entry b1")
	}
	if entry.Question != "What is PCAF?" {
		t.Errorf("Unexpected question text: %s", entry.Question)
	}

	if _, ok := bank.EntryByID("missing"); ok {
		t.Error("Expected lookup of unknown id to fail")
	}
}

func TestEntriesByCategory(t *testing.T) {
	enhanced, base := testDatasets()
	bank := NewQuestionBank(enhanced, base)

	matches := bank.EntriesByCategory("METHOD")
	if len(matches) != 2 {
		t.Fatalf("Expected 2 methodology matches (case-insensitive substring), got %d", len(matches))
	}
	// Enhanced tier comes first.
	if matches[0].ID != "e1" {
		t.Errorf("Expected enhanced entry first, got %s", matches[0].ID)
	}

	if matches := bank.EntriesByCategory("nonexistent"); len(matches) != 0 {
		t.Errorf("Expected no matches for unknown category, got %d", len(matches))
	}
}
