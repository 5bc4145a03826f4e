package services

import (
	"log"
	"sort"
	"strings"

	"pcaf-advisory-api/pkg/models"
)

// QuestionBank holds the curated Q&A entries for both dataset tiers.
// It is built once at startup and read-only afterwards, so it is safe for
// unlimited concurrent readers.
type QuestionBank struct {
	enhanced []models.QuestionEntry
	base     []models.QuestionEntry
	byID     map[string]models.QuestionEntry
	stats    models.DatasetStats
}

// NewQuestionBank flattens the loaded datasets into ordered entry slices.
// Categories are walked in sorted key order so iteration order, and therefore
// tie-breaking during matching, is deterministic.
func NewQuestionBank(enhanced, base *models.QADataset) *QuestionBank {
	bank := &QuestionBank{
		byID: make(map[string]models.QuestionEntry),
	}

	categoryStats := make(map[string]int)
	bank.enhanced = flattenDataset(enhanced, categoryStats, bank.byID)
	bank.base = flattenDataset(base, categoryStats, bank.byID)

	bank.stats = models.DatasetStats{
		TotalQuestions:    len(bank.enhanced) + len(bank.base),
		EnhancedQuestions: len(bank.enhanced),
		BaseQuestions:     len(bank.base),
		CategoryStats:     categoryStats,
		Version:           enhanced.Metadata.Version,
		LastUpdated:       enhanced.Metadata.LastUpdated,
	}

	log.Printf("Loaded %d enhanced and %d base Q&A pairs (dataset version %s)",
		len(bank.enhanced), len(bank.base), enhanced.Metadata.Version)
	return bank
}

func flattenDataset(dataset *models.QADataset, categoryStats map[string]int, byID map[string]models.QuestionEntry) []models.QuestionEntry {
	if dataset == nil {
		return nil
	}

	keys := make([]string, 0, len(dataset.Categories))
	for key := range dataset.Categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var entries []models.QuestionEntry
	for _, key := range keys {
		category := dataset.Categories[key]
		for _, q := range category.Questions {
			entries = append(entries, q)
			categoryStats[key]++
			if _, exists := byID[q.ID]; !exists {
				byID[q.ID] = q
			}
		}
	}
	return entries
}

// EnhancedEntries returns the enhanced-tier entries in load order.
func (b *QuestionBank) EnhancedEntries() []models.QuestionEntry {
	return b.enhanced
}

// BaseEntries returns the base-tier entries in load order.
func (b *QuestionBank) BaseEntries() []models.QuestionEntry {
	return b.base
}

// EntryByID looks up a question across both tiers, enhanced tier first.
func (b *QuestionBank) EntryByID(id string) (models.QuestionEntry, bool) {
	entry, ok := b.byID[id]
	return entry, ok
}

// EntriesByCategory returns all entries whose category contains the given
// name (case-insensitive), enhanced tier first.
func (b *QuestionBank) EntriesByCategory(category string) []models.QuestionEntry {
	needle := strings.ToLower(category)
	var matches []models.QuestionEntry
	for _, entry := range b.enhanced {
		if strings.Contains(strings.ToLower(entry.Category), needle) {
			matches = append(matches, entry)
		}
	}
	for _, entry := range b.base {
		if strings.Contains(strings.ToLower(entry.Category), needle) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// Stats returns the dataset statistics computed at load time.
func (b *QuestionBank) Stats() models.DatasetStats {
	return b.stats
}
