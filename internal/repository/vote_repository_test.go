package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"moim-be/internal/domain"
)

func TestSortedEntries(t *testing.T) {
	entries := sortedEntries(map[string]int{
		"25.11.11.09:00": 2,
		"25.11.11.14:00": 5,
		"25.11.12.09:00": 2,
		"25.11.12.14:00": 0,
	})

	assert.Equal(t, []domain.TallyEntry{
		{Label: "25.11.11.14:00", Count: 5},
		{Label: "25.11.11.09:00", Count: 2},
		{Label: "25.11.12.09:00", Count: 2},
		{Label: "25.11.12.14:00", Count: 0},
	}, entries)
}

func TestSortedEntries_Empty(t *testing.T) {
	assert.Empty(t, sortedEntries(nil))
	assert.Empty(t, sortedEntries(map[string]int{}))
}

func TestBestCount(t *testing.T) {
	assert.Equal(t, 0, bestCount(domain.CandidateTally{}))
	assert.Equal(t, 7, bestCount(domain.CandidateTally{Entries: []domain.TallyEntry{
		{Label: "25.11.11.09:00", Count: 7},
		{Label: "25.11.11.14:00", Count: 3},
	}}))
}
