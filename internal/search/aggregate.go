package search

import (
	"sort"
	"strings"

	"github.com/harrison/scout/internal/models"
)

// Order selects how aggregated results are presented.
type Order string

const (
	// OrderCandidate presents files in the order they were selected.
	OrderCandidate Order = "candidate"
	// OrderCompletion presents files in the order their searches finished.
	// It varies between runs.
	OrderCompletion Order = "completion"
)

// ParseOrder converts a user-supplied order name. An empty string selects
// OrderCandidate.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderCandidate:
		return OrderCandidate, nil
	case OrderCompletion:
		return OrderCompletion, nil
	default:
		return "", models.NewConfigurationError("order", "unknown order %q, must be one of: %s, %s", s, OrderCandidate, OrderCompletion)
	}
}

// Aggregate drops outcomes without matches and returns the remaining file
// results in the requested order. The input slice is not modified.
func Aggregate(outcomes []models.Outcome, order Order) []models.FileSearchResult {
	matched := make([]models.Outcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Matched() {
			matched = append(matched, outcome)
		}
	}

	if order != OrderCompletion {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Candidate.Index < matched[j].Candidate.Index
		})
	}

	results := make([]models.FileSearchResult, 0, len(matched))
	for _, outcome := range matched {
		results = append(results, *outcome.Result)
	}
	return results
}
