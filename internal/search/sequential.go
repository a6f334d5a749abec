package search

import (
	"github.com/harrison/scout/internal/models"
)

// Sequential searches candidates one at a time on the calling goroutine.
// Outcomes are returned in candidate order.
func Sequential(m FileMatcher, candidates []models.Candidate, pattern string) []models.Outcome {
	outcomes := make([]models.Outcome, 0, len(candidates))
	for _, candidate := range candidates {
		outcomes = append(outcomes, models.Outcome{
			Candidate: candidate,
			Result:    m.MatchFile(candidate.Path, pattern),
		})
	}
	return outcomes
}
