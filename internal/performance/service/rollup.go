package service

import (
	"time"

	issuemodels "civiclink/internal/issues/models"
	ministrymodels "civiclink/internal/ministry/models"
	ngomodels "civiclink/internal/ngo/models"
	"civiclink/internal/performance/models"
)

// ministryRollup summarises the issues tagged to one ministry. Pending counts
// issues still awaiting action (pending or verified). The response average
// covers only issues that carry a government response.
func ministryRollup(issues []*issuemodels.Issue, now time.Time) ministrymodels.Stats {
	stats := ministrymodels.Stats{TotalIssues: len(issues), ComputedAt: &now}
	var (
		responded int
		elapsed   time.Duration
	)
	for _, issue := range issues {
		switch issue.Status {
		case issuemodels.StatusSolved:
			stats.Solved++
		case issuemodels.StatusPending, issuemodels.StatusVerified:
			stats.Pending++
		}
		if d, ok := issue.ResponseTime(); ok {
			responded++
			elapsed += d
		}
	}
	stats.ResolutionRate = models.Percent(stats.Solved, stats.TotalIssues)
	if responded > 0 {
		stats.AvgResponseTimeHours = models.Round2(elapsed.Hours() / float64(responded))
	}
	return stats
}

// ngoRollup summarises the issues claimed by one NGO. Only solved issues
// whose solution was verified count as completed.
func ngoRollup(issues []*issuemodels.Issue, now time.Time) ngomodels.Stats {
	stats := ngomodels.Stats{TotalClaimed: len(issues), ComputedAt: &now}
	for _, issue := range issues {
		if issue.Status == issuemodels.StatusSolved && issue.SolutionVerified {
			stats.Completed++
		}
	}
	stats.SuccessRate = models.Percent(stats.Completed, stats.TotalClaimed)
	return stats
}
