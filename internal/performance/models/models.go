package models

import (
	"cmp"
	"math"
	"slices"
	"time"

	ministrymodels "civiclink/internal/ministry/models"
	ngomodels "civiclink/internal/ngo/models"
)

// LeaderboardSize caps each leaderboard column.
const LeaderboardSize = 10

// Bucket is one row of a distribution report.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Leaderboard ranks ministries by resolution rate and verified NGOs by success rate.
type Leaderboard struct {
	Ministries []*ministrymodels.Ministry `json:"ministries"`
	NGOs       []*ngomodels.NGO           `json:"ngos"`
	ComputedAt time.Time                  `json:"computed_at"`
}

// PlatformStats is the public summary of platform activity.
type PlatformStats struct {
	TotalIssues    int            `json:"total_issues"`
	SolvedIssues   int            `json:"solved_issues"`
	ActiveUsers    int            `json:"active_users"`
	VerifiedNGOs   int            `json:"verified_ngos"`
	Ministries     int            `json:"ministries"`
	ResolutionRate float64        `json:"resolution_rate"`
	ByStatus       map[string]int `json:"by_status"`
	ByCategory     []Bucket       `json:"by_category"`
	TopDistricts   []Bucket       `json:"top_districts"`
	ComputedAt     time.Time      `json:"computed_at"`
}

// Analytics is an issue distribution along one dimension.
type Analytics struct {
	GroupBy string   `json:"group_by"`
	Buckets []Bucket `json:"buckets"`
	Total   int      `json:"total"`
}

type UserCounts struct {
	Total      int `json:"total"`
	Citizens   int `json:"citizens"`
	Government int `json:"government"`
	NGOs       int `json:"ngos"`
	Suspended  int `json:"suspended"`
}

type IssueCounts struct {
	Total    int            `json:"total"`
	Crisis   int            `json:"crisis"`
	ByStatus map[string]int `json:"by_status"`
}

type NGOCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
}

// Dashboard is the administrator's overview.
type Dashboard struct {
	Users      UserCounts  `json:"users"`
	Issues     IssueCounts `json:"issues"`
	NGOs       NGOCounts   `json:"ngos"`
	Ministries int         `json:"ministries"`
}

// Percent returns part/total*100 rounded to two decimals, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Buckets turns a count map into rows ordered by count, then key.
// limit <= 0 keeps every row.
func Buckets(counts map[string]int, limit int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for k, v := range counts {
		out = append(out, Bucket{Key: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Key, b.Key))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Sum adds up every count.
func Sum(counts map[string]int) int {
	total := 0
	for _, v := range counts {
		total += v
	}
	return total
}
