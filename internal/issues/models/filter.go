package models

import (
	"cmp"
	"slices"
	"strings"
)

// Matches applies every non-zero constraint in f to i. PostgreSQL stores
// express the same predicate in SQL.
func (f Filter) Matches(i *Issue) bool {
	if f.Category != "" && i.Category != f.Category {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, i.Category) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, i.Status) {
		return false
	}
	if f.District != "" && !strings.EqualFold(i.Location.District, f.District) {
		return false
	}
	if f.IsCrisis != nil && i.IsCrisis != *f.IsCrisis {
		return false
	}
	if f.MinistryID != nil && !i.IsTaggedTo(*f.MinistryID) {
		return false
	}
	if f.NGOID != nil && !i.ClaimedBy(*f.NGOID) {
		return false
	}
	if f.ReporterID != nil && i.ReporterID != *f.ReporterID {
		return false
	}
	if f.Unclaimed && i.IsClaimed() {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(i.Title), q) && !strings.Contains(strings.ToLower(i.Description), q) {
			return false
		}
	}
	return true
}

// Compare orders issues for f.Sort: newest first, or most verified first with
// newest as tie-break. Equal timestamps fall back to id so pages are stable.
func (f Filter) Compare(a, b *Issue) int {
	if f.Sort == SortMostVerified && a.VerificationCount != b.VerificationCount {
		return b.VerificationCount - a.VerificationCount
	}
	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
}

// GroupBy names the dimension for distribution counts.
type GroupBy string

const (
	GroupByCategory GroupBy = "category"
	GroupByDistrict GroupBy = "district"
	GroupByStatus   GroupBy = "status"
)

func (g GroupBy) IsValid() bool {
	return g == GroupByCategory || g == GroupByDistrict || g == GroupByStatus
}

// Key returns the group value of i for g.
func (g GroupBy) Key(i *Issue) string {
	switch g {
	case GroupByCategory:
		return string(i.Category)
	case GroupByDistrict:
		return i.Location.District
	default:
		return string(i.Status)
	}
}
