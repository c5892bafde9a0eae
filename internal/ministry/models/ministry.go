package models

import (
	"net/mail"
	"slices"
	"strings"
	"time"

	issuemodels "civiclink/internal/issues/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	pstrings "civiclink/pkg/platform/strings"
)

// Name carries the three official-language names of a ministry.
type Name struct {
	EN string `json:"en"`
	SI string `json:"si,omitempty"`
	TA string `json:"ta,omitempty"`
}

// Stats are derived from issue data and recomputed on demand. They are
// never used for authorization.
type Stats struct {
	TotalIssues          int        `json:"total_issues"`
	Solved               int        `json:"solved"`
	Pending              int        `json:"pending"`
	ResolutionRate       float64    `json:"resolution_rate"`
	AvgResponseTimeHours float64    `json:"avg_response_time_hours"`
	ComputedAt           *time.Time `json:"computed_at,omitempty"`
}

// Ministry is a government body responsible for one or more categories.
//
// Invariants:
//   - Name.EN is non-empty
//   - Categories is non-empty, lower-case, deduplicated, and each entry is a
//     known category (see AllowedCategory)
//   - Officers holds each user at most once
type Ministry struct {
	ID           id.MinistryID `json:"id"`
	Name         Name          `json:"name"`
	Categories   []string      `json:"categories"`
	ContactEmail string        `json:"contact_email,omitempty"`
	ContactPhone string        `json:"contact_phone,omitempty"`
	Officers     []id.UserID   `json:"officers"`
	Stats        Stats         `json:"performance_stats"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// keywordCategories maps free-text keywords to the extra categories a
// ministry may register for beyond the issue taxonomy.
var keywordCategories = map[string]string{
	"health":      "health",
	"education":   "education",
	"police":      "law_enforcement",
	"environment": "environment",
}

// KeywordCategories returns the keyword→category map used for suggestions.
func KeywordCategories() map[string]string {
	out := make(map[string]string, len(keywordCategories))
	for k, v := range keywordCategories {
		out[k] = v
	}
	return out
}

// AllowedCategory reports whether c may appear in a ministry's category list.
func AllowedCategory(c string) bool {
	if issuemodels.Category(c).IsValid() {
		return true
	}
	for _, v := range keywordCategories {
		if v == c {
			return true
		}
	}
	return false
}

func NewMinistry(
	ministryID id.MinistryID,
	name Name,
	categories []string,
	contactEmail, contactPhone string,
	now time.Time,
) (*Ministry, error) {
	m := &Ministry{
		ID:        ministryID,
		Officers:  []id.UserID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.apply(name, categories, contactEmail, contactPhone); err != nil {
		return nil, err
	}
	return m, nil
}

// Update replaces the descriptive fields, keeping officers and stats.
func (m *Ministry) Update(name Name, categories []string, contactEmail, contactPhone string, now time.Time) error {
	if err := m.apply(name, categories, contactEmail, contactPhone); err != nil {
		return err
	}
	m.UpdatedAt = now
	return nil
}

func (m *Ministry) apply(name Name, categories []string, contactEmail, contactPhone string) error {
	name.EN = strings.TrimSpace(name.EN)
	name.SI = strings.TrimSpace(name.SI)
	name.TA = strings.TrimSpace(name.TA)
	if name.EN == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "ministry name (en) is required")
	}
	cats := pstrings.DedupeAndTrimLower(categories)
	if len(cats) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "ministry must handle at least one category")
	}
	for _, c := range cats {
		if !AllowedCategory(c) {
			return dErrors.New(dErrors.CodeInvariantViolation, "unknown category: "+c)
		}
	}
	contactEmail = strings.TrimSpace(contactEmail)
	if contactEmail != "" {
		if _, err := mail.ParseAddress(contactEmail); err != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "invalid contact email")
		}
	}
	m.Name = name
	m.Categories = cats
	m.ContactEmail = contactEmail
	m.ContactPhone = strings.TrimSpace(contactPhone)
	return nil
}

func (m *Ministry) HandlesCategory(c string) bool {
	return slices.Contains(m.Categories, c)
}

func (m *Ministry) HasOfficer(u id.UserID) bool {
	return slices.Contains(m.Officers, u)
}

// AddOfficer assigns u; returns false when u was already assigned.
func (m *Ministry) AddOfficer(u id.UserID, now time.Time) bool {
	if m.HasOfficer(u) {
		return false
	}
	m.Officers = append(m.Officers, u)
	m.UpdatedAt = now
	return true
}

// RemoveOfficer unassigns u; returns false when u was not assigned.
func (m *Ministry) RemoveOfficer(u id.UserID, now time.Time) bool {
	i := slices.Index(m.Officers, u)
	if i < 0 {
		return false
	}
	m.Officers = slices.Delete(m.Officers, i, i+1)
	m.UpdatedAt = now
	return true
}

func (m *Ministry) Clone() *Ministry {
	if m == nil {
		return nil
	}
	c := *m
	c.Categories = slices.Clone(m.Categories)
	c.Officers = slices.Clone(m.Officers)
	if m.Stats.ComputedAt != nil {
		t := *m.Stats.ComputedAt
		c.Stats.ComputedAt = &t
	}
	return &c
}

type CreateMinistryRequest struct {
	Name         Name     `json:"name"`
	Categories   []string `json:"categories"`
	ContactEmail string   `json:"contact_email,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
}

type AssignOfficerRequest struct {
	UserID string `json:"user_id"`
}

// Dashboard is the ministry-scoped overview shown to its officers.
type Dashboard struct {
	Ministry     *Ministry      `json:"ministry"`
	StatusCounts map[string]int `json:"status_counts"`
}
