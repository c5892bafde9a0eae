package models

import (
	"slices"
	"strings"

	dErrors "civiclink/pkg/domain-errors"
)

// Category is the fixed issue taxonomy.
type Category string

const (
	CategoryWater       Category = "water"
	CategoryElectricity Category = "electricity"
	CategoryRoad        Category = "road"
	CategoryFlood       Category = "flood"
	CategoryWaste       Category = "waste"
	CategoryOther       Category = "other"
)

var categories = []Category{CategoryWater, CategoryElectricity, CategoryRoad, CategoryFlood, CategoryWaste, CategoryOther}

// Categories returns every category in display order.
func Categories() []Category {
	return slices.Clone(categories)
}

func (c Category) IsValid() bool {
	return slices.Contains(categories, c)
}

// ParseCategory normalizes and validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid category: "+s)
	}
	return c, nil
}

// Status is the issue lifecycle state.
//
//	pending → verified → in_progress → solved
//	   └──────────┴───────────┴──────→ rejected
type Status string

const (
	StatusPending    Status = "pending"
	StatusVerified   Status = "verified"
	StatusInProgress Status = "in_progress"
	StatusSolved     Status = "solved"
	StatusRejected   Status = "rejected"
)

var statuses = []Status{StatusPending, StatusVerified, StatusInProgress, StatusSolved, StatusRejected}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	return slices.Clone(statuses)
}

func (s Status) IsValid() bool {
	return slices.Contains(statuses, s)
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusSolved || s == StatusRejected
}

// IsOpen reports whether the issue still awaits resolution.
// Open issues are the ones NGOs may claim and crisis mode escalates.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusVerified || s == StatusInProgress
}

// OpenStatuses lists the statuses for which IsOpen is true.
func OpenStatuses() []Status {
	return []Status{StatusPending, StatusVerified, StatusInProgress}
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status: "+s)
	}
	return st, nil
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ParsePriority defaults an empty value to medium.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid priority: "+s)
	}
	return p, nil
}

// ClaimStatus tracks an NGO's progress on a claimed issue.
type ClaimStatus string

const (
	ClaimStatusClaimed    ClaimStatus = "claimed"
	ClaimStatusInProgress ClaimStatus = "in_progress"
	ClaimStatusCompleted  ClaimStatus = "completed"
)

func (c ClaimStatus) IsValid() bool {
	return c == ClaimStatusClaimed || c == ClaimStatusInProgress || c == ClaimStatusCompleted
}

// CategoryLabel is the display name of a category in the three official languages.
type CategoryLabel struct {
	ID     Category `json:"id"`
	NameEN string   `json:"name_en"`
	NameSI string   `json:"name_si"`
	NameTA string   `json:"name_ta"`
}

var categoryLabels = []CategoryLabel{
	{CategoryWater, "Water Supply", "ජල සම්පාදනය", "நீர் வழங்கல்"},
	{CategoryElectricity, "Electricity", "විදුලිය", "மின்சாரம்"},
	{CategoryRoad, "Road Issues", "මාර්ග ගැටලු", "சாலை பிரச்சனைகள்"},
	{CategoryFlood, "Flood/Disaster", "ගංවතුර/ආපදා", "வெள்ளம்/பேரழிவு"},
	{CategoryWaste, "Waste Management", "අපද්‍රව්‍ය කළමනාකරණය", "கழிவு மேலாண்மை"},
	{CategoryOther, "Other", "වෙනත්", "மற்றவை"},
}

func CategoryLabels() []CategoryLabel {
	return slices.Clone(categoryLabels)
}
