package models

import (
	"strings"

	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	pstrings "civiclink/pkg/platform/strings"
)

type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    Location `json:"location"`
	Images      []string `json:"images,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}

func (r *CreateIssueRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Priority = strings.ToLower(strings.TrimSpace(r.Priority))
	r.Images = pstrings.DedupeAndTrim(r.Images)
}

func (r *CreateIssueRequest) Validate() error {
	if r.Title == "" || r.Description == "" || r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "title, description and category are required")
	}
	if _, err := ParseCategory(r.Category); err != nil {
		return err
	}
	if _, err := ParsePriority(r.Priority); err != nil {
		return err
	}
	return nil
}

// UpdateIssueRequest carries owner-editable fields; nil means unchanged.
type UpdateIssueRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
}

func (r *UpdateIssueRequest) Validate() error {
	if r.Title == nil && r.Description == nil && r.Images == nil {
		return dErrors.New(dErrors.CodeValidation, "nothing to update")
	}
	return nil
}

type RespondRequest struct {
	Message     string `json:"message"`
	ActionTaken string `json:"action_taken,omitempty"`
}

func (r *RespondRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return dErrors.New(dErrors.CodeValidation, "response message is required")
	}
	return nil
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ClaimRequest struct {
	ActionPlan string `json:"action_plan"`
}

func (r *ClaimRequest) Validate() error {
	if strings.TrimSpace(r.ActionPlan) == "" {
		return dErrors.New(dErrors.CodeValidation, "action plan is required")
	}
	return nil
}

type UpdateClaimRequest struct {
	ActionPlan *string `json:"action_plan,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// ClaimStatus parses the optional status field.
func (r *UpdateClaimRequest) ClaimStatus() (*ClaimStatus, error) {
	if r.Status == nil {
		return nil, nil
	}
	cs := ClaimStatus(strings.ToLower(strings.TrimSpace(*r.Status)))
	if !cs.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid claim status: "+*r.Status)
	}
	return &cs, nil
}

func (r *UpdateClaimRequest) Validate() error {
	if r.ActionPlan == nil && r.Status == nil {
		return dErrors.New(dErrors.CodeValidation, "nothing to update")
	}
	_, err := r.ClaimStatus()
	return err
}

type CrisisRequest struct {
	AffectedDistricts []string `json:"affected_districts"`
	CrisisType        string   `json:"crisis_type,omitempty"`
}

// Districts validates and canonicalizes the district list.
func (r *CrisisRequest) Districts() ([]string, error) {
	names := pstrings.DedupeAndTrim(r.AffectedDistricts)
	if len(names) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "affected_districts is required")
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		d, ok := CanonicalDistrict(n)
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown district: "+n)
		}
		out = append(out, d)
	}
	return pstrings.DedupeAndTrim(out), nil
}

type Sort string

const (
	SortNewest       Sort = "newest"
	SortMostVerified Sort = "verifications"
)

// Filter selects issues for listing. Zero values mean "no constraint".
type Filter struct {
	Category   Category
	Categories []Category
	Statuses   []Status
	District   string
	IsCrisis   *bool
	MinistryID *id.MinistryID
	NGOID      *id.NGOID
	ReporterID *id.UserID
	Unclaimed  bool
	Query      string
	Sort       Sort
	Offset     int
	Limit      int
}

// ListResult is one page of issues plus the unpaged total.
type ListResult struct {
	Issues []*Issue `json:"issues"`
	Total  int      `json:"total"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
}

// VerificationResult reports the outcome of a verification toggle.
type VerificationResult struct {
	Issue    *Issue `json:"issue"`
	Action   string `json:"action"`
	Promoted bool   `json:"promoted"`
}

// CrisisResult reports a bulk crisis activation.
type CrisisResult struct {
	AffectedDistricts []string `json:"affected_districts"`
	CrisisType        string   `json:"crisis_type,omitempty"`
	IssuesAffected    int      `json:"issues_affected"`
}
