package models

import (
	"slices"
	"strings"
	"time"

	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

const (
	minTitleLength       = 5
	maxTitleLength       = 200
	minDescriptionLength = 10
	maxImages            = 10
)

// Issue is the aggregate root for a citizen report.
//
// Invariants:
//   - VerificationCount == len(VerifiedBy); each user appears at most once
//   - Status only moves along the lifecycle in Status; solved and rejected are final
//   - NGOClaim, once set, keeps its NGOID; only ActionPlan and Status change
//   - GovernmentResponse implies Status was forced to in_progress when attached
//
// Guards (Can*) return CodeConflict when the current state forbids the
// transition and CodeInvariantViolation when the input itself is malformed.
// Use them with the matching Apply* inside a store Execute callback.
type Issue struct {
	ID                 id.IssueID          `json:"id"`
	ReporterID         id.UserID           `json:"reporter_id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Category           Category            `json:"category"`
	Location           Location            `json:"location"`
	Images             []string            `json:"images"`
	TaggedMinistries   []id.MinistryID     `json:"tagged_ministries"`
	VerifiedBy         []id.UserID         `json:"verified_by"`
	VerificationCount  int                 `json:"verification_count"`
	Status             Status              `json:"status"`
	Priority           Priority            `json:"priority"`
	IsCrisis           bool                `json:"is_crisis"`
	GovernmentResponse *GovernmentResponse `json:"government_response"`
	NGOClaim           *NGOClaim           `json:"ngo_claim"`
	SolutionVerified   bool                `json:"solution_verified"`
	SolutionVerifiedAt *time.Time          `json:"solution_verified_at,omitempty"`
	ReportedFrom       string              `json:"reported_from,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type GovernmentResponse struct {
	MinistryID  id.MinistryID `json:"ministry_id"`
	ResponderID id.UserID     `json:"responder_id"`
	Message     string        `json:"message"`
	ActionTaken string        `json:"action_taken,omitempty"`
	RespondedAt time.Time     `json:"responded_at"`
}

type NGOClaim struct {
	NGOID      id.NGOID    `json:"ngo_id"`
	ClaimedBy  id.UserID   `json:"claimed_by"`
	ActionPlan string      `json:"action_plan"`
	Status     ClaimStatus `json:"status"`
	ClaimedAt  time.Time   `json:"claimed_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewIssue builds a pending issue with no verifications.
func NewIssue(
	issueID id.IssueID,
	reporter id.UserID,
	title, description string,
	category Category,
	location Location,
	images []string,
	priority Priority,
	now time.Time,
) (*Issue, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := validateContent(title, description, images); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid category")
	}
	if !priority.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid priority")
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}
	location.District, _ = CanonicalDistrict(location.District)
	location.Address = strings.TrimSpace(location.Address)

	return &Issue{
		ID:               issueID,
		ReporterID:       reporter,
		Title:            title,
		Description:      description,
		Category:         category,
		Location:         location,
		Images:           nonNil(images),
		TaggedMinistries: []id.MinistryID{},
		VerifiedBy:       []id.UserID{},
		Status:           StatusPending,
		Priority:         priority,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func validateContent(title, description string, images []string) error {
	if n := len([]rune(title)); n < minTitleLength || n > maxTitleLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "title must be between 5 and 200 characters")
	}
	if len([]rune(description)) < minDescriptionLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "description must be at least 10 characters")
	}
	if len(images) > maxImages {
		return dErrors.New(dErrors.CodeInvariantViolation, "at most 10 images per issue")
	}
	return nil
}

func nonNil(images []string) []string {
	if images == nil {
		return []string{}
	}
	return slices.Clone(images)
}

func (i *Issue) IsOwnedBy(u id.UserID) bool {
	return i.ReporterID == u
}

func (i *Issue) IsTaggedTo(m id.MinistryID) bool {
	return slices.Contains(i.TaggedMinistries, m)
}

func (i *Issue) HasVerified(u id.UserID) bool {
	return slices.Contains(i.VerifiedBy, u)
}

// IsClaimed reports whether an NGO holds the claim.
func (i *Issue) IsClaimed() bool {
	return i.NGOClaim != nil
}

// ClaimedBy reports whether ngo holds the claim.
func (i *Issue) ClaimedBy(ngo id.NGOID) bool {
	return i.NGOClaim != nil && i.NGOClaim.NGOID == ngo
}

// ResponseTime returns the delay between report and government response.
func (i *Issue) ResponseTime() (time.Duration, bool) {
	if i.GovernmentResponse == nil {
		return 0, false
	}
	return i.GovernmentResponse.RespondedAt.Sub(i.CreatedAt), true
}

// Tag replaces the tagged ministry set.
func (i *Issue) Tag(ministries []id.MinistryID) {
	i.TaggedMinistries = slices.Clone(ministries)
	if i.TaggedMinistries == nil {
		i.TaggedMinistries = []id.MinistryID{}
	}
}

// ToggleVerification adds u to the verifier set or removes u if already
// present. After an add that brings the count to threshold while the issue
// is still pending, the issue is promoted to verified. Removal never demotes.
func (i *Issue) ToggleVerification(u id.UserID, threshold int, now time.Time) (added, promoted bool) {
	if idx := slices.Index(i.VerifiedBy, u); idx >= 0 {
		i.VerifiedBy = slices.Delete(i.VerifiedBy, idx, idx+1)
	} else {
		i.VerifiedBy = append(i.VerifiedBy, u)
		added = true
	}
	i.VerificationCount = len(i.VerifiedBy)
	i.UpdatedAt = now

	if added && i.Status == StatusPending && i.VerificationCount >= threshold {
		i.Status = StatusVerified
		promoted = true
	}
	return added, promoted
}

// CanEdit checks the owner may still change title, description and images.
func (i *Issue) CanEdit() error {
	if i.Status == StatusSolved {
		return dErrors.New(dErrors.CodeConflict, "solved issues cannot be edited")
	}
	return nil
}

// ApplyEdit replaces the non-empty fields. Validation runs on the merged result.
func (i *Issue) ApplyEdit(title, description *string, images []string, now time.Time) error {
	newTitle, newDesc, newImages := i.Title, i.Description, i.Images
	if title != nil {
		newTitle = strings.TrimSpace(*title)
	}
	if description != nil {
		newDesc = strings.TrimSpace(*description)
	}
	if images != nil {
		newImages = images
	}
	if err := validateContent(newTitle, newDesc, newImages); err != nil {
		return err
	}
	i.Title, i.Description, i.Images = newTitle, newDesc, nonNil(newImages)
	i.UpdatedAt = now
	return nil
}

// CanRespond checks a government response may be attached.
func (i *Issue) CanRespond() error {
	if i.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeConflict, "cannot respond to a "+string(i.Status)+" issue")
	}
	return nil
}

// ApplyResponse overwrites any prior response and forces in_progress.
func (i *Issue) ApplyResponse(resp GovernmentResponse, now time.Time) {
	i.GovernmentResponse = &resp
	i.Status = StatusInProgress
	i.UpdatedAt = now
}

// CanSetStatus checks an explicit status change. Moving to solved is an
// ownership question answered by the caller, not by this guard.
func (i *Issue) CanSetStatus(target Status) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid status")
	}
	if i.Status.IsTerminal() && target != i.Status {
		return dErrors.New(dErrors.CodeConflict, "issue is already "+string(i.Status))
	}
	return nil
}

func (i *Issue) ApplyStatus(target Status, now time.Time) {
	i.Status = target
	i.UpdatedAt = now
}

// CanClaim checks the issue is open and unclaimed.
func (i *Issue) CanClaim() error {
	if i.NGOClaim != nil {
		return dErrors.New(dErrors.CodeConflict, "issue is already claimed")
	}
	if !i.Status.IsOpen() {
		return dErrors.New(dErrors.CodeConflict, "only pending, verified or in-progress issues can be claimed")
	}
	return nil
}

// ApplyClaim records the claim and forces in_progress.
func (i *Issue) ApplyClaim(ngo id.NGOID, claimedBy id.UserID, actionPlan string, now time.Time) {
	i.NGOClaim = &NGOClaim{
		NGOID:      ngo,
		ClaimedBy:  claimedBy,
		ActionPlan: strings.TrimSpace(actionPlan),
		Status:     ClaimStatusClaimed,
		ClaimedAt:  now,
		UpdatedAt:  now,
	}
	i.Status = StatusInProgress
	i.UpdatedAt = now
}

// CanUpdateClaim checks ngo holds the claim and the issue is not closed.
func (i *Issue) CanUpdateClaim(ngo id.NGOID) error {
	if i.NGOClaim == nil {
		return dErrors.New(dErrors.CodeConflict, "issue is not claimed")
	}
	if i.NGOClaim.NGOID != ngo {
		return dErrors.New(dErrors.CodeForbidden, "issue is claimed by another NGO")
	}
	if i.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeConflict, "issue is already "+string(i.Status))
	}
	return nil
}

// ApplyClaimUpdate changes only the mutable claim sub-fields.
func (i *Issue) ApplyClaimUpdate(actionPlan *string, status *ClaimStatus, now time.Time) {
	if actionPlan != nil {
		i.NGOClaim.ActionPlan = strings.TrimSpace(*actionPlan)
	}
	if status != nil {
		i.NGOClaim.Status = *status
	}
	i.NGOClaim.UpdatedAt = now
	i.UpdatedAt = now
}

// CanClose checks the issue can be marked solved.
func (i *Issue) CanClose() error {
	if i.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeConflict, "issue is already "+string(i.Status))
	}
	return nil
}

// ApplyClose marks the issue solved and the solution verified by its reporter.
func (i *Issue) ApplyClose(now time.Time) {
	i.Status = StatusSolved
	i.SolutionVerified = true
	verifiedAt := now
	i.SolutionVerifiedAt = &verifiedAt
	i.UpdatedAt = now
}

// Clone returns a deep copy, so stores never share slices with callers.
func (i *Issue) Clone() *Issue {
	if i == nil {
		return nil
	}
	c := *i
	c.Images = slices.Clone(i.Images)
	c.TaggedMinistries = slices.Clone(i.TaggedMinistries)
	c.VerifiedBy = slices.Clone(i.VerifiedBy)
	if i.GovernmentResponse != nil {
		r := *i.GovernmentResponse
		c.GovernmentResponse = &r
	}
	if i.NGOClaim != nil {
		cl := *i.NGOClaim
		c.NGOClaim = &cl
	}
	if i.SolutionVerifiedAt != nil {
		t := *i.SolutionVerifiedAt
		c.SolutionVerifiedAt = &t
	}
	return &c
}
