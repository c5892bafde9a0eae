package models

import (
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"time"

	issuemodels "civiclink/internal/issues/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	pstrings "civiclink/pkg/platform/strings"
)

// Stats summarise the NGO's claim history. Derived, never authoritative.
type Stats struct {
	TotalClaimed int        `json:"total_claimed"`
	Completed    int        `json:"completed"`
	SuccessRate  float64    `json:"success_rate"`
	ComputedAt   *time.Time `json:"computed_at,omitempty"`
}

// NGO is a non-governmental organisation that may claim issues once verified
// by an administrator.
type NGO struct {
	ID                 id.NGOID    `json:"id"`
	Name               string      `json:"name"`
	RegistrationNumber string      `json:"registration_number"`
	Description        string      `json:"description,omitempty"`
	ContactEmail       string      `json:"contact_email"`
	ContactPhone       string      `json:"contact_phone,omitempty"`
	Website            string      `json:"website,omitempty"`
	AreasOfWork        []string    `json:"areas_of_work"`
	Admins             []id.UserID `json:"admins"`
	Verified           bool        `json:"verified"`
	ApprovedBy         *id.UserID  `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time  `json:"approved_at,omitempty"`
	Stats              Stats       `json:"stats"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Profile holds the fields an NGO admin may edit.
type Profile struct {
	Description  string
	ContactEmail string
	ContactPhone string
	Website      string
	AreasOfWork  []string
}

// NewNGO creates an unverified NGO administered by admin.
func NewNGO(ngoID id.NGOID, name, registrationNumber string, admin id.UserID, profile Profile, now time.Time) (*NGO, error) {
	name = strings.TrimSpace(name)
	registrationNumber = strings.TrimSpace(registrationNumber)
	if name == "" || registrationNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name and registration number are required")
	}
	if admin.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ngo requires an admin")
	}
	n := &NGO{
		ID:                 ngoID,
		Name:               name,
		RegistrationNumber: registrationNumber,
		Admins:             []id.UserID{admin},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := n.applyProfile(profile); err != nil {
		return nil, err
	}
	if n.ContactEmail == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contact email is required")
	}
	return n, nil
}

// UpdateProfile replaces the editable profile fields. Empty strings leave the
// current value; a nil AreasOfWork leaves the current areas.
func (n *NGO) UpdateProfile(p Profile, now time.Time) error {
	merged := Profile{
		Description:  firstNonEmpty(p.Description, n.Description),
		ContactEmail: firstNonEmpty(p.ContactEmail, n.ContactEmail),
		ContactPhone: firstNonEmpty(p.ContactPhone, n.ContactPhone),
		Website:      firstNonEmpty(p.Website, n.Website),
		AreasOfWork:  n.AreasOfWork,
	}
	if p.AreasOfWork != nil {
		merged.AreasOfWork = p.AreasOfWork
	}
	if err := n.applyProfile(merged); err != nil {
		return err
	}
	n.UpdatedAt = now
	return nil
}

func (n *NGO) applyProfile(p Profile) error {
	email := strings.TrimSpace(p.ContactEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "invalid contact email")
		}
	}
	website := strings.TrimSpace(p.Website)
	if website != "" {
		u, err := url.Parse(website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "website must be an http(s) url")
		}
	}
	areas := pstrings.DedupeAndTrimLower(p.AreasOfWork)
	if areas == nil {
		areas = []string{}
	}
	for _, a := range areas {
		if !issuemodels.Category(a).IsValid() {
			return dErrors.New(dErrors.CodeInvariantViolation, "unknown area of work: "+a)
		}
	}
	n.Description = strings.TrimSpace(p.Description)
	n.ContactEmail = email
	n.ContactPhone = strings.TrimSpace(p.ContactPhone)
	n.Website = website
	n.AreasOfWork = areas
	return nil
}

func firstNonEmpty(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func (n *NGO) IsAdmin(u id.UserID) bool {
	return slices.Contains(n.Admins, u)
}

// CanApprove rejects a second approval.
func (n *NGO) CanApprove() error {
	if n.Verified {
		return dErrors.New(dErrors.CodeConflict, "ngo is already verified")
	}
	return nil
}

func (n *NGO) ApplyApproval(admin id.UserID, now time.Time) {
	n.Verified = true
	n.ApprovedBy = &admin
	n.ApprovedAt = &now
	n.UpdatedAt = now
}

// AreaCategories returns AreasOfWork as issue categories.
func (n *NGO) AreaCategories() []issuemodels.Category {
	out := make([]issuemodels.Category, 0, len(n.AreasOfWork))
	for _, a := range n.AreasOfWork {
		out = append(out, issuemodels.Category(a))
	}
	return out
}

func (n *NGO) Clone() *NGO {
	if n == nil {
		return nil
	}
	c := *n
	c.AreasOfWork = slices.Clone(n.AreasOfWork)
	c.Admins = slices.Clone(n.Admins)
	if n.ApprovedBy != nil {
		v := *n.ApprovedBy
		c.ApprovedBy = &v
	}
	if n.ApprovedAt != nil {
		v := *n.ApprovedAt
		c.ApprovedAt = &v
	}
	if n.Stats.ComputedAt != nil {
		v := *n.Stats.ComputedAt
		c.Stats.ComputedAt = &v
	}
	return &c
}

type RegisterRequest struct {
	Name               string   `json:"name"`
	RegistrationNumber string   `json:"registration_number"`
	Description        string   `json:"description,omitempty"`
	ContactEmail       string   `json:"contact_email"`
	ContactPhone       string   `json:"contact_phone,omitempty"`
	Website            string   `json:"website,omitempty"`
	AreasOfWork        []string `json:"areas_of_work,omitempty"`
}

func (r *RegisterRequest) Profile() Profile {
	return Profile{
		Description:  r.Description,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Website:      r.Website,
		AreasOfWork:  r.AreasOfWork,
	}
}

type UpdateProfileRequest struct {
	Description  string   `json:"description,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	AreasOfWork  []string `json:"areas_of_work,omitempty"`
}

func (r *UpdateProfileRequest) Profile() Profile {
	return Profile{
		Description:  r.Description,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Website:      r.Website,
		AreasOfWork:  r.AreasOfWork,
	}
}

// ListFilter selects NGOs. Verified nil means any.
type ListFilter struct {
	Verified *bool
	Offset   int
	Limit    int
}
