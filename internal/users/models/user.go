package models

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"civiclink/internal/access"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

var phonePattern = regexp.MustCompile(`^0\d{9}$`)

type Location struct {
	District string `json:"district,omitempty"`
	City     string `json:"city,omitempty"`
}

// User is a registered account. Users are suspended, never deleted.
type User struct {
	ID             id.UserID      `json:"id"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	PasswordHash   string         `json:"-"`
	FullName       string         `json:"full_name"`
	ProfilePicture string         `json:"profile_picture,omitempty"`
	Location       *Location      `json:"location,omitempty"`
	Role           access.Role    `json:"role"`
	Status         access.Status  `json:"status"`
	MinistryID     *id.MinistryID `json:"ministry_id,omitempty"`
	NGOID          *id.NGOID      `json:"ngo_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
}

// NewUser builds an active citizen account. The password must already be hashed.
func NewUser(userID id.UserID, email, phone, passwordHash, fullName string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "full name is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	return &User{
		ID:           userID,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         access.RoleCitizen,
		Status:       access.StatusActive,
		CreatedAt:    now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid email address")
	}
	return nil
}

// ValidatePhone accepts an empty value or a ten digit local number starting with 0.
func ValidatePhone(phone string) error {
	if phone != "" && !phonePattern.MatchString(phone) {
		return dErrors.New(dErrors.CodeInvariantViolation, "phone must match 0XXXXXXXXX")
	}
	return nil
}

// ValidatePassword requires at least 8 characters with upper, lower and digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return dErrors.New(dErrors.CodeValidation, "password must contain upper case, lower case and a digit")
	}
	return nil
}

// Identity projects the user onto what the access layer needs.
func (u *User) Identity() *access.Identity {
	return &access.Identity{
		UserID:     u.ID,
		Role:       u.Role,
		Status:     u.Status,
		MinistryID: u.MinistryID,
		NGOID:      u.NGOID,
	}
}

func (u *User) AssignMinistry(m id.MinistryID) {
	u.Role = access.RoleGovernment
	u.MinistryID = &m
}

func (u *User) AssignNGO(n id.NGOID) {
	u.Role = access.RoleNGO
	u.NGOID = &n
}

// ClearNGO drops the NGO affiliation and returns the user to citizen.
func (u *User) ClearNGO() {
	u.NGOID = nil
	if u.Role == access.RoleNGO {
		u.Role = access.RoleCitizen
	}
}

func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Location != nil {
		l := *u.Location
		c.Location = &l
	}
	if u.MinistryID != nil {
		m := *u.MinistryID
		c.MinistryID = &m
	}
	if u.NGOID != nil {
		n := *u.NGOID
		c.NGOID = &n
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

// UpdateProfileRequest fields are optional; nil leaves the value unchanged.
type UpdateProfileRequest struct {
	FullName       *string   `json:"full_name,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	Location       *Location `json:"location,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type ListFilter struct {
	Role   access.Role
	Status access.Status
	Offset int
	Limit  int
}
