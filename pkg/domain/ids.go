// Package domain holds typed identifiers shared across modules.
//
// Each entity gets its own ID type over uuid.UUID so the compiler rejects
// passing an IssueID where a MinistryID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "civiclink/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	IssueID        uuid.UUID
	MinistryID     uuid.UUID
	NGOID          uuid.UUID
	NotificationID uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id IssueID) String() string        { return uuid.UUID(id).String() }
func (id MinistryID) String() string     { return uuid.UUID(id).String() }
func (id NGOID) String() string          { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id IssueID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id MinistryID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id NGOID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id IssueID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id MinistryID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id NGOID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id NotificationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *IssueID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MinistryID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NGOID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NotificationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// parseUUID enforces the trust-boundary invariant: non-empty, well-formed, non-nil.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

func ParseIssueID(s string) (IssueID, error) {
	u, err := parseUUID(s, "issue ID")
	return IssueID(u), err
}

func ParseMinistryID(s string) (MinistryID, error) {
	u, err := parseUUID(s, "ministry ID")
	return MinistryID(u), err
}

func ParseNGOID(s string) (NGOID, error) {
	u, err := parseUUID(s, "NGO ID")
	return NGOID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification ID")
	return NotificationID(u), err
}
