package models

import (
	"strings"
	"time"

	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

type Type string

const (
	TypeIssueVerified      Type = "issue_verified"
	TypeGovernmentResponse Type = "government_response"
	TypeNGOClaimed         Type = "ngo_claimed"
	TypeIssueSolved        Type = "issue_solved"
	TypeIssueTagged        Type = "issue_tagged"
	TypeStatusUpdated      Type = "status_updated"
	TypeNGOApproved        Type = "ngo_approved"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeIssueVerified, TypeGovernmentResponse, TypeNGOClaimed, TypeIssueSolved,
		TypeIssueTagged, TypeStatusUpdated, TypeNGOApproved:
		return true
	}
	return false
}

// Event is a domain event addressed to one user. Fan-out helpers on the
// dispatcher fill UserID per recipient.
type Event struct {
	Type    Type
	UserID  id.UserID
	Title   string
	Message string
	IssueID *id.IssueID
}

// Notification is the persisted per-user record of an Event.
type Notification struct {
	ID        id.NotificationID `json:"id"`
	UserID    id.UserID         `json:"user_id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IssueID   *id.IssueID       `json:"issue_id,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewNotification(notificationID id.NotificationID, ev Event, now time.Time) (*Notification, error) {
	if ev.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification recipient is required")
	}
	if !ev.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid notification type")
	}
	if strings.TrimSpace(ev.Title) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification title is required")
	}
	return &Notification{
		ID:        notificationID,
		UserID:    ev.UserID,
		Type:      ev.Type,
		Title:     ev.Title,
		Message:   ev.Message,
		IssueID:   ev.IssueID,
		CreatedAt: now,
	}, nil
}

// ListFilter selects a page of one user's notifications, newest first.
type ListFilter struct {
	UserID     id.UserID
	UnreadOnly bool
	Offset     int
	Limit      int
}

func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	c := *n
	if n.IssueID != nil {
		v := *n.IssueID
		c.IssueID = &v
	}
	return &c
}

// ListResult is one page of a user's notifications.
type ListResult struct {
	Notifications []*Notification `json:"notifications"`
	Total         int             `json:"total"`
	Unread        int             `json:"unread_count"`
	Page          int             `json:"page"`
	Limit         int             `json:"limit"`
}
