package models

import (
	"fmt"

	id "civiclink/pkg/domain"
)

// Constructors for the events the platform emits. Wording lives here so every
// producer of the same event says the same thing.

func IssueVerified(reporter id.UserID, issue id.IssueID, title string) Event {
	return Event{
		Type:    TypeIssueVerified,
		UserID:  reporter,
		Title:   "Issue verified",
		Message: fmt.Sprintf("Your issue %q has been verified by the community.", title),
		IssueID: &issue,
	}
}

func GovernmentResponded(reporter id.UserID, issue id.IssueID, ministryName string) Event {
	return Event{
		Type:    TypeGovernmentResponse,
		UserID:  reporter,
		Title:   "Government response",
		Message: fmt.Sprintf("%s has responded to your issue.", ministryName),
		IssueID: &issue,
	}
}

func NGOClaimed(reporter id.UserID, issue id.IssueID, ngoName string) Event {
	return Event{
		Type:    TypeNGOClaimed,
		UserID:  reporter,
		Title:   "NGO claimed your issue",
		Message: fmt.Sprintf("%s has claimed your issue and will work on resolving it.", ngoName),
		IssueID: &issue,
	}
}

// IssueSolved is addressed by fan-out; UserID is filled per recipient.
func IssueSolved(issue id.IssueID, title string) Event {
	return Event{
		Type:    TypeIssueSolved,
		Title:   "Issue solved",
		Message: fmt.Sprintf("Issue %q has been marked as solved by its reporter.", title),
		IssueID: &issue,
	}
}

// IssueTagged is addressed by fan-out to ministry officers.
func IssueTagged(issue id.IssueID, title, category string) Event {
	return Event{
		Type:    TypeIssueTagged,
		Title:   "New issue assigned",
		Message: fmt.Sprintf("A new %s issue %q was tagged to your ministry.", category, title),
		IssueID: &issue,
	}
}

func StatusUpdated(reporter id.UserID, issue id.IssueID, status string) Event {
	return Event{
		Type:    TypeStatusUpdated,
		UserID:  reporter,
		Title:   "Issue status updated",
		Message: fmt.Sprintf("Your issue status changed to %s.", status),
		IssueID: &issue,
	}
}

// NGOApproved is addressed by fan-out to the NGO's admins.
func NGOApproved(ngoName string) Event {
	return Event{
		Type:    TypeNGOApproved,
		Title:   "NGO approved",
		Message: fmt.Sprintf("%s has been verified and can now claim issues.", ngoName),
	}
}
