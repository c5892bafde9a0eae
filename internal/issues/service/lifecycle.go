package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"civiclink/internal/access"
	"civiclink/internal/issues/models"
	notifmodels "civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

// Create reports a new issue on behalf of a citizen and tags the responsible
// ministries.
func (s *Service) Create(ctx context.Context, caller *access.Identity, req *models.CreateIssueRequest) (_ *models.Issue, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Create", id.IssueID{})
	defer func() { endSpan(span, err) }()
	defer s.observe("create", start)

	if err := access.Authorize(caller, access.OpCreateIssue); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	category, _ := models.ParseCategory(req.Category)
	priority, _ := models.ParsePriority(req.Priority)

	issue, err := models.NewIssue(
		id.IssueID(uuid.New()),
		caller.UserID,
		req.Title,
		req.Description,
		category,
		req.Location,
		req.Images,
		priority,
		s.now(ctx),
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to build issue")
	}
	issue.ReportedFrom = requestcontext.ClientPlatform(ctx)

	var tags []id.MinistryID
	if s.keywordTagging {
		tags, err = s.tagger.Suggest(ctx, string(category), issue.Title, issue.Description)
	} else {
		tags, err = s.tagger.TagByCategory(ctx, string(category))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to tag ministries")
	}
	issue.Tag(tags)

	if err := s.store.Create(ctx, issue); err != nil {
		return nil, mapStoreError(err, "failed to save issue")
	}
	span.SetAttributes(
		attribute.String("issue.id", issue.ID.String()),
		attribute.Int("issue.tagged_ministries", len(issue.TaggedMinistries)),
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.logger.InfoContext(ctx, "issue created",
		"request_id", requestcontext.RequestID(ctx),
		"issue_id", issue.ID,
		"category", issue.Category,
		"district", issue.Location.District,
		"tagged_ministries", len(issue.TaggedMinistries),
	)

	s.notifyMinistries(ctx, issue.TaggedMinistries, notifmodels.IssueTagged(issue.ID, issue.Title, string(issue.Category)))
	s.afterCommit(ctx, issue.TaggedMinistries, nil)
	return issue, nil
}

// Update lets the reporter change title, description and images.
func (s *Service) Update(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.UpdateIssueRequest) (*models.Issue, error) {
	if err := access.Authorize(caller, access.OpUpdateIssue); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now(ctx)
	updated, err := s.store.Execute(ctx, issueID,
		func(i *models.Issue) error {
			if !i.IsOwnedBy(caller.UserID) {
				return dErrors.New(dErrors.CodeForbidden, "only the reporter can edit this issue")
			}
			if err := i.CanEdit(); err != nil {
				return err
			}
			return i.Clone().ApplyEdit(req.Title, req.Description, req.Images, now)
		},
		func(i *models.Issue) {
			_ = i.ApplyEdit(req.Title, req.Description, req.Images, now)
		},
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to update issue")
	}
	return updated, nil
}

// Delete removes an issue. The reporter or an admin may delete.
func (s *Service) Delete(ctx context.Context, caller *access.Identity, issueID id.IssueID) error {
	if err := access.Authorize(caller, access.OpDeleteIssue); err != nil {
		return err
	}
	issue, err := s.store.FindByID(ctx, issueID)
	if err != nil {
		return mapStoreError(err, "failed to load issue")
	}
	if !issue.IsOwnedBy(caller.UserID) && !caller.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "only the reporter or an admin can delete this issue")
	}
	if err := s.store.Delete(ctx, issueID); err != nil {
		return mapStoreError(err, "failed to delete issue")
	}
	s.logger.InfoContext(ctx, "issue deleted",
		"request_id", requestcontext.RequestID(ctx),
		"issue_id", issueID,
		"deleted_by", caller.UserID,
	)
	s.afterCommit(ctx, issue.TaggedMinistries, claimNGO(issue))
	return nil
}

// ToggleVerification adds or removes the caller's verification. The issue is
// promoted to verified when the count first reaches the threshold while
// pending; the reporter is told once.
func (s *Service) ToggleVerification(ctx context.Context, caller *access.Identity, issueID id.IssueID) (_ *models.VerificationResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "ToggleVerification", issueID)
	defer func() { endSpan(span, err) }()
	defer s.observe("verify", start)

	if err := access.Authorize(caller, access.OpVerifyIssue); err != nil {
		return nil, err
	}
	now := s.now(ctx)
	var added, promoted bool
	updated, err := s.store.Execute(ctx, issueID,
		func(*models.Issue) error { return nil },
		func(i *models.Issue) {
			added, promoted = i.ToggleVerification(caller.UserID, s.minVerifications, now)
		},
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to verify issue")
	}
	if s.metrics != nil {
		s.metrics.ObserveVerification(added, promoted)
	}
	action := "removed"
	if added {
		action = "added"
	}
	span.SetAttributes(attribute.String("verification.action", action), attribute.Bool("verification.promoted", promoted))

	if promoted {
		s.logger.InfoContext(ctx, "issue verified by community",
			"request_id", requestcontext.RequestID(ctx),
			"issue_id", issueID,
			"verification_count", updated.VerificationCount,
		)
		s.notify(ctx, notifmodels.IssueVerified(updated.ReporterID, updated.ID, updated.Title))
		s.afterCommit(ctx, updated.TaggedMinistries, nil)
	}
	return &models.VerificationResult{Issue: updated, Action: action, Promoted: promoted}, nil
}

// Respond attaches the caller's ministry response and moves the issue to
// in_progress. The caller must be an officer of a tagged ministry.
func (s *Service) Respond(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.RespondRequest) (_ *models.Issue, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Respond", issueID)
	defer func() { endSpan(span, err) }()
	defer s.observe("respond", start)

	if err := access.Authorize(caller, access.OpRespondIssue); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if caller.MinistryID == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not assigned to a ministry")
	}
	ministryID := *caller.MinistryID
	now := s.now(ctx)
	updated, err := s.store.Execute(ctx, issueID,
		func(i *models.Issue) error {
			if !i.IsTaggedTo(ministryID) {
				return dErrors.New(dErrors.CodeForbidden, "issue is not tagged to your ministry")
			}
			return i.CanRespond()
		},
		func(i *models.Issue) {
			i.ApplyResponse(models.GovernmentResponse{
				MinistryID:  ministryID,
				ResponderID: caller.UserID,
				Message:     req.Message,
				ActionTaken: req.ActionTaken,
				RespondedAt: now,
			}, now)
		},
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to record response")
	}
	s.logger.InfoContext(ctx, "government response recorded",
		"request_id", requestcontext.RequestID(ctx),
		"issue_id", issueID,
		"ministry_id", ministryID,
	)
	s.notify(ctx, notifmodels.GovernmentResponded(updated.ReporterID, updated.ID, s.ministryName(ctx, ministryID)))
	s.afterCommit(ctx, []id.MinistryID{ministryID}, nil)
	return updated, nil
}

// UpdateStatus sets an explicit status. Officers are limited to issues tagged
// to their ministry; only the reporter may mark an issue solved (see Close).
func (s *Service) UpdateStatus(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.UpdateStatusRequest) (_ *models.Issue, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "UpdateStatus", issueID)
	defer func() { endSpan(span, err) }()
	defer s.observe("status", start)

	if err := access.Authorize(caller, access.OpUpdateIssueStatus); err != nil {
		return nil, err
	}
	target, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if target == models.StatusSolved {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the reporter can mark an issue solved")
	}
	now := s.now(ctx)
	var previous models.Status
	updated, err := s.store.Execute(ctx, issueID,
		func(i *models.Issue) error {
			if !caller.IsAdmin() && (caller.MinistryID == nil || !i.IsTaggedTo(*caller.MinistryID)) {
				return dErrors.New(dErrors.CodeForbidden, "issue is not tagged to your ministry")
			}
			return i.CanSetStatus(target)
		},
		func(i *models.Issue) {
			previous = i.Status
			i.ApplyStatus(target, now)
		},
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to update status")
	}
	s.logger.InfoContext(ctx, "issue status updated",
		"request_id", requestcontext.RequestID(ctx),
		"issue_id", issueID,
		"from", previous,
		"to", target,
	)
	if previous != target {
		s.notify(ctx, notifmodels.StatusUpdated(updated.ReporterID, updated.ID, string(target)))
		s.afterCommit(ctx, updated.TaggedMinistries, claimNGO(updated))
	}
	return updated, nil
}

// Claim assigns the issue to the caller's verified NGO. Two concurrent claims
// on the same issue resolve to one success and one conflict.
func (s *Service) Claim(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.ClaimRequest) (_ *models.Issue, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Claim", issueID)
	defer func() { endSpan(span, err) }()
	defer s.observe("claim", start)

	if err := access.Authorize(caller, access.OpClaimIssue); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ngo, err := s.verifiedNGO(ctx, caller)
	if err != nil {
		s.countClaim("rejected")
		return nil, err
	}
	span.SetAttributes(attribute.String("ngo.id", ngo.ID.String()))

	now := s.now(ctx)
	updated, err := s.store.Execute(ctx, issueID,
		func(i *models.Issue) error { return i.CanClaim() },
		func(i *models.Issue) { i.ApplyClaim(ngo.ID, caller.UserID, req.ActionPlan, now) },
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.countClaim("conflict")
		}
		return nil, mapStoreError(err, "failed to claim issue")
	}
	s.countClaim("claimed")
	s.logger.InfoContext(ctx, "issue claimed",
		"request_id", requestcontext.RequestID(ctx),
		"issue_id", issueID,
		"ngo_id", ngo.ID,
	)
	s.notify(ctx, notifmodels.NGOClaimed(updated.ReporterID, updated.ID, ngo.Name))
	s.afterCommit(ctx, nil, &ngo.ID)
	return updated, nil
}

// UpdateClaim changes the action plan or claim status. Only an admin of the
// claiming NGO may do so.
func (s *Service) UpdateClaim(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.UpdateClaimRequest) (*models.Issue, error) {
	if err := access.Authorize(caller, access.OpUpdateClaim); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if caller.NGOID == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not affiliated with an NGO")
	}
	claimStatus, _ := req.ClaimStatus()
	ngoID := *caller.NGOID
	now := s.now(ctx)
	updated, err := s.store.Execute(ctx, issueID,
		func(i *models.Issue) error { return i.CanUpdateClaim(ngoID) },
		func(i *models.Issue) { i.ApplyClaimUpdate(req.ActionPlan, claimStatus, now) },
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to update claim")
	}
	return updated, nil
}

// Close marks the issue solved with the reporter's confirmation and refreshes
// the stats of everyone who worked on it.
func (s *Service) Close(ctx context.Context, caller *access.Identity, issueID id.IssueID) (_ *models.Issue, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "Close", issueID)
	defer func() { endSpan(span, err) }()
	defer s.observe("close", start)

	if err := access.Authorize(caller, access.OpCloseIssue); err != nil {
		return nil, err
	}
	now := s.now(ctx)
	updated, err := s.store.Execute(ctx, issueID,
		func(i *models.Issue) error {
			if !i.IsOwnedBy(caller.UserID) {
				return dErrors.New(dErrors.CodeForbidden, "only the reporter can close this issue")
			}
			return i.CanClose()
		},
		func(i *models.Issue) { i.ApplyClose(now) },
	)
	if err != nil {
		return nil, mapStoreError(err, "failed to close issue")
	}
	s.logger.InfoContext(ctx, "issue closed",
		"request_id", requestcontext.RequestID(ctx),
		"issue_id", issueID,
	)

	ev := notifmodels.IssueSolved(updated.ID, updated.Title)
	ngoID := claimNGO(updated)
	if ngoID != nil {
		s.notifyNGO(ctx, *ngoID, ev)
	}
	s.notifyMinistries(ctx, updated.TaggedMinistries, ev)

	var ministries []id.MinistryID
	if updated.GovernmentResponse != nil {
		ministries = updated.TaggedMinistries
	}
	s.afterCommit(ctx, ministries, ngoID)
	return updated, nil
}

// ActivateCrisis flags every open issue in the given districts as a critical
// crisis in one bulk update.
func (s *Service) ActivateCrisis(ctx context.Context, caller *access.Identity, req *models.CrisisRequest) (_ *models.CrisisResult, err error) {
	ctx, span := s.startSpan(ctx, "ActivateCrisis", id.IssueID{})
	defer func() { endSpan(span, err) }()

	if err := access.Authorize(caller, access.OpActivateCrisis); err != nil {
		return nil, err
	}
	districts, err := req.Districts()
	if err != nil {
		return nil, err
	}
	affected, err := s.store.MarkCrisis(ctx, districts, s.now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate crisis")
	}
	span.SetAttributes(attribute.StringSlice("crisis.districts", districts), attribute.Int("crisis.affected", affected))
	if s.metrics != nil {
		s.metrics.ObserveCrisis(affected)
	}
	s.logger.WarnContext(ctx, "crisis activated",
		"request_id", requestcontext.RequestID(ctx),
		"districts", districts,
		"crisis_type", req.CrisisType,
		"issues_affected", affected,
		"activated_by", caller.UserID,
	)
	return &models.CrisisResult{
		AffectedDistricts: districts,
		CrisisType:        req.CrisisType,
		IssuesAffected:    affected,
	}, nil
}

func (s *Service) countClaim(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementClaim(outcome)
	}
}

func claimNGO(i *models.Issue) *id.NGOID {
	if i.NGOClaim == nil {
		return nil
	}
	ngoID := i.NGOClaim.NGOID
	return &ngoID
}
