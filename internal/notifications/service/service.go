package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"civiclink/internal/access"
	ministrymodels "civiclink/internal/ministry/models"
	ngomodels "civiclink/internal/ngo/models"
	"civiclink/internal/notifications/metrics"
	"civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/sentinel"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=Store

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Notification, int, error)
	CountUnread(ctx context.Context, userID id.UserID) (int, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID id.UserID) (int, error)
	Delete(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
	DeleteRead(ctx context.Context, userID id.UserID) (int, error)
}

// Channel delivers a persisted notification outside the inbox.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n *models.Notification) error
}

type MinistryLookup interface {
	FindByID(ctx context.Context, ministryID id.MinistryID) (*ministrymodels.Ministry, error)
}

type NGOLookup interface {
	FindByID(ctx context.Context, ngoID id.NGOID) (*ngomodels.NGO, error)
}

// Service persists notifications and serves each user's inbox. Dispatch never
// returns an error: a failed notification must not fail the operation that
// raised it.
type Service struct {
	store      Store
	ministries MinistryLookup
	ngos       NGOLookup
	channels   []Channel
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// deliveryTimeout bounds each channel delivery.
	deliveryTimeout time.Duration
}

const defaultDeliveryTimeout = 3 * time.Second

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithChannels adds delivery channels. Nil channels are skipped.
func WithChannels(channels ...Channel) Option {
	return func(s *Service) {
		for _, c := range channels {
			if c != nil {
				s.channels = append(s.channels, c)
			}
		}
	}
}

// WithDeliveryTimeout caps how long one channel may take to deliver one
// notification. Non-positive values keep the default.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.deliveryTimeout = d
		}
	}
}

func New(store Store, ministries MinistryLookup, ngos NGOLookup, opts ...Option) *Service {
	s := &Service{
		store:           store,
		ministries:      ministries,
		ngos:            ngos,
		logger:          slog.Default(),
		deliveryTimeout: defaultDeliveryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch persists one notification for ev.UserID and hands it to every
// channel. Each delivery runs under its own deadline, detached from the
// caller's cancellation, so a stalled channel costs at most deliveryTimeout.
func (s *Service) Dispatch(ctx context.Context, ev models.Event) {
	n, err := models.NewNotification(id.NotificationID(uuid.New()), ev, requestcontext.Now(ctx))
	if err != nil {
		s.fail(ctx, "build", err, "type", ev.Type)
		return
	}
	if err := s.store.Create(ctx, n); err != nil {
		s.fail(ctx, "store", err, "type", ev.Type, "user_id", ev.UserID)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementDispatched(string(n.Type))
	}
	for _, c := range s.channels {
		err := s.deliver(ctx, c, n)
		if s.metrics != nil {
			s.metrics.ObserveDelivery(c.Name(), err)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "notification delivery failed",
				"request_id", requestcontext.RequestID(ctx),
				"channel", c.Name(),
				"notification_id", n.ID,
				"error", err,
			)
		}
	}
}

func (s *Service) deliver(ctx context.Context, c Channel, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
	defer cancel()
	return c.Deliver(ctx, n)
}

// DispatchToMinistry sends ev to every officer of the ministry.
func (s *Service) DispatchToMinistry(ctx context.Context, ministryID id.MinistryID, ev models.Event) {
	m, err := s.ministries.FindByID(ctx, ministryID)
	if err != nil {
		s.fail(ctx, "fanout", err, "ministry_id", ministryID)
		return
	}
	s.fanOut(ctx, m.Officers, ev)
}

// DispatchToNGO sends ev to every admin of the NGO.
func (s *Service) DispatchToNGO(ctx context.Context, ngoID id.NGOID, ev models.Event) {
	n, err := s.ngos.FindByID(ctx, ngoID)
	if err != nil {
		s.fail(ctx, "fanout", err, "ngo_id", ngoID)
		return
	}
	s.fanOut(ctx, n.Admins, ev)
}

func (s *Service) fanOut(ctx context.Context, recipients []id.UserID, ev models.Event) {
	for _, u := range recipients {
		ev.UserID = u
		s.Dispatch(ctx, ev)
	}
}

func (s *Service) fail(ctx context.Context, stage string, err error, attrs ...any) {
	if s.metrics != nil {
		s.metrics.IncrementFailure(stage)
	}
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "stage", stage, "error", err}, attrs...)
	s.logger.ErrorContext(ctx, "notification dispatch failed", args...)
}

// List returns a page of the caller's notifications with their unread count.
func (s *Service) List(ctx context.Context, caller *access.Identity, unreadOnly bool, offset, limit int) (*models.ListResult, error) {
	if err := access.Authorize(caller, access.OpReadNotifications); err != nil {
		return nil, err
	}
	items, total, err := s.store.List(ctx, models.ListFilter{
		UserID:     caller.UserID,
		UnreadOnly: unreadOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	unread, err := s.store.CountUnread(ctx, caller.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count notifications")
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return &models.ListResult{Notifications: items, Total: total, Unread: unread, Page: page, Limit: limit}, nil
}

func (s *Service) UnreadCount(ctx context.Context, caller *access.Identity) (int, error) {
	if err := access.Authorize(caller, access.OpReadNotifications); err != nil {
		return 0, err
	}
	n, err := s.store.CountUnread(ctx, caller.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count notifications")
	}
	return n, nil
}

// MarkRead flags one of the caller's notifications. Anyone else's
// notification is not found.
func (s *Service) MarkRead(ctx context.Context, caller *access.Identity, notificationID id.NotificationID) (*models.Notification, error) {
	if err := access.Authorize(caller, access.OpReadNotifications); err != nil {
		return nil, err
	}
	n, err := s.store.MarkRead(ctx, caller.UserID, notificationID)
	if err != nil {
		return nil, mapStoreError(err, "failed to mark notification read")
	}
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, caller *access.Identity) (int, error) {
	if err := access.Authorize(caller, access.OpReadNotifications); err != nil {
		return 0, err
	}
	n, err := s.store.MarkAllRead(ctx, caller.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, caller *access.Identity, notificationID id.NotificationID) error {
	if err := access.Authorize(caller, access.OpReadNotifications); err != nil {
		return err
	}
	return mapStoreError(s.store.Delete(ctx, caller.UserID, notificationID), "failed to delete notification")
}

func (s *Service) DeleteRead(ctx context.Context, caller *access.Identity) (int, error) {
	if err := access.Authorize(caller, access.OpReadNotifications); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteRead(ctx, caller.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete read notifications")
	}
	return n, nil
}

func mapStoreError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
