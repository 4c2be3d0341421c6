package slots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/disgoorg/slotbot/internal/gateways/store"
)

// Repository is the record store as the lifecycle uses it.
type Repository interface {
	Load(ctx context.Context) *store.Document
	Update(ctx context.Context, fn func(doc *store.Document) error) error
}

type CreateRequest struct {
	UserID   snowflake.ID
	Username string
	Duration string
	// ChannelID reuses an existing channel instead of creating one under the slot category.
	ChannelID snowflake.ID
}

type Service struct {
	repo     Repository
	platform Platform
	loc      *time.Location
	limit    int
	now      func() time.Time
	locks    keyedMutex
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMentionLimit sets the daily ping allowance shown in slot notices.
func WithMentionLimit(limit int) Option {
	return func(s *Service) { s.limit = limit }
}

func NewService(repo Repository, platform Platform, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		platform: platform,
		loc:      loc,
		limit:    2,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) MentionLimit() int { return s.limit }

// Create rents a slot to a user.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*store.Record, error) {
	d, err := ParseDuration(req.Duration)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.UserID)
	defer unlock()
	if req.ChannelID != 0 {
		unlockChannel := s.locks.Lock(req.ChannelID)
		defer unlockChannel()
	}

	if err := checkDuplicate(s.repo.Load(ctx), req.UserID, req.ChannelID); err != nil {
		return nil, err
	}

	channelID := req.ChannelID
	if channelID == 0 {
		if channelID, err = s.platform.CreateChannel(ctx, req.Username+"-slot"); err != nil {
			return nil, fmt.Errorf("create slot channel: %w", err)
		}
	}
	if err := s.platform.GrantSlot(ctx, channelID, req.UserID); err != nil {
		s.logAbandoned(channelID, req, err)
		return nil, fmt.Errorf("grant slot permissions: %w", err)
	}

	purchase := s.now().In(s.loc).Truncate(time.Second)
	expiry := purchase.AddDate(0, 0, d.Days)
	rec := &store.Record{
		ChannelID:    channelID,
		UserID:       req.UserID,
		SlotName:     req.Username + "-slot",
		Status:       store.StatusActive,
		PurchaseDate: purchase.Format(store.TimeLayout),
		ExpiryDate:   expiry.Format(store.TimeLayout),
		DurationDays: d.Days,
	}

	err = s.repo.Update(ctx, func(doc *store.Document) error {
		if err := checkDuplicate(doc, req.UserID, channelID); err != nil {
			return err
		}
		doc.Slots = append(doc.Slots, rec)
		return nil
	})
	if err != nil {
		s.logAbandoned(channelID, req, err)
		return nil, err
	}

	slog.Info("Slot created",
		slog.String("type", "sys"),
		slog.String("channel_id", channelID.String()),
		slog.String("user_id", req.UserID.String()),
		slog.Int("duration_days", d.Days))

	s.notify(ctx, "slot notices", channelID, func() error {
		_, err := s.platform.SendEmbeds(ctx, channelID,
			createdEmbed(channelID, req.UserID),
			RulesEmbed(s.limit, s.loc.String(), ColorDark),
			detailsEmbed(purchase, expiry, d, s.limit))
		return err
	})
	s.notify(ctx, "creation DM", channelID, func() error {
		return s.platform.SendDM(ctx, req.UserID,
			fmt.Sprintf("Your new slot %s has been successfully created for %s.", discord.ChannelMention(channelID), req.Duration))
	})

	out := *rec
	return &out, nil
}

// logAbandoned records a channel that was set up for a slot whose record was never written.
func (s *Service) logAbandoned(channelID snowflake.ID, req CreateRequest, err error) {
	slog.Error("Slot channel left without a record",
		slog.String("type", "error"),
		slog.String("channel_id", channelID.String()),
		slog.String("user_id", req.UserID.String()),
		slog.Bool("created_channel", req.ChannelID == 0),
		slog.Any("error", err))
}

func checkDuplicate(doc *store.Document, userID, channelID snowflake.ID) error {
	if channelID != 0 {
		if r := doc.FindLiveByChannel(channelID); r != nil && r.Status.Live() {
			return fmt.Errorf("%w: %s is already rented", ErrDuplicateSlot, discord.ChannelMention(channelID))
		}
	}
	for _, r := range doc.FindByUser(userID) {
		if r.Status.Live() {
			return fmt.Errorf("%w: %s already owns %s", ErrDuplicateSlot, discord.UserMention(userID), discord.ChannelMention(r.ChannelID))
		}
	}
	return nil
}

// Get returns the current record for a channel.
func (s *Service) Get(ctx context.Context, channelID snowflake.ID) (*store.Record, error) {
	rec := s.repo.Load(ctx).FindLiveByChannel(channelID)
	if rec == nil {
		return nil, ErrSlotNotFound
	}
	return rec, nil
}

// List returns every record, optionally filtered by status.
func (s *Service) List(ctx context.Context, statuses ...store.Status) []*store.Record {
	doc := s.repo.Load(ctx)
	if len(statuses) == 0 {
		return doc.Slots
	}
	var out []*store.Record
	for _, r := range doc.Slots {
		for _, st := range statuses {
			if r.Status == st {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// LiveOwners returns each owner of an active or held slot once.
func (s *Service) LiveOwners(ctx context.Context) []snowflake.ID {
	seen := make(map[snowflake.ID]struct{})
	var owners []snowflake.ID
	for _, r := range s.repo.Load(ctx).Slots {
		if !r.Status.Live() {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		owners = append(owners, r.UserID)
	}
	return owners
}

// Revoke ends a slot on an administrator's request. When the owner has left the guild nothing
// is changed and ErrOwnerNotInGuild is returned.
func (s *Service) Revoke(ctx context.Context, channelID snowflake.ID, reason string) (*store.Record, error) {
	if reason == "" {
		reason = DefaultRevokeReason
	}

	rec, err := s.transition(ctx, channelID, store.StatusRevoked, ErrOwnerNotInGuild, OwnerAllowLocked, OwnerDenyLocked,
		store.StatusActive, store.StatusHeld)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "revoke notice", channelID, func() error {
		_, err := s.platform.SendEmbeds(ctx, channelID, RevokedEmbed(channelID, reason))
		return err
	})
	return rec, nil
}

// Hold stops the owner from posting until Unhold.
func (s *Service) Hold(ctx context.Context, channelID snowflake.ID) (*store.Record, error) {
	rec, err := s.transition(ctx, channelID, store.StatusHeld, ErrUserNotFound, OwnerAllowLocked, OwnerDenyLocked,
		store.StatusActive)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "hold notice", channelID, func() error {
		_, err := s.platform.SendEmbeds(ctx, channelID, heldEmbed(channelID))
		return err
	})
	return rec, nil
}

func (s *Service) Unhold(ctx context.Context, channelID snowflake.ID) (*store.Record, error) {
	rec, err := s.transition(ctx, channelID, store.StatusActive, ErrUserNotFound, OwnerAllowActive, 0,
		store.StatusHeld)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "unhold notice", channelID, func() error {
		_, err := s.platform.SendEmbeds(ctx, channelID, unheldEmbed(channelID))
		return err
	})
	return rec, nil
}

// transition moves a slot between states on behalf of an administrator. The owner must still be
// a guild member; the permission change happens before the record is written.
func (s *Service) transition(ctx context.Context, channelID snowflake.ID, to store.Status, missingOwner error,
	allow, deny discord.Permissions, from ...store.Status) (*store.Record, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	rec := s.repo.Load(ctx).FindLiveByChannel(channelID)
	if rec == nil {
		return nil, ErrSlotNotFound
	}
	if !statusIn(rec.Status, from) {
		return nil, fmt.Errorf("%w: slot is %s", ErrInvalidTransition, rec.Status)
	}

	if _, err := s.platform.FetchMember(ctx, rec.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, missingOwner
		}
		return nil, fmt.Errorf("fetch slot owner: %w", err)
	}

	if err := s.platform.SetMemberPermissions(ctx, channelID, rec.UserID, allow, deny); err != nil {
		return nil, fmt.Errorf("update slot permissions: %w", err)
	}

	var out store.Record
	err := s.repo.Update(ctx, func(doc *store.Document) error {
		r := doc.FindLiveByChannel(channelID)
		if r == nil || r.UserID != rec.UserID || !statusIn(r.Status, from) {
			return fmt.Errorf("%w: slot changed concurrently", ErrInvalidTransition)
		}
		r.Status = to
		out = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Slot status changed",
		slog.String("type", "sys"),
		slog.String("channel_id", channelID.String()),
		slog.String("user_id", rec.UserID.String()),
		slog.String("from", string(rec.Status)),
		slog.String("to", string(to)))
	return &out, nil
}

// SweepExpired expires every live slot whose expiry date lies before now. Each record is marked
// and saved before its owner is notified, so a slot is announced as expired exactly once.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) ([]store.Record, error) {
	var due []snowflake.ID
	for _, r := range s.repo.Load(ctx).Slots {
		if !r.Status.Live() {
			continue
		}
		expiry, err := r.Expiry(s.loc)
		if err != nil {
			slog.Warn("Skipping slot with unreadable expiry date",
				slog.String("type", "sys"),
				slog.String("channel_id", r.ChannelID.String()),
				slog.String("expiry_date", r.ExpiryDate))
			continue
		}
		if expiry.Before(now) {
			due = append(due, r.ChannelID)
		}
	}

	var expired []store.Record
	for _, channelID := range due {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		rec, err := s.expire(ctx, channelID, now)
		if err != nil {
			slog.Error("Failed to expire slot",
				slog.String("type", "error"),
				slog.String("channel_id", channelID.String()),
				slog.Any("error", err))
			continue
		}
		if rec == nil {
			continue
		}
		expired = append(expired, *rec)

		s.notify(ctx, "expiry permissions", channelID, func() error {
			return s.platform.SetMemberPermissions(ctx, channelID, rec.UserID, OwnerAllowLocked, OwnerDenyLocked)
		})
		s.notify(ctx, "expiry DM", channelID, func() error {
			return s.platform.SendDM(ctx, rec.UserID, "Your slot has expired.")
		})
		s.notify(ctx, "expiry notice", channelID, func() error {
			_, err := s.platform.SendEmbeds(ctx, channelID, expiredEmbed())
			return err
		})
	}

	if len(expired) > 0 {
		slog.Info("Expired slots swept",
			slog.String("type", "sys"),
			slog.Int("count", len(expired)))
	}
	return expired, nil
}

// expire marks one slot expired. It returns nil when another caller got there first.
func (s *Service) expire(ctx context.Context, channelID snowflake.ID, now time.Time) (*store.Record, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	var out *store.Record
	errSkip := errors.New("skip")
	err := s.repo.Update(ctx, func(doc *store.Document) error {
		r := doc.FindLiveByChannel(channelID)
		if r == nil || !r.Status.Live() {
			return errSkip
		}
		expiry, err := r.Expiry(s.loc)
		if err != nil || !expiry.Before(now) {
			return errSkip
		}
		r.Status = store.StatusExpired
		rc := *r
		out = &rc
		return nil
	})
	if errors.Is(err, errSkip) {
		return nil, nil
	}
	return out, err
}

// notify runs a best-effort side effect. Failures are logged and dropped.
func (s *Service) notify(ctx context.Context, what string, channelID snowflake.ID, fn func() error) {
	if err := fn(); err != nil {
		slog.WarnContext(ctx, "Notification failed",
			slog.String("type", "sys"),
			slog.String("notification", what),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}

func statusIn(st store.Status, set []store.Status) bool {
	for _, s := range set {
		if st == s {
			return true
		}
	}
	return false
}

// keyedMutex serializes work per snowflake. Entries are never released; the key space is the
// set of slot channels and owners.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

func (k *keyedMutex) Lock(id snowflake.ID) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[snowflake.ID]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
