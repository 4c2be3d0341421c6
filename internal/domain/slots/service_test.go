package slots

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/mock/gomock"

	"github.com/disgoorg/slotbot/internal/domain/slots/mock"
	"github.com/disgoorg/slotbot/internal/gateways/store"
)

const (
	alice   = snowflake.ID(111111111111111111)
	bob     = snowflake.ID(222222222222222222)
	general = snowflake.ID(900000000000000001)
	market  = snowflake.ID(900000000000000002)
)

var purchaseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	platform *mock.MockPlatform
	store    *store.Store
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		platform: mock.NewMockPlatform(gomock.NewController(t)),
		store:    store.New(store.NewFileBackend(filepath.Join(t.TempDir(), "database.json"))),
		now:      purchaseTime,
	}
	f.svc = NewService(f.store, f.platform, time.UTC, WithClock(func() time.Time { return f.now }))
	return f
}

// seed writes records directly, bypassing Create.
func (f *fixture) seed(t *testing.T, records ...*store.Record) {
	t.Helper()
	if err := f.store.Save(context.Background(), &store.Document{Slots: records}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func (f *fixture) expectCreate(channelID, userID snowflake.ID, name string) {
	f.platform.EXPECT().CreateChannel(gomock.Any(), name).Return(channelID, nil)
	f.platform.EXPECT().GrantSlot(gomock.Any(), channelID, userID).Return(nil)
	f.platform.EXPECT().SendEmbeds(gomock.Any(), channelID, gomock.Any(), gomock.Any(), gomock.Any()).Return(snowflake.ID(1), nil)
	f.platform.EXPECT().SendDM(gomock.Any(), userID, gomock.Any()).Return(nil)
}

func record(channelID, userID snowflake.ID, status store.Status, days int) *store.Record {
	return &store.Record{
		ChannelID:    channelID,
		UserID:       userID,
		SlotName:     "slot",
		Status:       status,
		PurchaseDate: purchaseTime.Format(store.TimeLayout),
		ExpiryDate:   purchaseTime.AddDate(0, 0, days).Format(store.TimeLayout),
		DurationDays: days,
	}
}

func TestService_CreateThenFind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.expectCreate(general, alice, "alice-slot")

	rec, err := f.svc.Create(ctx, CreateRequest{UserID: alice, Username: "alice", Duration: "1w"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.DurationDays != 7 {
		t.Errorf("DurationDays = %d, want 7", rec.DurationDays)
	}

	got, err := f.svc.Get(ctx, general)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != store.StatusActive || got.UserID != alice || got.SlotName != "alice-slot" {
		t.Errorf("Get() = %+v", got)
	}
	purchase, _ := got.Purchase(time.UTC)
	expiry, _ := got.Expiry(time.UTC)
	if diff := expiry.Sub(purchase); diff != 7*24*time.Hour {
		t.Errorf("expiry - purchase = %v, want 168h", diff)
	}
	if !purchase.Equal(purchaseTime) {
		t.Errorf("purchase = %v, want %v", purchase, purchaseTime)
	}
}

func TestService_CreateRejections(t *testing.T) {
	tests := []struct {
		name    string
		seed    []*store.Record
		req     CreateRequest
		wantErr error
	}{
		{
			name:    "invalid duration",
			req:     CreateRequest{UserID: alice, Username: "alice", Duration: "1y"},
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "user already owns a live slot",
			seed:    []*store.Record{record(market, alice, store.StatusHeld, 7)},
			req:     CreateRequest{UserID: alice, Username: "alice", Duration: "1w"},
			wantErr: ErrDuplicateSlot,
		},
		{
			name:    "channel already rented",
			seed:    []*store.Record{record(market, bob, store.StatusActive, 7)},
			req:     CreateRequest{UserID: alice, Username: "alice", Duration: "1w", ChannelID: market},
			wantErr: ErrDuplicateSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, tt.seed...)

			_, err := f.svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_CreateAfterExpiredSlot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, record(market, alice, store.StatusExpired, 7))
	f.platform.EXPECT().GrantSlot(gomock.Any(), market, alice).Return(nil)
	f.platform.EXPECT().SendEmbeds(gomock.Any(), market, gomock.Any(), gomock.Any(), gomock.Any()).Return(snowflake.ID(1), nil)
	f.platform.EXPECT().SendDM(gomock.Any(), alice, gomock.Any()).Return(errors.New("dms closed"))

	rec, err := f.svc.Create(context.Background(), CreateRequest{UserID: alice, Username: "alice", Duration: "2d", ChannelID: market})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Status != store.StatusActive || rec.DurationDays != 2 {
		t.Errorf("Create() = %+v", rec)
	}
	if n := len(f.svc.List(context.Background())); n != 2 {
		t.Errorf("List() has %d records, want 2", n)
	}
}

func TestService_CategoryNotFound(t *testing.T) {
	f := newFixture(t)
	f.platform.EXPECT().CreateChannel(gomock.Any(), "alice-slot").Return(snowflake.ID(0), ErrCategoryNotFound)

	_, err := f.svc.Create(context.Background(), CreateRequest{UserID: alice, Username: "alice", Duration: "1w"})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("Create() error = %v, want ErrCategoryNotFound", err)
	}
	if n := len(f.svc.List(context.Background())); n != 0 {
		t.Errorf("List() has %d records, want 0", n)
	}
}

func TestService_Revoke(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Revoke(context.Background(), general, ""); !errors.Is(err, ErrSlotNotFound) {
			t.Fatalf("Revoke() error = %v, want ErrSlotNotFound", err)
		}
	})

	t.Run("owner left the guild", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, record(general, alice, store.StatusActive, 7))
		f.platform.EXPECT().FetchMember(gomock.Any(), alice).Return(nil, ErrUserNotFound)

		if _, err := f.svc.Revoke(context.Background(), general, "scam"); !errors.Is(err, ErrOwnerNotInGuild) {
			t.Fatalf("Revoke() error = %v, want ErrOwnerNotInGuild", err)
		}
		rec, _ := f.svc.Get(context.Background(), general)
		if rec.Status != store.StatusActive {
			t.Errorf("status = %s, want active", rec.Status)
		}
	})

	t.Run("success with default reason", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, record(general, alice, store.StatusHeld, 7))
		f.platform.EXPECT().FetchMember(gomock.Any(), alice).Return(&discord.Member{}, nil)
		f.platform.EXPECT().SetMemberPermissions(gomock.Any(), general, alice, OwnerAllowLocked, OwnerDenyLocked).Return(nil)
		f.platform.EXPECT().SendEmbeds(gomock.Any(), general, RevokedEmbed(general, DefaultRevokeReason)).Return(snowflake.ID(1), nil)

		rec, err := f.svc.Revoke(context.Background(), general, "")
		if err != nil {
			t.Fatalf("Revoke() error = %v", err)
		}
		if rec.Status != store.StatusRevoked {
			t.Errorf("status = %s, want revoked", rec.Status)
		}

		if _, err := f.svc.Hold(context.Background(), general); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Hold() after revoke error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestService_HoldUnhold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, record(general, alice, store.StatusActive, 7))

	gomock.InOrder(
		f.platform.EXPECT().FetchMember(gomock.Any(), alice).Return(&discord.Member{}, nil),
		f.platform.EXPECT().SetMemberPermissions(gomock.Any(), general, alice, OwnerAllowLocked, OwnerDenyLocked).Return(nil),
		f.platform.EXPECT().SendEmbeds(gomock.Any(), general, gomock.Any()).Return(snowflake.ID(1), nil),
	)
	rec, err := f.svc.Hold(ctx, general)
	if err != nil || rec.Status != store.StatusHeld {
		t.Fatalf("Hold() = %v, %v", rec, err)
	}

	if _, err := f.svc.Hold(ctx, general); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Hold() error = %v, want ErrInvalidTransition", err)
	}

	gomock.InOrder(
		f.platform.EXPECT().FetchMember(gomock.Any(), alice).Return(&discord.Member{}, nil),
		f.platform.EXPECT().SetMemberPermissions(gomock.Any(), general, alice, OwnerAllowActive, discord.Permissions(0)).Return(nil),
		f.platform.EXPECT().SendEmbeds(gomock.Any(), general, gomock.Any()).Return(snowflake.ID(1), nil),
	)
	rec, err = f.svc.Unhold(ctx, general)
	if err != nil || rec.Status != store.StatusActive {
		t.Fatalf("Unhold() = %v, %v", rec, err)
	}
}

func TestService_HoldFailuresLeaveState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, record(general, alice, store.StatusActive, 7))

	f.platform.EXPECT().FetchMember(gomock.Any(), alice).Return(nil, ErrUserNotFound)
	if _, err := f.svc.Hold(ctx, general); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Hold() error = %v, want ErrUserNotFound", err)
	}

	f.platform.EXPECT().FetchMember(gomock.Any(), alice).Return(&discord.Member{}, nil)
	f.platform.EXPECT().SetMemberPermissions(gomock.Any(), general, alice, gomock.Any(), gomock.Any()).Return(errors.New("missing access"))
	if _, err := f.svc.Hold(ctx, general); err == nil {
		t.Fatal("Hold() error = nil, want permission error")
	}

	if _, err := f.svc.Unhold(ctx, market); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Unhold() error = %v, want ErrSlotNotFound", err)
	}

	rec, _ := f.svc.Get(ctx, general)
	if rec.Status != store.StatusActive {
		t.Errorf("status = %s, want active", rec.Status)
	}
}

func TestService_SweepExpiredScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.expectCreate(general, alice, "alice-slot")

	if _, err := f.svc.Create(ctx, CreateRequest{UserID: alice, Username: "alice", Duration: "1w"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f.now = f.now.Add(30 * time.Minute)
	expired, err := f.svc.SweepExpired(ctx, f.now)
	if err != nil || len(expired) != 0 {
		t.Fatalf("early SweepExpired() = %v, %v", expired, err)
	}

	f.platform.EXPECT().SetMemberPermissions(gomock.Any(), general, alice, OwnerAllowLocked, OwnerDenyLocked).Return(nil).Times(1)
	f.platform.EXPECT().SendDM(gomock.Any(), alice, "Your slot has expired.").Return(nil).Times(1)
	f.platform.EXPECT().SendEmbeds(gomock.Any(), general, expiredEmbed()).Return(snowflake.ID(1), nil).Times(1)

	f.now = f.now.Add(8 * 24 * time.Hour)
	for i := 0; i < 2; i++ {
		expired, err = f.svc.SweepExpired(ctx, f.now)
		if err != nil {
			t.Fatalf("SweepExpired() run %d error = %v", i, err)
		}
		if want := 1 - i; len(expired) != want {
			t.Errorf("SweepExpired() run %d expired %d slots, want %d", i, len(expired), want)
		}
	}

	rec, _ := f.svc.Get(ctx, general)
	if rec.Status != store.StatusExpired {
		t.Errorf("status = %s, want expired", rec.Status)
	}
}

func TestService_SweepContinuesPastFailedNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		record(general, alice, store.StatusActive, 1),
		record(market, bob, store.StatusHeld, 1),
		record(snowflake.ID(3), bob, store.StatusRevoked, 1),
		&store.Record{ChannelID: 4, UserID: bob, Status: store.StatusActive, ExpiryDate: "garbage"},
	)

	f.platform.EXPECT().SetMemberPermissions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("missing access")).Times(2)
	f.platform.EXPECT().SendDM(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cannot send messages to this user")).Times(2)
	f.platform.EXPECT().SendEmbeds(gomock.Any(), gomock.Any(), gomock.Any()).Return(snowflake.ID(0), errors.New("unknown channel")).Times(2)

	expired, err := f.svc.SweepExpired(ctx, purchaseTime.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("SweepExpired() error = %v", err)
	}
	if len(expired) != 2 {
		t.Fatalf("SweepExpired() expired %d slots, want 2", len(expired))
	}
	for _, st := range []store.Status{store.StatusExpired, store.StatusRevoked, store.StatusActive} {
		if len(f.svc.List(ctx, st)) == 0 {
			t.Errorf("no %s records after sweep", st)
		}
	}
}

func TestService_LiveOwners(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		record(general, alice, store.StatusActive, 7),
		record(market, bob, store.StatusExpired, 7),
		record(snowflake.ID(3), alice, store.StatusHeld, 7),
	)

	owners := f.svc.LiveOwners(context.Background())
	if len(owners) != 1 || owners[0] != alice {
		t.Errorf("LiveOwners() = %v, want [%v]", owners, alice)
	}
}

func TestService_ConcurrentTransitionsOnOneSlot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, record(general, alice, store.StatusActive, 7))
	f.platform.EXPECT().FetchMember(gomock.Any(), alice).Return(&discord.Member{}, nil).AnyTimes()
	f.platform.EXPECT().SetMemberPermissions(gomock.Any(), general, alice, OwnerAllowLocked, OwnerDenyLocked).Return(nil).Times(1)
	f.platform.EXPECT().SendEmbeds(gomock.Any(), general, gomock.Any()).Return(snowflake.ID(1), nil).Times(1)
	f.platform.EXPECT().SendDM(gomock.Any(), alice, gomock.Any()).Return(nil).MaxTimes(1)

	const revokers = 5
	var (
		wg       sync.WaitGroup
		revokeOK atomic.Int32
		swept    atomic.Int32
		errs     = make(chan error, revokers)
	)
	for i := 0; i < revokers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Revoke(context.Background(), general, "scam"); err != nil {
				errs <- err
				return
			}
			revokeOK.Add(1)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		expired, err := f.svc.SweepExpired(context.Background(), purchaseTime.AddDate(0, 0, 8))
		if err != nil {
			t.Errorf("SweepExpired() error = %v", err)
		}
		swept.Add(int32(len(expired)))
	}()
	wg.Wait()
	close(errs)

	if winners := revokeOK.Load() + swept.Load(); winners != 1 {
		t.Fatalf("%d transitions applied, want exactly 1", winners)
	}
	for err := range errs {
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("losing Revoke() error = %v, want ErrInvalidTransition", err)
		}
	}

	want := store.StatusRevoked
	if swept.Load() == 1 {
		want = store.StatusExpired
	}
	doc := f.store.Load(context.Background())
	if len(doc.Slots) != 1 || doc.Slots[0].Status != want {
		t.Errorf("stored slots = %+v, want one %s record", doc.Slots, want)
	}
}

func TestService_ConcurrentCreateForOneChannel(t *testing.T) {
	f := newFixture(t)
	f.platform.EXPECT().GrantSlot(gomock.Any(), market, gomock.Any()).Return(nil).Times(1)
	f.platform.EXPECT().SendEmbeds(gomock.Any(), market, gomock.Any(), gomock.Any(), gomock.Any()).Return(snowflake.ID(1), nil).Times(1)
	f.platform.EXPECT().SendDM(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	reqs := []CreateRequest{
		{UserID: alice, Username: "alice", Duration: "1w", ChannelID: market},
		{UserID: bob, Username: "bob", Duration: "2w", ChannelID: market},
	}
	results := make([]error, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.svc.Create(context.Background(), req)
		}()
	}
	wg.Wait()

	var winner snowflake.ID
	for i, err := range results {
		switch {
		case err == nil:
			if winner != 0 {
				t.Fatal("both Create() calls succeeded")
			}
			winner = reqs[i].UserID
		case !errors.Is(err, ErrDuplicateSlot):
			t.Errorf("losing Create() error = %v, want ErrDuplicateSlot", err)
		}
	}
	if winner == 0 {
		t.Fatal("no Create() call succeeded")
	}

	rec, err := f.svc.Get(context.Background(), market)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.UserID != winner || rec.Status != store.StatusActive {
		t.Errorf("Get() = %+v, want active slot owned by %s", rec, winner)
	}
	if n := len(f.store.Load(context.Background()).Slots); n != 1 {
		t.Errorf("%d records stored, want 1", n)
	}
}
