package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

type authFixture struct {
	svc     *AuthService
	repo    *stubCustomerRepo
	events  *stubPublisher
	clock   *testClock
	codec   *TokenCodec
	manager *CustomerManager
}

func newAuthFixture() *authFixture {
	clock := newTestClock()
	repo := newStubCustomerRepo()
	codec := newTestCodec(clock)
	refresh := newTestRefreshStore(repo, clock)
	manager := NewCustomerManager(repo, zerolog.Nop())
	manager.bcryptCost = bcrypt.MinCost
	manager.now = clock.Now
	events := &stubPublisher{}

	svc := NewAuthService(repo, manager, codec, refresh, events, time.Hour, zerolog.Nop())
	svc.now = clock.Now
	return &authFixture{svc: svc, repo: repo, events: events, clock: clock, codec: codec, manager: manager}
}

func (f *authFixture) register(t *testing.T, email, password, bearer string) *domain.TokenPair {
	t.Helper()
	pair, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		FirstName:       "Jane",
		LastName:        "Doe",
		BearerToken:     bearer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return pair
}

func wantKind(t *testing.T, err error, kind domain.ErrorKind, msg string) {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *domain.Error", err)
	}
	if de.Kind != kind {
		t.Errorf("kind = %q, want %q", de.Kind, kind)
	}
	if msg != "" && de.Message != msg {
		t.Errorf("message = %q, want %q", de.Message, msg)
	}
}

// ---------------------------------------------------------------------------
// CreateGuest
// ---------------------------------------------------------------------------

func TestAuthService_CreateGuest(t *testing.T) {
	f := newAuthFixture()
	pair, err := f.svc.CreateGuest(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	if pair.UserType != domain.UserTypeGuest || pair.Customer != nil {
		t.Errorf("pair = %+v, want guest without customer info", pair)
	}
	if pair.ExpiresIn != time.Hour {
		t.Errorf("ExpiresIn = %v", pair.ExpiresIn)
	}

	claims, err := f.codec.Decode(pair.AccessToken, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.SubjectID != pair.CustomerGUID || claims.Email != "" {
		t.Errorf("claims = %+v", claims)
	}
	stored := f.repo.get(pair.CustomerGUID)
	if stored == nil || !stored.Active || stored.RefreshToken == nil || stored.RefreshToken.Value != pair.RefreshToken {
		t.Errorf("stored customer = %+v", stored)
	}
}

func TestAuthService_CreateGuestStoreFailure(t *testing.T) {
	f := newAuthFixture()
	f.repo.insertErr = errStore
	_, err := f.svc.CreateGuest(context.Background())
	wantKind(t, err, domain.KindInternal, "Failed to create guest session")
	if !errors.Is(err, errStore) {
		t.Error("cause not kept for logging")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Login(context.Background(), "notfound@x.com", "x")
	wantKind(t, err, domain.KindAuthentication, "Invalid email or password")
}

func TestAuthService_LoginOutcomes(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *domain.Customer)
		pass   string
		kind   domain.ErrorKind
		msg    string
	}{
		{"wrong password", nil, "nope", domain.KindAuthentication, "Invalid email or password"},
		{"deleted", func(c *domain.Customer) { c.Deleted = true }, "secret-pw", domain.KindAuthentication, "Account has been deleted"},
		{"inactive", func(c *domain.Customer) { c.Active = false }, "secret-pw", domain.KindAuthentication, "Account is not active"},
		{"no password", func(c *domain.Customer) { c.PasswordHash = "" }, "secret-pw", domain.KindAuthentication, "Account is not registered"},
		{"locked out", func(c *domain.Customer) { c.LockedOutUntil = time.Now().Add(24 * 365 * time.Hour) }, "secret-pw", domain.KindAuthentication, "Account is locked out"},
		{"two factor", func(c *domain.Customer) { c.TwoFactorEnabled = true }, "secret-pw", domain.KindStepUpRequired, "Two-factor authentication required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture()
			pair := f.register(t, "jane@example.com", "secret-pw", "")
			if tc.mutate != nil {
				c := f.repo.get(pair.CustomerGUID)
				tc.mutate(c)
				f.repo.put(c)
			}
			_, err := f.svc.Login(context.Background(), "jane@example.com", tc.pass)
			wantKind(t, err, tc.kind, tc.msg)
		})
	}
}

func TestAuthService_LoginSuccess(t *testing.T) {
	f := newAuthFixture()
	registered := f.register(t, "jane@example.com", "secret-pw", "")

	pair, err := f.svc.Login(context.Background(), "  Jane@Example.com ", "secret-pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.CustomerGUID != registered.CustomerGUID || pair.UserType != domain.UserTypeRegistered {
		t.Errorf("pair = %+v", pair)
	}
	if pair.Customer == nil || pair.Customer.FullName() != "Jane Doe" {
		t.Errorf("customer info = %+v", pair.Customer)
	}
	claims, err := f.codec.Decode(pair.AccessToken, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Email != "jane@example.com" {
		t.Errorf("email claim = %q", claims.Email)
	}
}

func TestAuthService_LoginLocksOutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "secret-pw", "")
	ctx := context.Background()

	for i := 0; i < defaultMaxFailedLogins; i++ {
		_, err := f.svc.Login(ctx, "jane@example.com", "wrong")
		wantKind(t, err, domain.KindAuthentication, "Invalid email or password")
	}
	_, err := f.svc.Login(ctx, "jane@example.com", "secret-pw")
	wantKind(t, err, domain.KindAuthentication, "Account is locked out")

	f.clock.Advance(defaultLockoutDuration)
	if _, err := f.svc.Login(ctx, "jane@example.com", "secret-pw"); err != nil {
		t.Fatalf("login after lockout expired: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_RegisterPasswordMismatch(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email: "a@b.com", Password: "one", ConfirmPassword: "two",
	})
	wantKind(t, err, domain.KindValidation, "Passwords do not match")
	if f.repo.inserted != 0 {
		t.Error("customer inserted despite validation failure")
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "jane@example.com", "secret-pw", "")

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email: "JANE@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	wantKind(t, err, domain.KindConflict, "Email address is already registered")
}

func TestAuthService_RegisterLostEmailRaceLeavesNoRecord(t *testing.T) {
	f := newAuthFixture()
	f.repo.updateErr = domain.ErrCustomerExists

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email: "jane@example.com", Password: "secret-pw", ConfirmPassword: "secret-pw",
	})
	wantKind(t, err, domain.KindConflict, "Email address is already registered")
	if f.repo.inserted != 1 {
		t.Fatalf("inserted = %d, want 1", f.repo.inserted)
	}
	if n := len(f.repo.byGUID); n != 0 {
		t.Fatalf("%d customer records left behind", n)
	}
	if len(f.events.events) != 0 {
		t.Errorf("events = %+v", f.events.events)
	}
}

func TestAuthService_RegisterFailureKeepsGuestRecord(t *testing.T) {
	f := newAuthFixture()
	guest, err := f.svc.CreateGuest(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	f.repo.updateErr = domain.ErrCustomerExists

	_, err = f.svc.Register(context.Background(), ports.RegisterInput{
		Email: "jane@example.com", Password: "secret-pw", ConfirmPassword: "secret-pw",
		BearerToken: guest.AccessToken,
	})
	wantKind(t, err, domain.KindConflict, "")
	if f.repo.get(guest.CustomerGUID) == nil {
		t.Fatal("guest record removed by a failed upgrade")
	}
}

func TestAuthService_RegisterUpgradesGuestInPlace(t *testing.T) {
	f := newAuthFixture()
	guest, err := f.svc.CreateGuest(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	pair := f.register(t, "jane@example.com", "secret-pw", guest.AccessToken)

	if pair.CustomerGUID != guest.CustomerGUID {
		t.Fatalf("guid changed: %s -> %s", guest.CustomerGUID, pair.CustomerGUID)
	}
	claims, err := f.codec.Decode(pair.AccessToken, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.SubjectID != guest.CustomerGUID || claims.Email != "jane@example.com" {
		t.Errorf("claims = %+v", claims)
	}
	if f.repo.inserted != 1 {
		t.Errorf("inserted = %d, want only the guest insert", f.repo.inserted)
	}
	if len(f.events.events) != 1 || !f.events.events[0].UpgradedFromGuest {
		t.Errorf("events = %+v", f.events.events)
	}
	if ok, _ := f.svc.refresh.Validate(context.Background(), guest.CustomerGUID, guest.RefreshToken); ok {
		t.Error("guest refresh token survived registration")
	}
}

func TestAuthService_RegisterIgnoresUnusableBearer(t *testing.T) {
	cases := map[string]func(f *authFixture) string{
		"garbage": func(*authFixture) string { return "not-a-token" },
		"expired guest": func(f *authFixture) string {
			g, _ := f.svc.CreateGuest(context.Background())
			f.clock.Advance(2 * time.Hour)
			return g.AccessToken
		},
		"unknown guest": func(f *authFixture) string {
			tok, _ := f.codec.Issue(domain.SessionIdentity{SubjectID: uuid.New(), UserType: domain.UserTypeGuest}, time.Hour)
			return tok
		},
	}
	for name, bearer := range cases {
		t.Run(name, func(t *testing.T) {
			f := newAuthFixture()
			token := bearer(f)
			before := f.repo.inserted

			pair := f.register(t, "new@example.com", "secret-pw", token)

			if f.repo.inserted != before+1 {
				t.Errorf("expected a new customer record")
			}
			if len(f.events.events) != 1 || f.events.events[0].UpgradedFromGuest {
				t.Errorf("events = %+v", f.events.events)
			}
			if pair.UserType != domain.UserTypeRegistered {
				t.Errorf("user type = %q", pair.UserType)
			}
		})
	}
}

func TestAuthService_RegisterDoesNotUpgradeRegisteredBearer(t *testing.T) {
	f := newAuthFixture()
	first := f.register(t, "jane@example.com", "secret-pw", "")

	second := f.register(t, "john@example.com", "secret-pw", first.AccessToken)
	if second.CustomerGUID == first.CustomerGUID {
		t.Fatal("registered account was overwritten")
	}
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestAuthService_RefreshWithExpiredAccessToken(t *testing.T) {
	f := newAuthFixture()
	guest, _ := f.svc.CreateGuest(context.Background())
	f.clock.Advance(3 * time.Hour)

	pair, err := f.svc.Refresh(context.Background(), guest.AccessToken, guest.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.CustomerGUID != guest.CustomerGUID || pair.RefreshToken == guest.RefreshToken {
		t.Errorf("pair = %+v", pair)
	}
	if _, err := f.codec.Decode(pair.AccessToken, true); err != nil {
		t.Errorf("new access token invalid: %v", err)
	}
}

func TestAuthService_RefreshSupersededToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	guest, _ := f.svc.CreateGuest(ctx)

	if _, err := f.svc.refresh.Save(ctx, guest.CustomerGUID, "newer"); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := f.svc.Refresh(ctx, guest.AccessToken, guest.RefreshToken)
	wantKind(t, err, domain.KindAuthentication, "Invalid refresh token")
}

func TestAuthService_RefreshExpiredRefreshToken(t *testing.T) {
	f := newAuthFixture()
	guest, _ := f.svc.CreateGuest(context.Background())
	f.clock.Advance(8 * 24 * time.Hour)

	_, err := f.svc.Refresh(context.Background(), guest.AccessToken, guest.RefreshToken)
	wantKind(t, err, domain.KindAuthentication, "Invalid refresh token")
}

func TestAuthService_RefreshFailures(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, "garbage", "whatever")
	wantKind(t, err, domain.KindAuthentication, "Invalid access token")

	orphan, _ := f.codec.Issue(domain.SessionIdentity{SubjectID: uuid.New(), UserType: domain.UserTypeGuest}, time.Hour)
	_, err = f.svc.Refresh(ctx, orphan, "whatever")
	wantKind(t, err, domain.KindAuthentication, "Customer not found")
}

func TestAuthService_RefreshReflectsLaterRegistration(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	guest, _ := f.svc.CreateGuest(ctx)

	// register out of band, keeping the guest's refresh slot intact
	c := f.repo.get(guest.CustomerGUID)
	c.Email = "late@example.com"
	f.repo.put(c)
	if _, err := f.svc.refresh.Save(ctx, guest.CustomerGUID, guest.RefreshToken); err != nil {
		t.Fatalf("save: %v", err)
	}

	pair, err := f.svc.Refresh(ctx, guest.AccessToken, guest.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.UserType != domain.UserTypeRegistered {
		t.Errorf("user type = %q, want registered", pair.UserType)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	guest, _ := f.svc.CreateGuest(ctx)
	id := domain.SessionIdentity{SubjectID: guest.CustomerGUID, UserType: domain.UserTypeGuest}

	for i := 0; i < 2; i++ {
		if err := f.svc.Logout(ctx, id); err != nil {
			t.Fatalf("logout #%d: %v", i+1, err)
		}
	}
	_, err := f.svc.Refresh(ctx, guest.AccessToken, guest.RefreshToken)
	wantKind(t, err, domain.KindAuthentication, "Invalid refresh token")
}
