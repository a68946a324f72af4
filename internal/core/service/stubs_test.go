package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Customers + refresh slot
// ---------------------------------------------------------------------------

type stubCustomerRepo struct {
	mu        sync.Mutex
	byGUID    map[uuid.UUID]*domain.Customer
	inserted  int
	insertErr error
	findErr   error
	saveErr   error
	updateErr error
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{byGUID: make(map[uuid.UUID]*domain.Customer)}
}

func (r *stubCustomerRepo) put(c *domain.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.byGUID[c.GUID] = &clone
}

func (r *stubCustomerRepo) get(guid uuid.UUID) *domain.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byGUID[guid]
	if !ok {
		return nil
	}
	clone := *c
	return &clone
}

func (r *stubCustomerRepo) Insert(_ context.Context, c *domain.Customer) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.put(c)
	r.mu.Lock()
	r.inserted++
	r.mu.Unlock()
	return nil
}

func (r *stubCustomerRepo) FindByGUID(_ context.Context, guid uuid.UUID) (*domain.Customer, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if c := r.get(guid); c != nil {
		return c, nil
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byGUID {
		if c.Email != "" && c.Email == email {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byGUID[c.GUID]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	clone := *c
	clone.RefreshToken = existing.RefreshToken
	r.byGUID[c.GUID] = &clone
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, guid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byGUID, guid)
	return nil
}

func (r *stubCustomerRepo) SaveRefreshToken(_ context.Context, owner uuid.UUID, token domain.RefreshToken) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byGUID[owner]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.RefreshToken = &token
	return nil
}

func (r *stubCustomerRepo) GetRefreshToken(_ context.Context, owner uuid.UUID) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byGUID[owner]
	if !ok || c.RefreshToken == nil {
		return nil, nil
	}
	t := *c.RefreshToken
	return &t, nil
}

func (r *stubCustomerRepo) ClearRefreshToken(_ context.Context, owner uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byGUID[owner]; ok {
		c.RefreshToken = nil
	}
	return nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

type stubPublisher struct {
	events []domain.CustomerRegistered
}

func (p *stubPublisher) PublishCustomerRegistered(_ context.Context, e domain.CustomerRegistered) {
	p.events = append(p.events, e)
}

// ---------------------------------------------------------------------------
// Cart, catalog, checkout store, lock, orders
// ---------------------------------------------------------------------------

type stubCartRepo struct {
	lines    map[uuid.UUID][]domain.CartLine
	linesErr error
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{lines: make(map[uuid.UUID][]domain.CartLine)}
}

func (r *stubCartRepo) Lines(_ context.Context, owner uuid.UUID) ([]domain.CartLine, error) {
	if r.linesErr != nil {
		return nil, r.linesErr
	}
	return slices.Clone(r.lines[owner]), nil
}

func (r *stubCartRepo) AddLine(_ context.Context, owner uuid.UUID, line domain.CartLine) error {
	lines := r.lines[owner]
	for i, l := range lines {
		if l.ProductID == line.ProductID && samePrice(l.EnteredPrice, line.EnteredPrice) {
			lines[i].Quantity += line.Quantity
			return nil
		}
	}
	r.lines[owner] = append(lines, line)
	return nil
}

func samePrice(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (r *stubCartRepo) UpdateQuantity(_ context.Context, owner uuid.UUID, lineID string, quantity int) error {
	for i, l := range r.lines[owner] {
		if l.ID == lineID {
			r.lines[owner][i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

func (r *stubCartRepo) RemoveLine(_ context.Context, owner uuid.UUID, lineID string) error {
	for i, l := range r.lines[owner] {
		if l.ID == lineID {
			r.lines[owner] = slices.Delete(r.lines[owner], i, i+1)
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

func (r *stubCartRepo) Clear(_ context.Context, owner uuid.UUID) error {
	delete(r.lines, owner)
	return nil
}

type stubCatalog struct {
	products map[string]*domain.Product
}

func (c *stubCatalog) FindProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

type stubCheckoutStore struct {
	sessions map[uuid.UUID]*domain.CheckoutSession
	saves    int
	saveErr  error
}

func newStubCheckoutStore() *stubCheckoutStore {
	return &stubCheckoutStore{sessions: make(map[uuid.UUID]*domain.CheckoutSession)}
}

func (s *stubCheckoutStore) Get(_ context.Context, owner uuid.UUID) (*domain.CheckoutSession, error) {
	sess, ok := s.sessions[owner]
	if !ok {
		return nil, domain.ErrCheckoutNotFound
	}
	return cloneSession(sess), nil
}

func (s *stubCheckoutStore) Save(_ context.Context, sess *domain.CheckoutSession) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.sessions[sess.OwnerID] = cloneSession(sess)
	return nil
}

func (s *stubCheckoutStore) Delete(_ context.Context, owner uuid.UUID) error {
	delete(s.sessions, owner)
	return nil
}

func cloneSession(in *domain.CheckoutSession) *domain.CheckoutSession {
	out := *in
	out.Lines = slices.Clone(in.Lines)
	out.AvailableShippingMethods = slices.Clone(in.AvailableShippingMethods)
	out.AvailablePaymentMethods = slices.Clone(in.AvailablePaymentMethods)
	return &out
}

// stubLocker is a real mutex per key so concurrent tests exercise it.
type stubLocker struct {
	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	failWith error
	acquired int
}

func newStubLocker() *stubLocker {
	return &stubLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *stubLocker) Acquire(_ context.Context, key string) (func(context.Context) error, error) {
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.acquired++
	l.mu.Unlock()
	m.Lock()
	return func(context.Context) error { m.Unlock(); return nil }, nil
}

type stubOrderRepo struct {
	orders    []*domain.OrderConfirmation
	insertErr error
}

func (r *stubOrderRepo) Insert(_ context.Context, o *domain.OrderConfirmation) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.orders = append(r.orders, o)
	return nil
}

// ---------------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------------

type stubShipping struct {
	methods []domain.ShippingMethod
	calls   int
	err     error
}

func (p *stubShipping) ShippingMethods(_ context.Context, _ *domain.Address, _ []domain.CartLine) ([]domain.ShippingMethod, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return slices.Clone(p.methods), nil
}

type stubPayments struct {
	methods []domain.PaymentMethod
	calls   int
}

func (p *stubPayments) PaymentMethods(_ context.Context, _ domain.SessionIdentity, _ []domain.CartLine) ([]domain.PaymentMethod, error) {
	p.calls++
	return slices.Clone(p.methods), nil
}

type stubTax struct{ amount decimal.Decimal }

func (t stubTax) Tax(context.Context, *domain.Address, []domain.CartLine) (decimal.Decimal, error) {
	return t.amount, nil
}

type stubDiscount struct {
	amount decimal.Decimal
	err    error
}

func (d stubDiscount) Discount(context.Context, uuid.UUID, []domain.CartLine) (decimal.Decimal, error) {
	return d.amount, d.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errStore = errors.New("store unavailable")

// testClock is frozen on a whole second so JWT second precision does not
// shift expiry boundaries.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
