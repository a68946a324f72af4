package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

const (
	msgCartEmpty          = "Cart is empty"
	msgNotStarted         = "Checkout has not been started"
	msgTermsRequired      = "You must accept the terms and conditions"
	msgOrderPlaced        = "Your order has been placed successfully! You will receive an email confirmation shortly."
	estimatedDeliveryDays = 5
)

// CheckoutConfig holds the orchestrator settings.
type CheckoutConfig struct {
	Currency string
}

// CheckoutDeps groups the collaborators of CheckoutService.
type CheckoutDeps struct {
	Carts     ports.CartRepository
	Sessions  ports.CheckoutStore
	Locker    ports.Locker
	Orders    ports.OrderRepository
	Shipping  ports.ShippingMethodProvider
	Payments  ports.PaymentMethodProvider
	Tax       ports.TaxProvider
	Discounts ports.DiscountProvider
}

// CheckoutService is the checkout state machine. Every operation reloads the
// cart, applies its transition to the stored session, recomputes the totals
// from scratch and saves the result, all under a per-identity lock.
type CheckoutService struct {
	deps CheckoutDeps
	cfg  CheckoutConfig
	log  zerolog.Logger
	now  func() time.Time
}

func NewCheckoutService(deps CheckoutDeps, cfg CheckoutConfig, log zerolog.Logger) *CheckoutService {
	return &CheckoutService{deps: deps, cfg: cfg, log: log, now: time.Now}
}

var _ ports.CheckoutService = (*CheckoutService)(nil)

func checkoutLockKey(owner uuid.UUID) string {
	return "checkout:lock:" + owner.String()
}

// Start opens checkout for a non-empty cart. An existing session is resumed
// with the current cart contents.
func (s *CheckoutService) Start(ctx context.Context, id domain.SessionIdentity) (*domain.CheckoutSession, error) {
	var out *domain.CheckoutSession
	err := s.locked(ctx, id, "Failed to start checkout", func() error {
		lines, err := s.deps.Carts.Lines(ctx, id.SubjectID)
		if err != nil {
			return domain.Internal("Failed to start checkout", err)
		}
		if len(lines) == 0 {
			if err := s.deps.Sessions.Delete(ctx, id.SubjectID); err != nil {
				return domain.Internal("Failed to start checkout", err)
			}
			return domain.InvalidState(msgCartEmpty)
		}

		sess, err := s.deps.Sessions.Get(ctx, id.SubjectID)
		switch {
		case errors.Is(err, domain.ErrCheckoutNotFound):
			sess = s.newSession(id)
		case err != nil:
			return domain.Internal("Failed to start checkout", err)
		}
		sess.Lines = lines

		if err := s.save(ctx, id, sess); err != nil {
			return err
		}
		out = sess
		return nil
	})
	return out, err
}

func (s *CheckoutService) Get(ctx context.Context, id domain.SessionIdentity) (*domain.CheckoutSession, error) {
	return s.mutate(ctx, id, "Failed to load checkout", func(*domain.CheckoutSession) error { return nil })
}

func (s *CheckoutService) SetBillingAddress(ctx context.Context, id domain.SessionIdentity, addr domain.Address) (*domain.CheckoutSession, error) {
	return s.mutate(ctx, id, "Failed to set billing address", func(sess *domain.CheckoutSession) error {
		sess.BillingAddress = &addr
		if sess.ShippingSameAsBilling {
			if err := s.reloadShipping(ctx, sess); err != nil {
				return err
			}
		}
		sess.Step = domain.StepBillingSet
		return nil
	})
}

// SetShippingAddress with sameAsBilling drops any distinct shipping address;
// otherwise addr is required. Shipping methods are re-quoted either way.
func (s *CheckoutService) SetShippingAddress(ctx context.Context, id domain.SessionIdentity, addr *domain.Address, sameAsBilling bool) (*domain.CheckoutSession, error) {
	if !sameAsBilling && addr == nil {
		return nil, domain.Validation("Invalid shipping address data",
			domain.FieldError{Field: "address", Message: "is required unless sameAsBilling is set"})
	}
	return s.mutate(ctx, id, "Failed to set shipping address", func(sess *domain.CheckoutSession) error {
		sess.ShippingSameAsBilling = sameAsBilling
		if sameAsBilling {
			sess.ShippingAddress = nil
		} else {
			a := *addr
			sess.ShippingAddress = &a
		}
		if err := s.reloadShipping(ctx, sess); err != nil {
			return err
		}
		sess.Step = domain.StepShippingAddressSet
		return nil
	})
}

func (s *CheckoutService) ShippingMethods(ctx context.Context, id domain.SessionIdentity) ([]domain.ShippingMethod, error) {
	sess, err := s.mutate(ctx, id, "Failed to get shipping methods", func(sess *domain.CheckoutSession) error {
		return s.reloadShipping(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess.AvailableShippingMethods, nil
}

// SelectShippingMethod selects methodID if it is currently offered and is a
// no-op otherwise. Payment methods are reloaded afterwards in both cases.
func (s *CheckoutService) SelectShippingMethod(ctx context.Context, id domain.SessionIdentity, methodID string) (*domain.CheckoutSession, error) {
	return s.mutate(ctx, id, "Failed to select shipping method", func(sess *domain.CheckoutSession) error {
		if len(sess.AvailableShippingMethods) == 0 {
			if err := s.reloadShipping(ctx, sess); err != nil {
				return err
			}
		}
		if selectShipping(sess, methodID) {
			sess.Step = domain.StepShippingMethodSelected
		}
		return s.reloadPayments(ctx, id, sess)
	})
}

func (s *CheckoutService) PaymentMethods(ctx context.Context, id domain.SessionIdentity) ([]domain.PaymentMethod, error) {
	sess, err := s.mutate(ctx, id, "Failed to get payment methods", func(sess *domain.CheckoutSession) error {
		return s.reloadPayments(ctx, id, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess.AvailablePaymentMethods, nil
}

// SelectPaymentMethod follows the same match-or-no-op rule as shipping.
func (s *CheckoutService) SelectPaymentMethod(ctx context.Context, id domain.SessionIdentity, methodID string) (*domain.CheckoutSession, error) {
	return s.mutate(ctx, id, "Failed to select payment method", func(sess *domain.CheckoutSession) error {
		if len(sess.AvailablePaymentMethods) == 0 {
			if err := s.reloadPayments(ctx, id, sess); err != nil {
				return err
			}
		}
		if selectPayment(sess, methodID) {
			sess.Step = domain.StepPaymentMethodSelected
		}
		return nil
	})
}

// PlaceOrder records the order, then discards the session and the cart. A
// failure after the order insert leaves the order in place.
func (s *CheckoutService) PlaceOrder(ctx context.Context, id domain.SessionIdentity, in ports.PlaceOrderInput) (*domain.OrderConfirmation, error) {
	if !in.AcceptTerms {
		return nil, domain.Validation(msgTermsRequired,
			domain.FieldError{Field: "acceptTermsAndConditions", Message: "must be accepted"})
	}

	const failMsg = "Failed to place order"
	var order *domain.OrderConfirmation
	err := s.locked(ctx, id, failMsg, func() error {
		lines, err := s.deps.Carts.Lines(ctx, id.SubjectID)
		if err != nil {
			return domain.Internal(failMsg, err)
		}
		if len(lines) == 0 {
			return domain.Validation(msgCartEmpty)
		}
		sess, err := s.deps.Sessions.Get(ctx, id.SubjectID)
		if errors.Is(err, domain.ErrCheckoutNotFound) {
			return domain.InvalidState(msgNotStarted)
		}
		if err != nil {
			return domain.Internal(failMsg, err)
		}
		sess.Lines = lines
		if err := s.recalculate(ctx, sess); err != nil {
			return err
		}

		order = s.newOrder(id, sess, in.Notes)
		if err := s.deps.Orders.Insert(ctx, order); err != nil {
			return domain.Internal(failMsg, err)
		}
		if err := s.deps.Sessions.Delete(ctx, id.SubjectID); err != nil {
			return domain.Internal(failMsg, err)
		}
		if err := s.deps.Carts.Clear(ctx, id.SubjectID); err != nil {
			return domain.Internal(failMsg, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("customer_guid", id.SubjectID.String()).
		Str("order_number", order.OrderNumber).
		Str("total", order.Totals.Total.StringFixed(2)).
		Msg("order placed")
	return order, nil
}

// locked runs fn while holding the identity's checkout lock.
func (s *CheckoutService) locked(ctx context.Context, id domain.SessionIdentity, failMsg string, fn func() error) error {
	release, err := s.deps.Locker.Acquire(ctx, checkoutLockKey(id.SubjectID))
	if errors.Is(err, domain.ErrLockNotAcquired) {
		return domain.Conflict("Checkout is being updated by another request")
	}
	if err != nil {
		return domain.Internal(failMsg, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("customer_guid", id.SubjectID.String()).Msg("failed to release checkout lock")
		}
	}()
	return fn()
}

// mutate loads the session and the cart, applies fn and stores the
// recomputed session. A cart that has become empty ends the session.
func (s *CheckoutService) mutate(ctx context.Context, id domain.SessionIdentity, failMsg string, fn func(*domain.CheckoutSession) error) (*domain.CheckoutSession, error) {
	var out *domain.CheckoutSession
	err := s.locked(ctx, id, failMsg, func() error {
		sess, err := s.deps.Sessions.Get(ctx, id.SubjectID)
		if errors.Is(err, domain.ErrCheckoutNotFound) {
			return domain.InvalidState(msgNotStarted)
		}
		if err != nil {
			return domain.Internal(failMsg, err)
		}

		lines, err := s.deps.Carts.Lines(ctx, id.SubjectID)
		if err != nil {
			return domain.Internal(failMsg, err)
		}
		if len(lines) == 0 {
			if err := s.deps.Sessions.Delete(ctx, id.SubjectID); err != nil {
				return domain.Internal(failMsg, err)
			}
			return domain.InvalidState(msgCartEmpty)
		}
		sess.Lines = lines

		if err := fn(sess); err != nil {
			var de *domain.Error
			if errors.As(err, &de) {
				return err
			}
			return domain.Internal(failMsg, err)
		}
		if err := s.save(ctx, id, sess); err != nil {
			return err
		}
		out = sess
		return nil
	})
	return out, err
}

func (s *CheckoutService) save(ctx context.Context, id domain.SessionIdentity, sess *domain.CheckoutSession) error {
	if err := s.recalculate(ctx, sess); err != nil {
		return err
	}
	sess.IsGuestCheckout = id.IsGuest()
	sess.CustomerEmail = id.Email
	sess.UpdatedAt = s.now().UTC()
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return domain.Internal("Failed to save checkout", err)
	}
	s.log.Debug().Str("customer_guid", id.SubjectID.String()).Str("step", string(sess.Step)).Msg("checkout saved")
	return nil
}

func (s *CheckoutService) recalculate(ctx context.Context, sess *domain.CheckoutSession) error {
	discount, err := s.deps.Discounts.Discount(ctx, sess.OwnerID, sess.Lines)
	if err != nil {
		return domain.Internal("Failed to calculate discount", err)
	}
	tax, err := s.deps.Tax.Tax(ctx, sess.EffectiveShippingAddress(), sess.Lines)
	if err != nil {
		return domain.Internal("Failed to calculate tax", err)
	}
	sess.Totals = CalculateTotals(sess.Lines, TotalsInput{
		Discount: discount,
		Tax:      tax,
		Shipping: sess.SelectedShippingMethod,
		Payment:  sess.SelectedPaymentMethod,
		Currency: s.cfg.Currency,
	})
	return nil
}

// reloadShipping re-quotes shipping methods. The previous selection stays
// only if its id is still offered, with the newly quoted cost.
func (s *CheckoutService) reloadShipping(ctx context.Context, sess *domain.CheckoutSession) error {
	methods, err := s.deps.Shipping.ShippingMethods(ctx, sess.EffectiveShippingAddress(), sess.Lines)
	if err != nil {
		return fmt.Errorf("load shipping methods: %w", err)
	}
	prev := ""
	if sess.SelectedShippingMethod != nil {
		prev = sess.SelectedShippingMethod.ID
	}
	sess.AvailableShippingMethods = methods
	sess.SelectedShippingMethod = nil
	selectShipping(sess, prev)
	return nil
}

func (s *CheckoutService) reloadPayments(ctx context.Context, id domain.SessionIdentity, sess *domain.CheckoutSession) error {
	methods, err := s.deps.Payments.PaymentMethods(ctx, id, sess.Lines)
	if err != nil {
		return fmt.Errorf("load payment methods: %w", err)
	}
	prev := ""
	if sess.SelectedPaymentMethod != nil {
		prev = sess.SelectedPaymentMethod.ID
	}
	sess.AvailablePaymentMethods = methods
	sess.SelectedPaymentMethod = nil
	selectPayment(sess, prev)
	return nil
}

// selectShipping marks methodID as the only selected method. It reports
// false and changes nothing when methodID is not offered.
func selectShipping(sess *domain.CheckoutSession, methodID string) bool {
	idx := -1
	for i := range sess.AvailableShippingMethods {
		if methodID != "" && sess.AvailableShippingMethods[i].ID == methodID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	for i := range sess.AvailableShippingMethods {
		sess.AvailableShippingMethods[i].IsSelected = i == idx
	}
	selected := sess.AvailableShippingMethods[idx]
	sess.SelectedShippingMethod = &selected
	return true
}

func selectPayment(sess *domain.CheckoutSession, methodID string) bool {
	idx := -1
	for i := range sess.AvailablePaymentMethods {
		if methodID != "" && sess.AvailablePaymentMethods[i].ID == methodID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	for i := range sess.AvailablePaymentMethods {
		sess.AvailablePaymentMethods[i].IsSelected = i == idx
	}
	selected := sess.AvailablePaymentMethods[idx]
	sess.SelectedPaymentMethod = &selected
	return true
}

func (s *CheckoutService) newSession(id domain.SessionIdentity) *domain.CheckoutSession {
	now := s.now().UTC()
	return &domain.CheckoutSession{
		OwnerID:               id.SubjectID,
		Step:                  domain.StepStarted,
		ShippingSameAsBilling: true,
		IsGuestCheckout:       id.IsGuest(),
		CustomerEmail:         id.Email,
		StartedAt:             now,
		UpdatedAt:             now,
	}
}

func (s *CheckoutService) newOrder(id domain.SessionIdentity, sess *domain.CheckoutSession, notes string) *domain.OrderConfirmation {
	now := s.now().UTC()
	orderID := ulid.MustNew(ulid.Timestamp(now), rand.Reader)

	order := &domain.OrderConfirmation{
		OrderID:           orderID.String(),
		OrderNumber:       orderNumber(now, orderID),
		CustomerGUID:      id.SubjectID,
		Lines:             sess.Lines,
		BillingAddress:    sess.BillingAddress,
		ShippingAddress:   sess.EffectiveShippingAddress(),
		Notes:             notes,
		Totals:            sess.Totals,
		OrderStatus:       domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		OrderDate:         now,
		EstimatedDelivery: now.AddDate(0, 0, estimatedDeliveryDays),
		RequiresPayment:   sess.Totals.Total.IsPositive(),
		Message:           msgOrderPlaced,
	}
	if sess.SelectedShippingMethod != nil {
		order.ShippingMethodID = sess.SelectedShippingMethod.ID
	}
	if sess.SelectedPaymentMethod != nil {
		order.PaymentMethodID = sess.SelectedPaymentMethod.ID
	}
	return order
}

// orderNumber formats ORD-YYYYMMDD-NNNN, taking NNNN from the id entropy.
func orderNumber(now time.Time, id ulid.ULID) string {
	entropy := id.Entropy()
	n := binary.BigEndian.Uint16(entropy[:2]) % 10000
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), n)
}
